package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Refresher is the coordinator surface the manager needs. It is the
// type-erased view of coordinator.Coordinator[T]: the manager holds
// instances of many payload types and only drives their lifecycle.
type Refresher interface {
	// Name returns the coordinator's label.
	Name() string
	// FirstRefresh performs the initial refresh and returns its error.
	FirstRefresh(ctx context.Context) error
	// RequestRefresh performs or joins a refresh cycle.
	RequestRefresh(ctx context.Context) error
	// Shutdown stops scheduling and detaches listeners. Idempotent.
	Shutdown()
	// LastUpdateSuccess reports whether the latest refresh succeeded.
	LastUpdateSuccess() bool
	// LastError returns the latest refresh error, if any.
	LastError() error
	// LastCycleDuration returns the duration of the latest completed cycle.
	LastCycleDuration() time.Duration
	// UpdateInterval returns the polling cadence (zero for push-only).
	UpdateInterval() time.Duration
}

// Instance is one configured integration: a named binding between an
// external source and its coordinator.
type Instance struct {
	// ID is the unique instance identifier (UUID).
	ID string
	// Name is the human-facing label ("Living Room Sensors").
	Name string
	// Kind identifies the integration implementation ("sysmon", "mqtt_sensor").
	Kind string
	// CreatedAt is when the instance was constructed (UTC).
	CreatedAt time.Time

	coord   Refresher
	cleanup []func()
}

// NewInstance creates an instance with a generated ID.
func NewInstance(name, kind string, coord Refresher) *Instance {
	return &Instance{
		ID:        uuid.NewString(),
		Name:      name,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
		coord:     coord,
	}
}

// Coordinator returns the instance's coordinator handle.
func (i *Instance) Coordinator() Refresher {
	return i.coord
}

// OnTeardown registers a cleanup function run when the instance is torn
// down (after the coordinator is shut down), in reverse registration order.
// Typical use: unsubscribing MQTT topics, removing entities.
func (i *Instance) OnTeardown(fn func()) {
	i.cleanup = append(i.cleanup, fn)
}

// Status is a read-only snapshot of an instance for the API layer.
type Status struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Kind           string        `json:"kind"`
	Healthy        bool          `json:"healthy"`
	LastError      string        `json:"last_error,omitempty"`
	UpdateInterval time.Duration `json:"update_interval"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Status builds a snapshot of the instance's current state.
func (i *Instance) Status() Status {
	s := Status{
		ID:             i.ID,
		Name:           i.Name,
		Kind:           i.Kind,
		Healthy:        i.coord.LastUpdateSuccess(),
		UpdateInterval: i.coord.UpdateInterval(),
		CreatedAt:      i.CreatedAt,
	}
	if err := i.coord.LastError(); err != nil {
		s.LastError = err.Error()
	}
	return s
}
