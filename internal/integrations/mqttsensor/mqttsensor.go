// Package mqttsensor is the built-in MQTT sensor integration.
//
// Devices publish JSON state to their configured topics; the integration
// feeds each message into a push-only coordinator, which fans the update
// out to entities and listeners. There is no polling interval: the
// device decides when state changes.
package mqttsensor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hearthhome/hearth-core/internal/coordinator"
	"github.com/hearthhome/hearth-core/internal/entity"
	"github.com/hearthhome/hearth-core/internal/infrastructure/config"
	"github.com/hearthhome/hearth-core/internal/infrastructure/mqtt"
	"github.com/hearthhome/hearth-core/internal/integration"
)

// Kind identifies this integration implementation.
const Kind = "mqtt_sensor"

// Broker is the MQTT surface this integration needs. *mqtt.Client
// satisfies it; tests substitute a fake.
type Broker interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Reading is the last reported state of one sensor.
type Reading struct {
	// Values holds the decoded JSON payload fields.
	Values map[string]any
	// ReceivedAt is when the message arrived (UTC).
	ReceivedAt time.Time
}

// Readings maps entity ID to its latest reading.
type Readings map[string]Reading

// Options configures the integration.
type Options struct {
	// Name is the instance label shown in the API. Defaults to "MQTT Sensors".
	Name string
	// QoS for sensor topic subscriptions.
	QoS byte
	// Sensors lists the sensor topics and their entity capabilities.
	Sensors []config.SensorConfig
	// Logger receives coordinator lifecycle logs. Optional.
	Logger coordinator.Logger
}

// New builds the MQTT sensor instance: one push-only coordinator shared
// by all configured sensors, one entity per sensor, and one subscription
// per state topic.
//
// Message flow: broker message -> JSON decode -> SetUpdatedData with the
// merged readings -> listeners (including the entity binding) fire once.
func New(reg *entity.Registry, broker Broker, opts Options) (*integration.Instance, error) {
	if opts.Name == "" {
		opts.Name = "MQTT Sensors"
	}
	if len(opts.Sensors) == 0 {
		return nil, ErrNoSensors
	}

	var coordOpts []coordinator.Option
	if opts.Logger != nil {
		coordOpts = append(coordOpts, coordinator.WithLogger(opts.Logger))
	}

	// nil fetch: state only ever arrives via SetUpdatedData.
	coord := coordinator.New[Readings](Kind, nil, coordOpts...)

	inst := integration.NewInstance(opts.Name, Kind, coord)

	entityIDs := make([]string, 0, len(opts.Sensors))
	for i, sensor := range opts.Sensors {
		caps, err := parseCapabilities(sensor.Capabilities)
		if err != nil {
			coord.Shutdown()
			reg.RemoveByIntegration(inst.ID)
			return nil, fmt.Errorf("sensor %q: %w", sensor.Name, err)
		}

		id := entityID(inst.ID, i)
		ent := &entity.Entity{
			ID:            id,
			Name:          sensor.Name,
			IntegrationID: inst.ID,
			Capabilities:  caps,
			Available:     false,
		}
		if err := reg.Add(ent); err != nil {
			coord.Shutdown()
			reg.RemoveByIntegration(inst.ID)
			return nil, err
		}
		entityIDs = append(entityIDs, id)
	}

	unbind := entity.Bind(coord, reg, inst.ID, project)
	inst.OnTeardown(unbind)

	for i, sensor := range opts.Sensors {
		id := entityIDs[i]
		topic := sensor.StateTopic

		handler := func(_ string, payload []byte) error {
			return handleMessage(coord, id, payload)
		}
		if err := broker.Subscribe(topic, opts.QoS, handler); err != nil {
			coord.Shutdown()
			reg.RemoveByIntegration(inst.ID)
			return nil, fmt.Errorf("subscribing %s: %w", topic, err)
		}

		inst.OnTeardown(func() {
			// Unsubscribe failures during teardown are expected when the
			// broker connection is already gone.
			_ = broker.Unsubscribe(topic) //nolint:errcheck
		})
	}

	inst.OnTeardown(func() {
		for _, id := range entityIDs {
			_ = reg.Remove(id) //nolint:errcheck
		}
	})

	return inst, nil
}

// handleMessage decodes one sensor payload and pushes the merged
// readings through the coordinator.
func handleMessage(coord *coordinator.Coordinator[Readings], id string, payload []byte) error {
	var values map[string]any
	if err := json.Unmarshal(payload, &values); err != nil {
		return fmt.Errorf("%w: %w", ErrBadPayload, err)
	}

	current := coord.Data()
	next := make(Readings, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[id] = Reading{
		Values:     values,
		ReceivedAt: time.Now().UTC(),
	}

	coord.SetUpdatedData(next)
	return nil
}

// project maps the merged readings onto per-entity state.
func project(data Readings) map[string]entity.State {
	states := make(map[string]entity.State, len(data))
	for id, reading := range data {
		state := make(entity.State, len(reading.Values)+1)
		for k, v := range reading.Values {
			state[k] = v
		}
		state["received_at"] = reading.ReceivedAt.Format(time.RFC3339)
		states[id] = state
	}
	return states
}

// parseCapabilities converts config capability names, defaulting to
// diagnostic when none are given.
func parseCapabilities(names []string) ([]entity.Capability, error) {
	if len(names) == 0 {
		return []entity.Capability{entity.CapDiagnostic}, nil
	}

	caps := make([]entity.Capability, 0, len(names))
	for _, name := range names {
		c := entity.Capability(name)
		if err := entity.ValidateCapability(c); err != nil {
			return nil, err
		}
		caps = append(caps, c)
	}
	return caps, nil
}

// entityID builds a stable per-sensor entity ID within this instance.
func entityID(instanceID string, index int) string {
	return fmt.Sprintf("%s-sensor-%d", instanceID, index)
}
