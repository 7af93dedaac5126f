// Package sysmon is the built-in host monitor integration.
//
// It polls Go runtime statistics on a fixed interval and projects them
// into a single diagnostic entity. Because the data source is the local
// process it never fails, which makes it useful as a liveness reference
// when debugging flaky external integrations.
package sysmon

import (
	"context"
	"runtime"
	"time"

	"github.com/hearthhome/hearth-core/internal/coordinator"
	"github.com/hearthhome/hearth-core/internal/entity"
	"github.com/hearthhome/hearth-core/internal/integration"
)

// Kind identifies this integration implementation.
const Kind = "sysmon"

// EntityID is the diagnostic entity registered by this integration.
const EntityID = "sensor-host"

// Stats is one snapshot of host process health.
type Stats struct {
	// Goroutines is the current goroutine count.
	Goroutines int
	// HeapBytes is the in-use heap allocation.
	HeapBytes uint64
	// GCCycles is the completed GC cycle count.
	GCCycles uint32
	// Uptime is how long the process has been running.
	Uptime time.Duration
	// CollectedAt is when the snapshot was taken (UTC).
	CollectedAt time.Time
}

// Options configures the integration.
type Options struct {
	// Name is the instance label shown in the API. Defaults to "Host Monitor".
	Name string
	// Interval is the polling interval. Defaults to 30 seconds.
	Interval time.Duration
	// Logger receives coordinator lifecycle logs. Optional.
	Logger coordinator.Logger
}

// started anchors the uptime measurement. Set once at process start.
var started = time.Now()

// New builds the host monitor instance and registers its entity.
//
// The returned instance is ready for Manager.Setup, which runs the first
// poll. Entity state stays empty until that first cycle completes.
func New(reg *entity.Registry, opts Options) (*integration.Instance, error) {
	if opts.Name == "" {
		opts.Name = "Host Monitor"
	}
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}

	coordOpts := []coordinator.Option{
		coordinator.WithInterval(opts.Interval),
	}
	if opts.Logger != nil {
		coordOpts = append(coordOpts, coordinator.WithLogger(opts.Logger))
	}

	coord := coordinator.New(Kind, collect, coordOpts...)

	inst := integration.NewInstance(opts.Name, Kind, coord)

	ent := &entity.Entity{
		ID:            EntityID,
		Name:          "Host",
		IntegrationID: inst.ID,
		Capabilities:  []entity.Capability{entity.CapDiagnostic},
		Available:     true,
	}
	if err := reg.Add(ent); err != nil {
		coord.Shutdown()
		return nil, err
	}

	unbind := entity.Bind(coord, reg, inst.ID, project)
	inst.OnTeardown(unbind)
	inst.OnTeardown(func() {
		// Entity removal failures only mean it was already gone.
		_ = reg.Remove(EntityID) //nolint:errcheck
	})

	return inst, nil
}

// collect gathers one runtime snapshot. It cannot fail; the error return
// satisfies the coordinator fetch contract.
func collect(_ context.Context) (Stats, error) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Stats{
		Goroutines:  runtime.NumGoroutine(),
		HeapBytes:   mem.HeapAlloc,
		GCCycles:    mem.NumGC,
		Uptime:      time.Since(started),
		CollectedAt: time.Now().UTC(),
	}, nil
}

// project maps a Stats snapshot onto the diagnostic entity's state.
func project(data Stats) map[string]entity.State {
	return map[string]entity.State{
		EntityID: {
			"goroutines":     data.Goroutines,
			"heap_bytes":     data.HeapBytes,
			"gc_cycles":      data.GCCycles,
			"uptime_seconds": data.Uptime.Seconds(),
			"collected_at":   data.CollectedAt.Format(time.RFC3339),
		},
	}
}
