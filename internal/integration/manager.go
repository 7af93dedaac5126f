package integration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/hearthhome/hearth-core/internal/coordinator"
)

// Logger defines the logging interface used by the Manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Setup retry defaults. Transient first-refresh failures are retried with
// exponential backoff up to maxSetupAttempts before setup is abandoned.
const (
	defaultSetupAttempts     = 3
	defaultSetupInitialDelay = 500 * time.Millisecond
	defaultSetupMaxDelay     = 10 * time.Second
)

// Manager is the registry of live integration instances.
//
// It owns instance lifecycle: Setup performs the coordinator's first
// refresh (with retry for transient failures) and registers the instance;
// Teardown shuts the coordinator down and runs cleanup hooks.
//
// All methods are thread-safe.
type Manager struct {
	mu        sync.RWMutex
	instances map[string]*Instance
	logger    Logger

	setupAttempts uint
	setupDelay    time.Duration
	setupMaxDelay time.Duration
}

// NewManager creates an empty instance registry.
func NewManager() *Manager {
	return &Manager{
		instances:     make(map[string]*Instance),
		logger:        noopLogger{},
		setupAttempts: defaultSetupAttempts,
		setupDelay:    defaultSetupInitialDelay,
		setupMaxDelay: defaultSetupMaxDelay,
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// SetSetupRetry overrides the setup retry policy. attempts includes the
// first try; zero leaves the current value unchanged.
func (m *Manager) SetSetupRetry(attempts uint, initialDelay, maxDelay time.Duration) {
	if attempts > 0 {
		m.setupAttempts = attempts
	}
	if initialDelay > 0 {
		m.setupDelay = initialDelay
	}
	if maxDelay > 0 {
		m.setupMaxDelay = maxDelay
	}
}

// Setup runs the instance's first refresh and registers it.
//
// Failure policy:
//   - coordinator.ErrAuthFailed and errors wrapped in ErrSetupFailed abort
//     immediately (no retry, coordinator shut down, error returned).
//   - Other failures (transient update failures) are retried with
//     exponential backoff up to the configured attempt budget.
//
// On any final failure the coordinator is shut down so the caller holds no
// half-initialised instance.
func (m *Manager) Setup(ctx context.Context, inst *Instance) error {
	if inst == nil || inst.coord == nil {
		return fmt.Errorf("%w: instance has no coordinator", ErrSetupFailed)
	}

	m.mu.RLock()
	_, exists := m.instances[inst.ID]
	m.mu.RUnlock()
	if exists {
		return ErrInstanceExists
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = m.setupDelay
	expo.MaxInterval = m.setupMaxDelay

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		refreshErr := inst.coord.FirstRefresh(ctx)
		if refreshErr == nil {
			return struct{}{}, nil
		}
		if errors.Is(refreshErr, coordinator.ErrAuthFailed) ||
			errors.Is(refreshErr, coordinator.ErrShutdown) ||
			errors.Is(refreshErr, ErrSetupFailed) {
			return struct{}{}, backoff.Permanent(refreshErr)
		}
		m.logger.Warn("integration first refresh failed, will retry",
			"instance", inst.Name,
			"kind", inst.Kind,
			"attempt", attempt,
			"error", refreshErr,
		)
		return struct{}{}, refreshErr
	}, backoff.WithBackOff(expo), backoff.WithMaxTries(m.setupAttempts))

	if err != nil {
		inst.coord.Shutdown()
		return fmt.Errorf("setting up %q: %w", inst.Name, err)
	}

	m.mu.Lock()
	m.instances[inst.ID] = inst
	m.mu.Unlock()

	m.logger.Info("integration set up",
		"instance", inst.Name,
		"kind", inst.Kind,
		"id", inst.ID,
		"attempts", attempt,
	)
	return nil
}

// Teardown removes an instance: shuts down its coordinator and runs
// cleanup hooks in reverse registration order.
func (m *Manager) Teardown(id string) error {
	m.mu.Lock()
	inst, ok := m.instances[id]
	if ok {
		delete(m.instances, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrInstanceNotFound
	}

	inst.coord.Shutdown()
	for i := len(inst.cleanup) - 1; i >= 0; i-- {
		inst.cleanup[i]()
	}

	m.logger.Info("integration torn down", "instance", inst.Name, "id", id)
	return nil
}

// Get returns the instance with the given ID.
func (m *Manager) Get(id string) (*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, ok := m.instances[id]
	if !ok {
		return nil, ErrInstanceNotFound
	}
	return inst, nil
}

// List returns status snapshots for all instances, ordered by name.
func (m *Manager) List() []Status {
	m.mu.RLock()
	statuses := make([]Status, 0, len(m.instances))
	for _, inst := range m.instances {
		statuses = append(statuses, inst.Status())
	}
	m.mu.RUnlock()

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})
	return statuses
}

// Count returns the number of registered instances.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.instances)
}

// RequestRefresh triggers a refresh of the named instance's coordinator.
// Used by the API layer and by the command-then-publish path.
func (m *Manager) RequestRefresh(ctx context.Context, id string) error {
	inst, err := m.Get(id)
	if err != nil {
		return err
	}
	return inst.coord.RequestRefresh(ctx)
}

// Shutdown tears down all instances. Used at application shutdown.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	instances := make([]*Instance, 0, len(m.instances))
	for _, inst := range m.instances {
		instances = append(instances, inst)
	}
	m.instances = make(map[string]*Instance)
	m.mu.Unlock()

	for _, inst := range instances {
		inst.coord.Shutdown()
		for i := len(inst.cleanup) - 1; i >= 0; i-- {
			inst.cleanup[i]()
		}
	}

	m.logger.Info("all integrations shut down", "count", len(instances))
}
