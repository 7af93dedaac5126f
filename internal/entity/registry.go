package entity

import (
	"context"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Registry.
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

// Notifier receives entity change events for fan-out to external consumers
// (the WebSocket hub, MQTT state topics). Implementations must not block.
type Notifier interface {
	Broadcast(channel string, payload any)
}

// Registry is the in-memory entity catalogue.
//
// Entities are registered by integrations at setup time and removed at
// teardown. State writes optionally record to a StateHistoryRepository and
// fan out through the Notifier.
//
// All public methods are thread-safe. Returned entities are deep copies.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]*Entity
	history  StateHistoryRepository
	notifier Notifier
	logger   Logger
}

// NewRegistry creates an empty entity registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]*Entity),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetHistory wires a state history repository. When set, every state write
// is recorded. Best effort: history failures are logged, not propagated.
func (r *Registry) SetHistory(history StateHistoryRepository) {
	r.history = history
}

// SetNotifier wires a change notifier (typically the WebSocket hub).
func (r *Registry) SetNotifier(notifier Notifier) {
	r.notifier = notifier
}

// Add registers an entity. The entity is validated and stored as a deep
// copy; the caller keeps ownership of the passed value.
func (r *Registry) Add(e *Entity) error {
	if err := ValidateEntity(e); err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.entities[e.ID]; exists {
		r.mu.Unlock()
		return ErrEntityExists
	}
	stored := e.DeepCopy()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.entities[e.ID] = stored
	r.mu.Unlock()

	r.logger.Info("entity registered", "id", e.ID, "name", e.Name, "integration", e.IntegrationID)
	return nil
}

// Remove deletes an entity.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	_, exists := r.entities[id]
	delete(r.entities, id)
	r.mu.Unlock()

	if !exists {
		return ErrEntityNotFound
	}
	r.logger.Info("entity removed", "id", id)
	return nil
}

// RemoveByIntegration deletes all entities owned by an integration
// instance. Returns the number removed. Used at integration teardown.
func (r *Registry) RemoveByIntegration(integrationID string) int {
	r.mu.Lock()
	removed := 0
	for id, e := range r.entities {
		if e.IntegrationID == integrationID {
			delete(r.entities, id)
			removed++
		}
	}
	r.mu.Unlock()

	if removed > 0 {
		r.logger.Info("entities removed", "integration", integrationID, "count", removed)
	}
	return removed
}

// Get retrieves an entity by ID.
// The returned entity is a deep copy; callers can safely modify it.
func (r *Registry) Get(id string) (*Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entities[id]
	if !ok {
		return nil, ErrEntityNotFound
	}
	return e.DeepCopy(), nil
}

// List retrieves all entities.
// The returned entities are deep copies; callers can safely modify them.
func (r *Registry) List() []Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entities := make([]Entity, 0, len(r.entities))
	for _, e := range r.entities {
		entities = append(entities, *e.DeepCopy())
	}
	return entities
}

// ListByIntegration retrieves all entities owned by an integration instance.
func (r *Registry) ListByIntegration(integrationID string) []Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entities []Entity
	for _, e := range r.entities {
		if e.IntegrationID == integrationID {
			entities = append(entities, *e.DeepCopy())
		}
	}
	return entities
}

// ListByCapability retrieves all entities carrying a capability.
func (r *Registry) ListByCapability(c Capability) []Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entities []Entity
	for _, e := range r.entities {
		if e.HasCapability(c) {
			entities = append(entities, *e.DeepCopy())
		}
	}
	return entities
}

// Count returns the number of registered entities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}

// SetState replaces an entity's state snapshot.
//
// The cached entity is replaced atomically with a copy carrying the new
// state; readers never observe a torn snapshot. The change is recorded to
// history (best effort) and broadcast through the notifier.
func (r *Registry) SetState(ctx context.Context, id string, state State, source string) error {
	now := time.Now().UTC()

	r.mu.Lock()
	cached, ok := r.entities[id]
	if !ok {
		r.mu.Unlock()
		return ErrEntityNotFound
	}
	updated := cached.DeepCopy()
	updated.State = deepCopyState(state)
	updated.StateUpdatedAt = &now
	updated.Available = true
	r.entities[id] = updated
	r.mu.Unlock()

	if r.history != nil {
		if err := r.history.RecordStateChange(ctx, id, state, source); err != nil {
			r.logger.Error("failed to record state history", "entity", id, "error", err)
		}
	}

	if r.notifier != nil {
		r.notifier.Broadcast("entity.state", map[string]any{
			"entity_id": id,
			"state":     deepCopyState(state),
			"source":    source,
			"timestamp": now.Format(time.RFC3339),
		})
	}

	r.logger.Debug("entity state updated", "id", id, "source", source)
	return nil
}

// SetAvailability flips the availability of every entity owned by an
// integration instance. State is left untouched: unavailable entities keep
// their last good snapshot.
func (r *Registry) SetAvailability(integrationID string, available bool) {
	r.mu.Lock()
	changed := make([]string, 0)
	for id, e := range r.entities {
		if e.IntegrationID != integrationID || e.Available == available {
			continue
		}
		updated := e.DeepCopy()
		updated.Available = available
		r.entities[id] = updated
		changed = append(changed, id)
	}
	r.mu.Unlock()

	if len(changed) == 0 {
		return
	}

	if r.notifier != nil {
		r.notifier.Broadcast("entity.availability", map[string]any{
			"integration_id": integrationID,
			"entity_ids":     changed,
			"available":      available,
		})
	}
	r.logger.Debug("entity availability changed",
		"integration", integrationID,
		"available", available,
		"count", len(changed),
	)
}
