package entity

import (
	"context"
	"time"
)

// StateHistoryEntry represents a single entity state change record.
//
// Each entry stores a full snapshot of the entity state at the time the
// change was observed. This provides a local audit trail even when the
// time-series database is unavailable.
type StateHistoryEntry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// EntityID is the unique identifier of the entity.
	EntityID string `json:"entity_id"`

	// State is the JSON snapshot of the entity state.
	State State `json:"state"`

	// Source identifies how the change was recorded (poll, push, command).
	Source string `json:"source"`

	// CreatedAt is the timestamp of the state change (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// StateHistoryRepository stores and retrieves entity state change history.
//
// Implementations must be thread-safe and use UTC timestamps.
type StateHistoryRepository interface {
	// RecordStateChange records an entity state change.
	RecordStateChange(ctx context.Context, entityID string, state State, source string) error

	// GetHistory returns recent state change history for the entity,
	// ordered newest first. The limit may be clamped by the implementation.
	GetHistory(ctx context.Context, entityID string, limit int) ([]StateHistoryEntry, error)

	// PruneHistory deletes entries older than the given duration and
	// returns the number of rows removed.
	PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error)
}
