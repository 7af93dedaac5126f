package entity

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupStateHistoryTestDB creates an in-memory SQLite database with the
// entity_state_history table.
func setupStateHistoryTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE entity_state_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entity_id TEXT NOT NULL,
			state TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'poll',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE INDEX idx_entity_state_history_entity ON entity_state_history(entity_id, created_at DESC);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// insertHistoryRow inserts a history row with a specific timestamp.
func insertHistoryRow(t *testing.T, db *sql.DB, entityID, stateJSON, source string, createdAt time.Time) {
	t.Helper()

	_, err := db.Exec(
		"INSERT INTO entity_state_history (entity_id, state, source, created_at) VALUES (?, ?, ?, ?)",
		entityID,
		stateJSON,
		source,
		createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("failed to insert history row: %v", err)
	}
}

func TestRecordStateChange(t *testing.T) {
	db := setupStateHistoryTestDB(t)
	repo := NewSQLiteStateHistoryRepository(db)
	ctx := context.Background()

	state := State{"on": true, "level": 75}
	if err := repo.RecordStateChange(ctx, "ent-1", state, StateSourcePush); err != nil {
		t.Fatalf("RecordStateChange() error = %v", err)
	}

	entries, err := repo.GetHistory(ctx, "ent-1", 10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("GetHistory() returned %d entries, want 1", len(entries))
	}
	if entries[0].Source != StateSourcePush {
		t.Errorf("Source = %q, want %q", entries[0].Source, StateSourcePush)
	}
	if entries[0].State["on"] != true {
		t.Errorf("State[on] = %v, want true", entries[0].State["on"])
	}
}

func TestRecordStateChange_Defaults(t *testing.T) {
	db := setupStateHistoryTestDB(t)
	repo := NewSQLiteStateHistoryRepository(db)
	ctx := context.Background()

	if err := repo.RecordStateChange(ctx, "", State{}, ""); err == nil {
		t.Error("RecordStateChange() with empty entity id: want error, got nil")
	}

	// Empty source defaults to poll; nil state stored as empty object.
	if err := repo.RecordStateChange(ctx, "ent-1", nil, ""); err != nil {
		t.Fatalf("RecordStateChange() error = %v", err)
	}
	entries, err := repo.GetHistory(ctx, "ent-1", 1)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if entries[0].Source != StateSourcePoll {
		t.Errorf("default Source = %q, want %q", entries[0].Source, StateSourcePoll)
	}
}

func TestGetHistory_OrderAndLimit(t *testing.T) {
	db := setupStateHistoryTestDB(t)
	repo := NewSQLiteStateHistoryRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		insertHistoryRow(t, db, "ent-1", `{"n":`+string(rune('0'+i))+`}`, StateSourcePoll, base.Add(time.Duration(i)*time.Minute))
	}

	entries, err := repo.GetHistory(ctx, "ent-1", 3)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("GetHistory() returned %d entries, want 3", len(entries))
	}
	// Newest first.
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.After(entries[i-1].CreatedAt) {
			t.Errorf("entries not ordered newest first: %v before %v",
				entries[i-1].CreatedAt, entries[i].CreatedAt)
		}
	}
}

func TestGetHistory_ClampsLimit(t *testing.T) {
	db := setupStateHistoryTestDB(t)
	repo := NewSQLiteStateHistoryRepository(db)
	ctx := context.Background()

	// Zero and oversized limits are clamped, not rejected.
	if _, err := repo.GetHistory(ctx, "ent-1", 0); err != nil {
		t.Errorf("GetHistory(limit=0) error = %v", err)
	}
	if _, err := repo.GetHistory(ctx, "ent-1", 10000); err != nil {
		t.Errorf("GetHistory(limit=10000) error = %v", err)
	}
}

func TestPruneHistory(t *testing.T) {
	db := setupStateHistoryTestDB(t)
	repo := NewSQLiteStateHistoryRepository(db)
	ctx := context.Background()

	old := time.Now().UTC().Add(-48 * time.Hour)
	recent := time.Now().UTC().Add(-time.Hour)
	insertHistoryRow(t, db, "ent-1", `{"n":1}`, StateSourcePoll, old)
	insertHistoryRow(t, db, "ent-1", `{"n":2}`, StateSourcePoll, recent)

	deleted, err := repo.PruneHistory(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneHistory() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("PruneHistory() deleted %d rows, want 1", deleted)
	}

	if _, err := repo.PruneHistory(ctx, 0); err == nil {
		t.Error("PruneHistory(0) = nil, want error")
	}
}
