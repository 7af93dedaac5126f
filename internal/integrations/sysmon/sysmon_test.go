package sysmon

import (
	"context"
	"testing"
	"time"

	"github.com/hearthhome/hearth-core/internal/entity"
	"github.com/hearthhome/hearth-core/internal/integration"
)

func TestNew_RegistersEntity(t *testing.T) {
	reg := entity.NewRegistry()

	inst, err := New(reg, Options{Interval: time.Hour})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer inst.Coordinator().Shutdown()

	if inst.Kind != Kind {
		t.Errorf("Kind = %q, want %q", inst.Kind, Kind)
	}
	if inst.Name != "Host Monitor" {
		t.Errorf("Name = %q, want default", inst.Name)
	}

	got, err := reg.Get(EntityID)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", EntityID, err)
	}
	if !got.HasCapability(entity.CapDiagnostic) {
		t.Error("host entity should carry the diagnostic capability")
	}
	if got.IntegrationID != inst.ID {
		t.Errorf("IntegrationID = %q, want %q", got.IntegrationID, inst.ID)
	}
}

func TestFirstRefresh_ProjectsState(t *testing.T) {
	reg := entity.NewRegistry()
	mgr := integration.NewManager()
	defer mgr.Shutdown()

	inst, err := New(reg, Options{Interval: time.Hour})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := mgr.Setup(ctx, inst); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	got, err := reg.Get(EntityID)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", EntityID, err)
	}

	goroutines, ok := got.State["goroutines"].(int)
	if !ok {
		t.Fatalf("state goroutines = %T(%v), want int", got.State["goroutines"], got.State["goroutines"])
	}
	if goroutines < 1 {
		t.Errorf("goroutines = %d, want at least 1", goroutines)
	}
	if _, ok := got.State["heap_bytes"]; !ok {
		t.Error("state should include heap_bytes")
	}
	if !got.Available {
		t.Error("entity should be available after a successful poll")
	}
}

func TestTeardown_RemovesEntity(t *testing.T) {
	reg := entity.NewRegistry()
	mgr := integration.NewManager()
	defer mgr.Shutdown()

	inst, err := New(reg, Options{Interval: time.Hour})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := mgr.Setup(ctx, inst); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if err := mgr.Teardown(inst.ID); err != nil {
		t.Fatalf("Teardown() error = %v", err)
	}

	if _, err := reg.Get(EntityID); err == nil {
		t.Error("host entity should be removed after teardown")
	}
}

func TestCollect(t *testing.T) {
	stats, err := collect(context.Background())
	if err != nil {
		t.Fatalf("collect() error = %v", err)
	}

	if stats.Goroutines < 1 {
		t.Errorf("Goroutines = %d, want at least 1", stats.Goroutines)
	}
	if stats.HeapBytes == 0 {
		t.Error("HeapBytes should be non-zero")
	}
	if stats.CollectedAt.IsZero() {
		t.Error("CollectedAt should be set")
	}
}

func TestNew_DefaultsApplied(t *testing.T) {
	reg := entity.NewRegistry()

	inst, err := New(reg, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer inst.Coordinator().Shutdown()

	if got := inst.Coordinator().UpdateInterval(); got != 30*time.Second {
		t.Errorf("UpdateInterval() = %v, want 30s", got)
	}
}
