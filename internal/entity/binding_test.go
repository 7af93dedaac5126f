package entity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hearthhome/hearth-core/internal/coordinator"
)

type reading struct {
	Celsius float64
}

func TestBind_ProjectsOnSuccess(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Add(testEntity("temp-1")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	coord := coordinator.New("thermo", func(_ context.Context) (reading, error) {
		return reading{Celsius: 19.5}, nil
	})
	defer coord.Shutdown()

	remove := Bind(coord, reg, "int-1", func(r reading) map[string]State {
		return map[string]State{
			"temp-1": {"value": r.Celsius, "unit": "°C"},
		}
	})
	defer remove()

	if err := coord.RequestRefresh(context.Background()); err != nil {
		t.Fatalf("RequestRefresh() error = %v", err)
	}

	got, err := reg.Get("temp-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.State["value"] != 19.5 {
		t.Errorf("State[value] = %v, want 19.5", got.State["value"])
	}
	if !got.Available {
		t.Error("Available = false after successful cycle")
	}
}

func TestBind_FailureFlipsAvailabilityKeepsState(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Add(testEntity("temp-1")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	calls := 0
	coord := coordinator.New("thermo", func(_ context.Context) (reading, error) {
		calls++
		if calls == 1 {
			return reading{Celsius: 19.5}, nil
		}
		return reading{}, fmt.Errorf("%w: sensor offline", coordinator.ErrUpdateFailed)
	})
	defer coord.Shutdown()

	remove := Bind(coord, reg, "int-1", func(r reading) map[string]State {
		return map[string]State{"temp-1": {"value": r.Celsius}}
	})
	defer remove()

	ctx := context.Background()
	if err := coord.RequestRefresh(ctx); err != nil {
		t.Fatalf("first RequestRefresh() error = %v", err)
	}
	if err := coord.RequestRefresh(ctx); err != nil {
		t.Fatalf("second RequestRefresh() error = %v", err)
	}

	got, _ := reg.Get("temp-1")
	if got.Available {
		t.Error("Available = true after failed cycle")
	}
	if got.State["value"] != 19.5 {
		t.Errorf("State[value] = %v after failed cycle, want 19.5 (last good)", got.State["value"])
	}
}

func TestBind_PushSourceRecorded(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Add(testEntity("temp-1")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	history := &recordingHistory{}
	reg.SetHistory(history)

	coord := coordinator.New[reading]("push-thermo", nil)
	defer coord.Shutdown()

	remove := Bind(coord, reg, "int-1", func(r reading) map[string]State {
		return map[string]State{"temp-1": {"value": r.Celsius}}
	})
	defer remove()

	coord.SetUpdatedData(reading{Celsius: 22.0})

	if len(history.sources) != 1 || history.sources[0] != StateSourcePush {
		t.Errorf("recorded sources = %v, want [push]", history.sources)
	}
}

// recordingHistory is a StateHistoryRepository capturing sources.
type recordingHistory struct {
	sources []string
}

func (r *recordingHistory) RecordStateChange(_ context.Context, _ string, _ State, source string) error {
	r.sources = append(r.sources, source)
	return nil
}

func (r *recordingHistory) GetHistory(_ context.Context, _ string, _ int) ([]StateHistoryEntry, error) {
	return nil, nil
}

func (r *recordingHistory) PruneHistory(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}
