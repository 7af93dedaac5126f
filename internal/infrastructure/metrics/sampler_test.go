package metrics

import (
	"context"
	"sync"
	"testing"
	"time"
)

// captureRecorder collects observations for assertions.
type captureRecorder struct {
	mu   sync.Mutex
	seen []RefreshObservation
}

func (r *captureRecorder) WriteRefresh(obs RefreshObservation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, obs)
}

func (r *captureRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestSampler_RecordsImmediatelyOnStart(t *testing.T) {
	rec := &captureRecorder{}
	source := func() []RefreshObservation {
		return []RefreshObservation{
			{Integration: "sysmon", Kind: "sysmon", Success: true},
			{Integration: "weather", Kind: "mqtt_sensor", Success: false, Error: "offline"},
		}
	}

	sampler := NewSampler(rec, source, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sampler.Run(ctx)
		close(done)
	}()

	// The first sample is taken before the ticker starts.
	deadline := time.After(2 * time.Second)
	for rec.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected 2 observations, got %d", rec.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.seen[0].Integration != "sysmon" {
		t.Errorf("first observation = %q, want sysmon", rec.seen[0].Integration)
	}
	if rec.seen[1].Error != "offline" {
		t.Errorf("second observation error = %q, want offline", rec.seen[1].Error)
	}
}

func TestSampler_RecordsOnInterval(t *testing.T) {
	rec := &captureRecorder{}
	source := func() []RefreshObservation {
		return []RefreshObservation{{Integration: "sysmon", Success: true}}
	}

	sampler := NewSampler(rec, source, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sampler.Run(ctx)
		close(done)
	}()

	// Immediate sample plus at least two ticks.
	deadline := time.After(2 * time.Second)
	for rec.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 observations, got %d", rec.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestSampler_StopsOnCancel(t *testing.T) {
	rec := &captureRecorder{}
	source := func() []RefreshObservation { return nil }

	sampler := NewSampler(rec, source, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sampler.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sampler did not stop after context cancellation")
	}
}

func TestNewSampler_DefaultInterval(t *testing.T) {
	sampler := NewSampler(&captureRecorder{}, func() []RefreshObservation { return nil }, 0)
	if sampler.interval != defaultSampleInterval {
		t.Errorf("interval = %v, want %v", sampler.interval, defaultSampleInterval)
	}
}
