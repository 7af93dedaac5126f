package metrics

import (
	"context"
	"time"
)

// defaultSampleInterval is how often the sampler records observations
// when no interval is configured.
const defaultSampleInterval = 30 * time.Second

// Recorder accepts refresh observations. *Client satisfies this;
// tests substitute their own.
type Recorder interface {
	WriteRefresh(obs RefreshObservation)
}

// Sampler periodically snapshots integration refresh state and records
// it as time-series points.
//
// The source function is supplied by the caller so this package stays
// decoupled from the integration registry.
type Sampler struct {
	recorder Recorder
	source   func() []RefreshObservation
	interval time.Duration
}

// NewSampler creates a sampler that records observations from source
// every interval. An interval of zero or less uses the default.
func NewSampler(recorder Recorder, source func() []RefreshObservation, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = defaultSampleInterval
	}
	return &Sampler{
		recorder: recorder,
		source:   source,
		interval: interval,
	}
}

// Run samples until ctx is cancelled. It records one sample immediately
// on start, then once per interval.
//
// Run blocks; call it in its own goroutine.
func (s *Sampler) Run(ctx context.Context) {
	s.sample()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sample()
		}
	}
}

func (s *Sampler) sample() {
	for _, obs := range s.source() {
		s.recorder.WriteRefresh(obs)
	}
}
