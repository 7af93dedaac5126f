package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// FetchFunc retrieves fresh data from whatever external source the
// integration wraps. Failures should be wrapped with ErrUpdateFailed or
// ErrAuthFailed; unrecognised errors are classified as ErrUpdateFailed.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Coordinator deduplicates refreshes of a single remote resource and fans
// out change notifications to registered listeners.
//
// See the package documentation for the full contract.
type Coordinator[T any] struct {
	name         string
	fetch        FetchFunc[T]
	interval     time.Duration
	timeout      time.Duration
	logger       Logger
	onAuthFailed func(error)

	mu          sync.Mutex
	data        T
	lastSuccess bool
	lastErr     error
	lastCycle   time.Duration
	listeners   []*listener
	inflight    *cycle
	stop        chan struct{}
	down        bool
}

// listener is a registered callback. The pointer identity is what the
// remove handle matches on, so the same function can be registered twice
// and removed independently.
type listener struct {
	fn func()
}

// cycle tracks one in-flight refresh. done is closed after the cycle's
// state has been applied and listeners notified, releasing any joiners.
type cycle struct {
	cancel  context.CancelFunc
	done    chan struct{}
	err     error // outcome, written before done is closed
	dropped bool  // set by Shutdown: state untouched, listeners not notified
}

// New creates a coordinator for the named resource.
//
// fetch may be nil for push-only integrations that deliver data exclusively
// through SetUpdatedData. When an interval is configured (WithInterval) and
// a fetch function is present, polling starts immediately; the first
// scheduled poll fires one interval after construction.
//
// LastUpdateSuccess starts true: a coordinator is considered healthy until
// a refresh actually fails.
func New[T any](name string, fetch FetchFunc[T], opts ...Option) *Coordinator[T] {
	s := settings{logger: noopLogger{}}
	for _, opt := range opts {
		opt(&s)
	}

	c := &Coordinator[T]{
		name:         name,
		fetch:        fetch,
		interval:     s.interval,
		timeout:      s.timeout,
		logger:       s.logger,
		onAuthFailed: s.onAuthFailed,
		lastSuccess:  true,
		stop:         make(chan struct{}),
	}

	if c.interval > 0 && c.fetch != nil {
		go c.scheduleLoop()
	}

	return c
}

// Name returns the coordinator's label, used in logs and metrics.
func (c *Coordinator[T]) Name() string {
	return c.name
}

// UpdateInterval returns the polling cadence. Zero means push-only.
func (c *Coordinator[T]) UpdateInterval() time.Duration {
	return c.interval
}

// Data returns the last successfully fetched payload (the zero value if no
// refresh has succeeded yet). The value is shared with all listeners and
// must be treated as read-only.
func (c *Coordinator[T]) Data() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// LastUpdateSuccess reports whether the most recent refresh attempt
// succeeded.
func (c *Coordinator[T]) LastUpdateSuccess() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSuccess
}

// LastError returns the error from the most recent failed refresh, or nil
// if the last refresh succeeded.
func (c *Coordinator[T]) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// LastCycleDuration returns how long the most recent completed refresh
// cycle took. Used by the metrics observer.
func (c *Coordinator[T]) LastCycleDuration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCycle
}

// AddListener registers a callback invoked after every refresh cycle,
// success or failure. Listeners run in registration order, exactly once per
// cycle, on the goroutine that completed the cycle; they should read the
// coordinator's accessors and return quickly.
//
// The same callback may be registered more than once and will then be
// notified once per registration. The returned remove handle is idempotent.
func (c *Coordinator[T]) AddListener(fn func()) func() {
	l := &listener{fn: fn}

	c.mu.Lock()
	if c.down {
		c.mu.Unlock()
		return func() {}
	}
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		for i, cur := range c.listeners {
			if cur == l {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
	}
}

// RequestRefresh performs (or joins) a refresh cycle and waits for it to
// complete.
//
// If a refresh is already in flight, the call joins it: the fetch function
// is invoked at most once no matter how many callers request concurrently.
//
// Fetch failures do not propagate from this method — they become state
// (LastUpdateSuccess false, LastError set) that listeners render as
// unavailable. The returned error is only ever a context error, ErrShutdown
// or ErrPushOnly.
func (c *Coordinator[T]) RequestRefresh(ctx context.Context) error {
	if c.fetch == nil {
		return ErrPushOnly
	}

	cy, joined, err := c.beginCycle()
	if err != nil {
		return err
	}

	if joined {
		select {
		case <-cy.done:
			if cy.dropped {
				return ErrShutdown
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.runCycle(ctx, cy)
	if cy.dropped {
		return ErrShutdown
	}
	return nil
}

// FirstRefresh performs one refresh at integration setup time.
//
// Unlike RequestRefresh it returns the fetch error (typed, unwrapped beyond
// classification) so the owning integration can abort setup when there is
// no previous good state to fall back on. Listeners are still notified
// exactly once.
//
// On a push-only coordinator (nil fetch) FirstRefresh is a no-op: the
// integration becomes live on the first pushed update.
func (c *Coordinator[T]) FirstRefresh(ctx context.Context) error {
	if c.fetch == nil {
		return nil
	}

	cy, joined, err := c.beginCycle()
	if err != nil {
		return err
	}

	if joined {
		select {
		case <-cy.done:
			if cy.dropped {
				return ErrShutdown
			}
			return cy.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.runCycle(ctx, cy)
	if cy.dropped {
		return ErrShutdown
	}
	return cy.err
}

// SetUpdatedData is the out-of-band update path for push integrations:
// a webhook or socket delivers new data directly, with no fetch involved.
// It stores the data, marks the coordinator healthy and notifies listeners
// once. Safe to call concurrently with RequestRefresh.
func (c *Coordinator[T]) SetUpdatedData(data T) {
	c.mu.Lock()
	if c.down {
		c.mu.Unlock()
		return
	}
	c.data = data
	c.lastSuccess = true
	c.lastErr = nil
	snapshot := c.snapshotListenersLocked()
	c.mu.Unlock()

	c.logger.Debug("data updated out of band", "coordinator", c.name)
	for _, l := range snapshot {
		l.fn()
	}
}

// Shutdown stops the polling schedule, abandons any in-flight refresh
// (its listeners are not notified — shutdown is terminal, not a refresh
// outcome) and detaches all listeners. Idempotent.
func (c *Coordinator[T]) Shutdown() {
	c.mu.Lock()
	if c.down {
		c.mu.Unlock()
		return
	}
	c.down = true
	close(c.stop)

	var cancel context.CancelFunc
	if c.inflight != nil {
		c.inflight.dropped = true
		cancel = c.inflight.cancel
	}
	c.listeners = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.logger.Debug("coordinator shut down", "coordinator", c.name)
}

// beginCycle either joins the in-flight cycle or registers a new one.
func (c *Coordinator[T]) beginCycle() (cy *cycle, joined bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.down {
		return nil, false, ErrShutdown
	}
	if c.inflight != nil {
		return c.inflight, true, nil
	}

	cy = &cycle{done: make(chan struct{})}
	c.inflight = cy
	return cy, false, nil
}

// runCycle executes the fetch for a cycle this caller initiated, then
// applies the outcome and releases joiners.
func (c *Coordinator[T]) runCycle(ctx context.Context, cy *cycle) {
	start := time.Now()

	var cancel context.CancelFunc
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	// Publish the cancel func so Shutdown can interrupt the fetch.
	c.mu.Lock()
	cy.cancel = cancel
	dropped := cy.dropped
	c.mu.Unlock()

	var (
		data T
		err  error
	)
	if !dropped {
		data, err = c.safeFetch(ctx)
	}

	c.finishCycle(cy, data, err, time.Since(start))
}

// safeFetch invokes the fetch function with panic recovery. A panicking
// fetch is recorded as an update failure rather than crashing the caller
// or the scheduler goroutine.
func (c *Coordinator[T]) safeFetch(ctx context.Context) (data T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: fetch panic: %v", ErrUpdateFailed, r)
			c.logger.Error("fetch panic recovered", "coordinator", c.name, "panic", r)
		}
	}()
	return c.fetch(ctx)
}

// finishCycle applies the cycle outcome, notifies listeners and releases
// joiners. State is updated before any listener runs, so every listener of
// the cycle observes the same data/success snapshot.
func (c *Coordinator[T]) finishCycle(cy *cycle, data T, err error, took time.Duration) {
	c.mu.Lock()

	if cy.dropped || c.down {
		cy.dropped = true
		if c.inflight == cy {
			c.inflight = nil
		}
		c.mu.Unlock()
		close(cy.done)
		return
	}

	c.inflight = nil
	c.lastCycle = took

	var authErr error
	if err != nil {
		err = classify(err)
		cy.err = err
		c.lastSuccess = false
		c.lastErr = err
		if errors.Is(err, ErrAuthFailed) {
			authErr = err
		}
	} else {
		c.data = data
		c.lastSuccess = true
		c.lastErr = nil
	}

	snapshot := c.snapshotListenersLocked()
	hook := c.onAuthFailed
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("refresh failed", "coordinator", c.name, "error", err, "duration", took)
	} else {
		c.logger.Debug("refresh succeeded", "coordinator", c.name, "duration", took)
	}

	if authErr != nil && hook != nil {
		hook(authErr)
	}

	for _, l := range snapshot {
		l.fn()
	}

	close(cy.done)
}

// snapshotListenersLocked copies the listener slice so notification happens
// outside the lock in stable registration order. Caller must hold c.mu.
func (c *Coordinator[T]) snapshotListenersLocked() []*listener {
	snapshot := make([]*listener, len(c.listeners))
	copy(snapshot, c.listeners)
	return snapshot
}

// scheduleLoop drives interval polling. The timer is reset only after the
// scheduled cycle completes, so a slow fetch naturally delays the next poll
// instead of letting ticks pile up behind it. Manual refreshes never touch
// the timer; a tick that arrives while a manual refresh is in flight simply
// joins it.
func (c *Coordinator[T]) scheduleLoop() {
	t := time.NewTimer(c.interval)
	defer t.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
		}

		if err := c.RequestRefresh(context.Background()); err != nil && !errors.Is(err, ErrShutdown) {
			c.logger.Warn("scheduled refresh aborted", "coordinator", c.name, "error", err)
		}

		t.Reset(c.interval)
	}
}

// classify maps a fetch error onto the coordinator error taxonomy.
// Already-typed errors pass through so callers can match on the kind.
func classify(err error) error {
	if errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrUpdateFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpdateFailed, err)
}
