package coordinator

import "time"

// Logger defines the logging interface used by the Coordinator.
// This allows different logging implementations to be used.
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

// settings holds optional coordinator configuration applied by Options.
type settings struct {
	interval     time.Duration
	timeout      time.Duration
	logger       Logger
	onAuthFailed func(error)
}

// Option configures a Coordinator at construction time.
type Option func(*settings)

// WithInterval enables interval polling. The next poll is always scheduled
// relative to the completion of the previous scheduled cycle. A zero or
// negative interval (the default) means push-only: the coordinator never
// polls on its own.
func WithInterval(d time.Duration) Option {
	return func(s *settings) {
		s.interval = d
	}
}

// WithRequestTimeout bounds each fetch call with a deadline. Zero (the
// default) means the fetch runs under the caller's context alone.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOnAuthFailed registers a hook invoked whenever a refresh fails with
// ErrAuthFailed. Integrations use it to start a re-authentication flow.
// The hook runs outside the coordinator lock, once per failing cycle.
func WithOnAuthFailed(fn func(error)) Option {
	return func(s *settings) {
		s.onAuthFailed = fn
	}
}
