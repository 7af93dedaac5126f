package coordinator

import "errors"

// Domain errors for the coordinator package.
//
// Fetch functions should wrap their failures with ErrUpdateFailed (or
// ErrAuthFailed for credential problems) so callers can classify outcomes
// with errors.Is():
//
//	return nil, fmt.Errorf("%w: station unreachable: %w", coordinator.ErrUpdateFailed, err)
var (
	// ErrUpdateFailed is the general "could not retrieve current data" kind.
	// Fetch errors that carry no recognised kind are wrapped with it.
	ErrUpdateFailed = errors.New("coordinator: update failed")

	// ErrAuthFailed signals that stored credentials are no longer valid.
	// It is recorded like any other failure but passes through unwrapped so
	// integrations can trigger a re-authentication flow.
	ErrAuthFailed = errors.New("coordinator: authentication failed")

	// ErrShutdown is returned from refresh requests issued after (or
	// interrupted by) Shutdown.
	ErrShutdown = errors.New("coordinator: shut down")

	// ErrPushOnly is returned from RequestRefresh when the coordinator has
	// no fetch function and relies entirely on SetUpdatedData.
	ErrPushOnly = errors.New("coordinator: no fetch function (push-only)")
)
