package integration

import "errors"

// Domain errors for the integration package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, integration.ErrInstanceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrInstanceNotFound is returned when an instance ID does not exist.
	ErrInstanceNotFound = errors.New("integration: instance not found")

	// ErrInstanceExists is returned when setting up an instance whose ID is
	// already registered.
	ErrInstanceExists = errors.New("integration: instance already exists")

	// ErrSetupFailed marks a fatal setup error. Setup failures wrapped with
	// it are never retried; the instance is discarded.
	ErrSetupFailed = errors.New("integration: setup failed")
)
