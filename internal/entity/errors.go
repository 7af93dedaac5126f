package entity

import "errors"

// Domain errors for the entity package.
var (
	// ErrEntityNotFound is returned when an entity ID does not exist.
	ErrEntityNotFound = errors.New("entity: not found")

	// ErrEntityExists is returned when adding an entity with an ID that
	// already exists.
	ErrEntityExists = errors.New("entity: already exists")

	// ErrInvalidEntity is returned when entity validation fails.
	ErrInvalidEntity = errors.New("entity: invalid")

	// ErrInvalidCapability is returned when a capability is not recognised.
	ErrInvalidCapability = errors.New("entity: invalid capability")

	// ErrCommandNotSupported is returned when a command targets a
	// capability the entity does not carry.
	ErrCommandNotSupported = errors.New("entity: command not supported")

	// ErrPublisherUnavailable is returned when no MQTT publisher is wired.
	ErrPublisherUnavailable = errors.New("entity: publisher unavailable")
)
