package domain

import "errors"

// Sentinel errors shared across services and controllers.
var (
	// ErrNotFound covers both truly absent rows and soft-deleted events;
	// callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrCapacityExceeded is an expected business outcome, not a defect:
	// the event has no remaining capacity.
	ErrCapacityExceeded = errors.New("event capacity exceeded")

	// ErrAlreadyRegistered is returned when a user holding an active
	// registration attempts to register again.
	ErrAlreadyRegistered = errors.New("already registered for this event")

	// ErrLockTimeout is returned when the row lock on an event could not be
	// acquired in time. Callers may retry the operation.
	ErrLockTimeout = errors.New("lock wait timeout")

	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
