package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the state of a user's registration for an event.
// The lifecycle per (user, event) pair is:
//
//	none -> registered -> {cancelled, attended_predicted} -> attended_confirmed
//
// Cancelled rows are kept; re-registering reuses the composite key and
// overwrites the status.
type RegistrationStatus string

const (
	StatusRegistered        RegistrationStatus = "registered"
	StatusCancelled         RegistrationStatus = "cancelled"
	StatusAttendedPredicted RegistrationStatus = "attended_predicted"
	StatusAttendedConfirmed RegistrationStatus = "attended_confirmed"
)

// ActiveStatuses are the statuses that count toward event capacity.
var ActiveStatuses = []RegistrationStatus{
	StatusRegistered,
	StatusAttendedPredicted,
	StatusAttendedConfirmed,
}

// Valid reports whether s is a known registration status.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusRegistered, StatusCancelled, StatusAttendedPredicted, StatusAttendedConfirmed:
		return true
	}
	return false
}

// Active reports whether s counts toward capacity.
func (s RegistrationStatus) Active() bool {
	return s == StatusRegistered || s == StatusAttendedPredicted || s == StatusAttendedConfirmed
}

// CanTransitionTo reports whether the status machine allows moving from s
// to next. Terminal states for one cycle are cancelled and
// attended_confirmed; a cancelled user re-registers through Register, not
// through a direct transition.
func (s RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	switch s {
	case StatusRegistered:
		return next == StatusCancelled || next == StatusAttendedPredicted
	case StatusAttendedPredicted:
		return next == StatusAttendedConfirmed || next == StatusRegistered
	}
	return false
}

// Registration is a (user, event) registration row. Identity is the
// composite key; rows are never physically removed.
// swagger:model Registration
type Registration struct {
	UserID    int                `json:"user_id"`
	EventID   int                `json:"event_id"`
	Status    RegistrationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	// Upsert inserts the row or, when the composite key exists, overwrites
	// status and updated_at.
	Upsert(ctx context.Context, reg *Registration) error
	GetByEventAndUser(ctx context.Context, eventID, userID int) (*Registration, error)
	// CountActiveByEvent counts rows whose status counts toward capacity.
	CountActiveByEvent(ctx context.Context, eventID int) (int, error)
	// UpdateStatus sets the status for one row; ErrNotFound when absent.
	UpdateStatus(ctx context.Context, eventID, userID int, status RegistrationStatus) error
	// MarkRegisteredAsPredicted bulk-moves registered rows of one event to
	// attended_predicted and returns how many rows changed.
	MarkRegisteredAsPredicted(ctx context.Context, eventID int) (int, error)
	ListByEvent(ctx context.Context, eventID int) ([]*Registration, error)
}

// RegistrationService implements the capacity-safe registration protocol.
// Every operation that mutates the active-registration set of an event runs
// inside a transaction holding that event's exclusive row lock, so the
// capacity invariant holds under concurrent requests and across process
// instances.
type RegistrationService interface {
	// Register registers the user. Expected outcomes: ErrNotFound (event
	// absent or deleted), ErrCapacityExceeded, ErrAlreadyRegistered.
	Register(ctx context.Context, eventID, userID int) (*Registration, error)
	// Cancel moves the caller's registration to cancelled; ErrNotFound when
	// the user holds no active registration.
	Cancel(ctx context.Context, eventID, userID int) error
	IsRegistered(ctx context.Context, eventID, userID int) (bool, error)

	// AttachAttendanceImage stores a proof-of-presence photo for the
	// caller. The caller must hold an active registration for the event;
	// ErrNotFound otherwise.
	AttachAttendanceImage(ctx context.Context, eventID, userID int, upload ImageUpload) (*AttendanceImage, error)
	// ListAttendanceImages returns the user's attendance photos for the
	// event. Images of since-cancelled registrations are kept.
	ListAttendanceImages(ctx context.Context, eventID, userID int) ([]*AttendanceImage, error)

	// Admin operations. They take the same per-event lock as Register.
	RemoveRegistrant(ctx context.Context, eventID, userID int) error
	UpdateRegistrantStatus(ctx context.Context, eventID, userID int, status RegistrationStatus) error
	// MarkPredictedAttendance resolves predicted attendance near event start:
	// all registered rows become attended_predicted.
	MarkPredictedAttendance(ctx context.Context, eventID int) (int, error)
	ListRegistrants(ctx context.Context, eventID int) ([]*Registration, error)
}
