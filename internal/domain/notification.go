package domain

import (
	"context"
	"time"
)

// Notification tells one user about one event. Rows are created for every
// user when an event is published and removed when the event is deleted.
// swagger:model Notification
type Notification struct {
	ID        int       `json:"notification_id"`
	UserID    int       `json:"user_id"`
	EventID   int       `json:"event_id"`
	ImageURL  string    `json:"image_url"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationRepository defines storage operations for notifications.
type NotificationRepository interface {
	// CreateForAllUsers inserts one row per existing user for the event.
	CreateForAllUsers(ctx context.Context, eventID int, imageURL string) error
	DeleteByEvent(ctx context.Context, eventID int) (int, error)
	ListByUser(ctx context.Context, userID int) ([]*Notification, error)
	// MarkRead flags one of the user's notifications; ErrNotFound when the
	// row does not exist or belongs to someone else.
	MarkRead(ctx context.Context, userID, notificationID int) error
}

// Mailer sends a single email. Implementations may use SES or be a no-op.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// NotificationService broadcasts and retracts event notifications.
// Broadcast runs inside the event-creation transaction: its rows roll back
// with the event, and a mail failure aborts the whole create.
type NotificationService interface {
	Broadcast(ctx context.Context, eventID int, imageURL string) error
	Retract(ctx context.Context, eventID int) error
	ListForUser(ctx context.Context, userID int) ([]*Notification, error)
	MarkRead(ctx context.Context, userID, notificationID int) error
}
