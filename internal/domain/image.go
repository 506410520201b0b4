package domain

import (
	"context"
	"time"
)

// EventImage is a stored image URL owned by an event. Insertion order
// (ascending ID) is display order.
type EventImage struct {
	ID       int    `json:"image_id"`
	EventID  int    `json:"event_id"`
	ImageURL string `json:"image_url"`
}

// AttendanceImage is a photo a registrant uploaded at an event as proof of
// presence. Rows outlive cancellation together with their registration row.
// swagger:model AttendanceImage
type AttendanceImage struct {
	ID        int       `json:"attendance_image_id"`
	UserID    int       `json:"user_id"`
	EventID   int       `json:"event_id"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// ImageUpload is one uploaded binary payload.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EventImageRepository defines storage operations for image URL rows.
type EventImageRepository interface {
	InsertBatch(ctx context.Context, eventID int, urls []string) error
	DeleteAllByEvent(ctx context.Context, eventID int) error
	// ListURLsByEvent returns URLs in display order.
	ListURLsByEvent(ctx context.Context, eventID int) ([]string, error)
}

// AttendanceImageRepository defines storage operations for attendance
// image rows.
type AttendanceImageRepository interface {
	Insert(ctx context.Context, img *AttendanceImage) error
	// ListByUserAndEvent returns the user's images for one event in upload
	// order.
	ListByUserAndEvent(ctx context.Context, userID, eventID int) ([]*AttendanceImage, error)
}

// ObjectStore persists binary payloads and returns stable public URLs.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// ImageService attaches and detaches image URL sets to an event. Store and
// DeleteAll write their URL rows through the context transaction when one
// is present, so event mutations and their image bookkeeping commit
// together.
type ImageService interface {
	// Store uploads the payloads and persists one URL row per upload,
	// returning the URLs in upload order.
	Store(ctx context.Context, eventID int, uploads []ImageUpload) ([]string, error)
	DeleteAll(ctx context.Context, eventID int) error
	ListURLs(ctx context.Context, eventID int) ([]string, error)

	// StoreAttendance uploads one attendance photo for a registrant and
	// persists its row.
	StoreAttendance(ctx context.Context, eventID, userID int, upload ImageUpload) (*AttendanceImage, error)
	ListAttendance(ctx context.Context, eventID, userID int) ([]*AttendanceImage, error)
}
