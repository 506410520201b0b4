package domain

import (
	"context"
	"time"
)

// Event represents a capacity-limited event users can register for.
// Deleted events are kept in storage with IsDeleted set; every external
// lookup path treats them as absent.
// swagger:model Event
type Event struct {
	ID           int       `json:"event_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Point        int       `json:"point"`
	MaxAttenders int       `json:"max_attenders"`
	IsDeleted    bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EventWithImages is an event enriched with its image URLs in display order.
// swagger:model EventWithImages
type EventWithImages struct {
	Event
	ImageURLs []string `json:"image_urls"`
}

// EventPage is one page of enriched events plus the total number of
// qualifying events (not just the page length).
type EventPage struct {
	Events []*EventWithImages `json:"events"`
	Total  int                `json:"total"`
}

// EventStatusFilter classifies events by their time window relative to now.
type EventStatusFilter string

const (
	EventStatusUpcoming EventStatusFilter = "upcoming"
	EventStatusOngoing  EventStatusFilter = "ongoing"
	EventStatusPast     EventStatusFilter = "past"
)

// Valid reports whether the filter is one of the known classifiers.
func (f EventStatusFilter) Valid() bool {
	switch f {
	case EventStatusUpcoming, EventStatusOngoing, EventStatusPast:
		return true
	}
	return false
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	// GetByID returns the event or ErrNotFound. Soft-deleted events are
	// reported as ErrNotFound.
	GetByID(ctx context.Context, id int) (*Event, error)
	// GetByIDForUpdate behaves like GetByID but acquires an exclusive
	// row-level lock held until the surrounding transaction ends. It must be
	// called inside Transactor.WithinTx.
	GetByIDForUpdate(ctx context.Context, id int) (*Event, error)
	Update(ctx context.Context, event *Event) error
	// SoftDelete flips the deletion flag. It returns (false, nil) when the
	// event does not exist or is already deleted.
	SoftDelete(ctx context.Context, id int) (bool, error)
	// ListPage returns one page of non-deleted events, each joined to its
	// ordered image URLs, plus the total number of non-deleted events.
	ListPage(ctx context.Context, params PaginationParams) (*EventPage, error)
	// ListPageByStatus is ListPage additionally filtered by time window;
	// the total reflects only matching events.
	ListPageByStatus(ctx context.Context, params PaginationParams, filter EventStatusFilter, now time.Time) (*EventPage, error)
	// ListAttendedByUser returns events for which the user's registration
	// reached an attended status, most recent first.
	ListAttendedByUser(ctx context.Context, userID int) ([]*Event, error)
}

// EventCreateRequest carries the validated fields for creating an event.
type EventCreateRequest struct {
	Name         string    `validate:"required,min=3,max=200"`
	Description  string    `validate:"required,max=2000"`
	Location     string    `validate:"required,max=200"`
	StartTime    time.Time `validate:"required"`
	EndTime      time.Time `validate:"required"`
	Point        int       `validate:"gte=0"`
	MaxAttenders int       `validate:"required,gt=0"`
}

// EventUpdateRequest carries the fields for updating an event. The image set
// is replaced only when the caller supplies new uploads.
type EventUpdateRequest struct {
	EventID int `validate:"required,gt=0"`
	EventCreateRequest
}

// EventService orchestrates event CRUD, pagination and the image and
// notification collaborators. Every mutating operation is one transaction.
type EventService interface {
	FindByID(ctx context.Context, id int) (*EventWithImages, error)
	ListPage(ctx context.Context, params PaginationParams) (*EventPage, error)
	ListByStatus(ctx context.Context, params PaginationParams, filter EventStatusFilter) (*EventPage, error)
	Create(ctx context.Context, req EventCreateRequest, uploads []ImageUpload) (*Event, error)
	Update(ctx context.Context, req EventUpdateRequest, uploads []ImageUpload) (*Event, error)
	// SoftDelete returns false, not an error, when the event is absent:
	// deleting a nonexistent id is idempotent.
	SoftDelete(ctx context.Context, id int) (bool, error)
	ListAttendedByUser(ctx context.Context, userID int) ([]*Event, error)
}
