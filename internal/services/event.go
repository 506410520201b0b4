package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator"

	"eventhub/internal/domain"
)

// Single validator instance shared by the package, per the library's
// recommendation.
var validate = validator.New()

type eventService struct {
	tx              domain.Transactor
	eventRepo       domain.EventRepository
	imageService    domain.ImageService
	notificationSvc domain.NotificationService
	contextTimeout  time.Duration
}

func NewEventService(
	tx domain.Transactor,
	eventRepo domain.EventRepository,
	imageService domain.ImageService,
	notificationSvc domain.NotificationService,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		tx:              tx,
		eventRepo:       eventRepo,
		imageService:    imageService,
		notificationSvc: notificationSvc,
		contextTimeout:  timeout,
	}
}

func (s *eventService) FindByID(ctx context.Context, id int) (*domain.EventWithImages, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	urls, err := s.imageService.ListURLs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list image urls: %w", err)
	}
	return &domain.EventWithImages{Event: *event, ImageURLs: urls}, nil
}

func (s *eventService) ListPage(ctx context.Context, params domain.PaginationParams) (*domain.EventPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if params.Page < 1 || params.PageSize < 1 {
		return nil, fmt.Errorf("%w: page and page size must be positive", domain.ErrInvalidInput)
	}
	page, err := s.eventRepo.ListPage(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return page, nil
}

func (s *eventService) ListByStatus(ctx context.Context, params domain.PaginationParams, filter domain.EventStatusFilter) (*domain.EventPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if params.Page < 1 || params.PageSize < 1 {
		return nil, fmt.Errorf("%w: page and page size must be positive", domain.ErrInvalidInput)
	}
	if !filter.Valid() {
		return nil, fmt.Errorf("%w: unknown status filter %q", domain.ErrInvalidInput, filter)
	}
	page, err := s.eventRepo.ListPageByStatus(ctx, params, filter, time.Now())
	if err != nil {
		return nil, fmt.Errorf("list events by status: %w", err)
	}
	return page, nil
}

func validateEventRequest(req domain.EventCreateRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if req.EndTime.Before(req.StartTime) {
		return fmt.Errorf("%w: end time before start time", domain.ErrInvalidInput)
	}
	return nil
}

// Create persists the event, its images, and the notification broadcast as
// one atomic unit. Validation happens before the transaction opens; any
// failure inside rolls back every row written so far.
func (s *eventService) Create(ctx context.Context, req domain.EventCreateRequest, uploads []domain.ImageUpload) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateEventRequest(req); err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: at least one image is required", domain.ErrInvalidInput)
	}

	now := time.Now()
	event := &domain.Event{
		Name:         req.Name,
		Description:  req.Description,
		Location:     req.Location,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Point:        req.Point,
		MaxAttenders: req.MaxAttenders,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.eventRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		urls, err := s.imageService.Store(ctx, event.ID, uploads)
		if err != nil {
			return fmt.Errorf("store images: %w", err)
		}
		// The first image is the notification thumbnail.
		if err := s.notificationSvc.Broadcast(ctx, event.ID, urls[0]); err != nil {
			return fmt.Errorf("broadcast notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Update replaces the event fields and, when new uploads are supplied,
// replaces the whole image set (delete-all-then-insert) in the same
// transaction.
func (s *eventService) Update(ctx context.Context, req domain.EventUpdateRequest, uploads []domain.ImageUpload) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := validateEventRequest(req.EventCreateRequest); err != nil {
		return nil, err
	}

	var updated *domain.Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.eventRepo.GetByID(ctx, req.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}

		current.Name = req.Name
		current.Description = req.Description
		current.Location = req.Location
		current.StartTime = req.StartTime
		current.EndTime = req.EndTime
		current.Point = req.Point
		current.MaxAttenders = req.MaxAttenders
		current.UpdatedAt = time.Now()

		if err := s.eventRepo.Update(ctx, current); err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		if len(uploads) > 0 {
			if err := s.imageService.DeleteAll(ctx, current.ID); err != nil {
				return fmt.Errorf("delete old images: %w", err)
			}
			if _, err := s.imageService.Store(ctx, current.ID, uploads); err != nil {
				return fmt.Errorf("store images: %w", err)
			}
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SoftDelete flips the deletion flag and retracts notifications atomically.
// Deleting an absent or already-deleted event returns false, not an error.
func (s *eventService) SoftDelete(ctx context.Context, id int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var deleted bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := s.eventRepo.SoftDelete(ctx, id)
		if err != nil {
			return fmt.Errorf("soft delete event: %w", err)
		}
		if !ok {
			return nil
		}
		if err := s.notificationSvc.Retract(ctx, id); err != nil {
			return fmt.Errorf("retract notifications: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (s *eventService) ListAttendedByUser(ctx context.Context, userID int) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListAttendedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attended events: %w", err)
	}
	return events, nil
}
