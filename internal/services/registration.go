package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

type registrationService struct {
	tx               domain.Transactor
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	images           domain.ImageService
}

// NewRegistrationService creates a RegistrationService. Every mutation of an
// event's active-registration set goes through withEventLock, so capacity
// checks are serialized per event while different events stay concurrent.
func NewRegistrationService(
	tx domain.Transactor,
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	images domain.ImageService,
) domain.RegistrationService {
	return &registrationService{
		tx:               tx,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		images:           images,
	}
}

// withEventLock runs fn inside a transaction that holds the exclusive row
// lock on the event. The lock covers the whole read-count-then-write
// sequence; releasing it any earlier would reopen the check-then-act race.
func (s *registrationService) withEventLock(ctx context.Context, eventID int, fn func(ctx context.Context, event *domain.Event) error) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrLockTimeout) {
				return err
			}
			return fmt.Errorf("lock event: %w", err)
		}
		return fn(ctx, event)
	})
}

func (s *registrationService) Register(ctx context.Context, eventID, userID int) (*domain.Registration, error) {
	var reg *domain.Registration
	err := s.withEventLock(ctx, eventID, func(ctx context.Context, event *domain.Event) error {
		count, err := s.registrationRepo.CountActiveByEvent(ctx, eventID)
		if err != nil {
			return fmt.Errorf("count active registrations: %w", err)
		}
		if count >= event.MaxAttenders {
			return domain.ErrCapacityExceeded
		}

		existing, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get registration: %w", err)
		}
		if existing != nil && existing.Status.Active() {
			return domain.ErrAlreadyRegistered
		}

		now := time.Now()
		reg = &domain.Registration{
			UserID:    userID,
			EventID:   eventID,
			Status:    domain.StatusRegistered,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.registrationRepo.Upsert(ctx, reg); err != nil {
			return fmt.Errorf("upsert registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Cancel needs no capacity lock: it only frees capacity, it cannot
// overshoot it.
func (s *registrationService) Cancel(ctx context.Context, eventID, userID int) error {
	reg, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get registration: %w", err)
	}
	if reg.Status != domain.StatusRegistered {
		return domain.ErrNotFound
	}
	if err := s.registrationRepo.UpdateStatus(ctx, eventID, userID, domain.StatusCancelled); err != nil {
		return fmt.Errorf("cancel registration: %w", err)
	}
	return nil
}

func (s *registrationService) IsRegistered(ctx context.Context, eventID, userID int) (bool, error) {
	reg, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get registration: %w", err)
	}
	return reg.Status.Active(), nil
}

func (s *registrationService) AttachAttendanceImage(ctx context.Context, eventID, userID int, upload domain.ImageUpload) (*domain.AttendanceImage, error) {
	reg, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if !reg.Status.Active() {
		return nil, domain.ErrNotFound
	}
	img, err := s.images.StoreAttendance(ctx, eventID, userID, upload)
	if err != nil {
		return nil, fmt.Errorf("store attendance image: %w", err)
	}
	return img, nil
}

func (s *registrationService) ListAttendanceImages(ctx context.Context, eventID, userID int) ([]*domain.AttendanceImage, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	images, err := s.images.ListAttendance(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("list attendance images: %w", err)
	}
	return images, nil
}

func (s *registrationService) RemoveRegistrant(ctx context.Context, eventID, userID int) error {
	return s.withEventLock(ctx, eventID, func(ctx context.Context, _ *domain.Event) error {
		reg, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get registration: %w", err)
		}
		if !reg.Status.Active() {
			return domain.ErrNotFound
		}
		if err := s.registrationRepo.UpdateStatus(ctx, eventID, userID, domain.StatusCancelled); err != nil {
			return fmt.Errorf("remove registrant: %w", err)
		}
		return nil
	})
}

func (s *registrationService) UpdateRegistrantStatus(ctx context.Context, eventID, userID int, status domain.RegistrationStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	return s.withEventLock(ctx, eventID, func(ctx context.Context, _ *domain.Event) error {
		reg, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get registration: %w", err)
		}
		if !reg.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: cannot move %s to %s", domain.ErrInvalidInput, reg.Status, status)
		}
		if err := s.registrationRepo.UpdateStatus(ctx, eventID, userID, status); err != nil {
			return fmt.Errorf("update registrant status: %w", err)
		}
		return nil
	})
}

func (s *registrationService) MarkPredictedAttendance(ctx context.Context, eventID int) (int, error) {
	var changed int
	err := s.withEventLock(ctx, eventID, func(ctx context.Context, _ *domain.Event) error {
		n, err := s.registrationRepo.MarkRegisteredAsPredicted(ctx, eventID)
		if err != nil {
			return fmt.Errorf("mark predicted attendance: %w", err)
		}
		changed = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

func (s *registrationService) ListRegistrants(ctx context.Context, eventID int) ([]*domain.Registration, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	regs, err := s.registrationRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	return regs, nil
}
