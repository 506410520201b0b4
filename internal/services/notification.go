package services

import (
	"context"
	"fmt"

	"eventhub/internal/domain"
)

type notificationService struct {
	repo     domain.NotificationRepository
	userRepo domain.UserRepository
	mailer   domain.Mailer
}

// NewNotificationService creates a NotificationService. mailer may be a
// noop; a failing mail send aborts the broadcast and therefore the
// enclosing event transaction.
func NewNotificationService(repo domain.NotificationRepository, userRepo domain.UserRepository, mailer domain.Mailer) domain.NotificationService {
	return &notificationService{
		repo:     repo,
		userRepo: userRepo,
		mailer:   mailer,
	}
}

func (s *notificationService) Broadcast(ctx context.Context, eventID int, imageURL string) error {
	if err := s.repo.CreateForAllUsers(ctx, eventID, imageURL); err != nil {
		return fmt.Errorf("create notifications: %w", err)
	}
	emails, err := s.userRepo.ListEmails(ctx)
	if err != nil {
		return fmt.Errorf("list user emails: %w", err)
	}
	subject := "A new event is open for registration"
	text := "A new event has just been published. Log in to see the details and register."
	html := fmt.Sprintf(`<p>%s</p><p><img src=%q alt="event"></p>`, text, imageURL)
	for _, to := range emails {
		if err := s.mailer.Send(to, subject, html, text); err != nil {
			return fmt.Errorf("send notification mail to %s: %w", to, err)
		}
	}
	return nil
}

func (s *notificationService) Retract(ctx context.Context, eventID int) error {
	if _, err := s.repo.DeleteByEvent(ctx, eventID); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}

func (s *notificationService) ListForUser(ctx context.Context, userID int) ([]*domain.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID int) error {
	if err := s.repo.MarkRead(ctx, userID, notificationID); err != nil {
		return err
	}
	return nil
}
