package postgres

import (
	"context"
	"database/sql"

	"eventhub/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{
		DB: db,
	}
}

// CreateForAllUsers fans out in one statement so the broadcast stays inside
// the caller's transaction and needs no per-user round trips.
func (r *notificationRepository) CreateForAllUsers(ctx context.Context, eventID int, imageURL string) error {
	query := `
		INSERT INTO notifications (user_id, event_id, image_url, is_read, created_at)
		SELECT user_id, $1, $2, FALSE, NOW()
		FROM users
	`
	_, err := querier(ctx, r.DB).ExecContext(ctx, query, eventID, imageURL)
	return err
}

func (r *notificationRepository) DeleteByEvent(ctx context.Context, eventID int) (int, error) {
	query := `DELETE FROM notifications WHERE event_id = $1`
	result, err := querier(ctx, r.DB).ExecContext(ctx, query, eventID)
	if err != nil {
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int) ([]*domain.Notification, error) {
	query := `
		SELECT notification_id, user_id, event_id, image_url, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.EventID, &n.ImageURL, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, notificationID int) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE notification_id = $1 AND user_id = $2
	`
	result, err := querier(ctx, r.DB).ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
