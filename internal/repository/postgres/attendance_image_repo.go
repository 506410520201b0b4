package postgres

import (
	"context"
	"database/sql"

	"eventhub/internal/domain"
)

type attendanceImageRepository struct {
	DB *sql.DB
}

func NewAttendanceImageRepository(db *sql.DB) domain.AttendanceImageRepository {
	return &attendanceImageRepository{
		DB: db,
	}
}

func (r *attendanceImageRepository) Insert(ctx context.Context, img *domain.AttendanceImage) error {
	query := `
		INSERT INTO attendance_images (user_id, event_id, image_url, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING attendance_image_id
	`
	return querier(ctx, r.DB).QueryRowContext(ctx, query,
		img.UserID, img.EventID, img.ImageURL, img.CreatedAt,
	).Scan(&img.ID)
}

func (r *attendanceImageRepository) ListByUserAndEvent(ctx context.Context, userID, eventID int) ([]*domain.AttendanceImage, error) {
	query := `
		SELECT attendance_image_id, user_id, event_id, image_url, created_at
		FROM attendance_images
		WHERE user_id = $1 AND event_id = $2
		ORDER BY attendance_image_id
	`
	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, userID, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]*domain.AttendanceImage, 0)
	for rows.Next() {
		img := &domain.AttendanceImage{}
		if err := rows.Scan(&img.ID, &img.UserID, &img.EventID, &img.ImageURL, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
