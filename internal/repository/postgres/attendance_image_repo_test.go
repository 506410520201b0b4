package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

func TestAttendanceImageRepository_Insert(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	img := &domain.AttendanceImage{
		UserID:    3,
		EventID:   7,
		ImageURL:  "https://cdn.test/attendance/7/3/selfie.png",
		CreatedAt: now,
	}
	mock.ExpectQuery(`INSERT INTO attendance_images \(user_id, event_id, image_url, created_at\)`).
		WithArgs(3, 7, img.ImageURL, now).
		WillReturnRows(sqlmock.NewRows([]string{"attendance_image_id"}).AddRow(11))

	require.NoError(t, NewAttendanceImageRepository(db).Insert(ctx, img))
	require.Equal(t, 11, img.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceImageRepository_ListByUserAndEvent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM attendance_images\s+WHERE user_id = \$1 AND event_id = \$2\s+ORDER BY attendance_image_id`).
		WithArgs(3, 7).
		WillReturnRows(sqlmock.NewRows([]string{"attendance_image_id", "user_id", "event_id", "image_url", "created_at"}).
			AddRow(1, 3, 7, "https://cdn.test/a.png", now).
			AddRow(2, 3, 7, "https://cdn.test/b.png", now))

	images, err := NewAttendanceImageRepository(db).ListByUserAndEvent(ctx, 3, 7)
	require.NoError(t, err)
	require.Len(t, images, 2)
	require.Equal(t, "https://cdn.test/a.png", images[0].ImageURL)
	require.Equal(t, 2, images[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
