package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"eventhub/internal/domain"
)

type eventImageRepository struct {
	DB *sql.DB
}

func NewEventImageRepository(db *sql.DB) domain.EventImageRepository {
	return &eventImageRepository{
		DB: db,
	}
}

func (r *eventImageRepository) InsertBatch(ctx context.Context, eventID int, urls []string) error {
	query := `
		INSERT INTO event_images (event_id, image_url)
		SELECT $1, unnest($2::text[])
	`
	_, err := querier(ctx, r.DB).ExecContext(ctx, query, eventID, pq.Array(urls))
	return err
}

func (r *eventImageRepository) DeleteAllByEvent(ctx context.Context, eventID int) error {
	query := `DELETE FROM event_images WHERE event_id = $1`
	_, err := querier(ctx, r.DB).ExecContext(ctx, query, eventID)
	return err
}

func (r *eventImageRepository) ListURLsByEvent(ctx context.Context, eventID int) ([]string, error) {
	query := `
		SELECT image_url
		FROM event_images
		WHERE event_id = $1
		ORDER BY image_id
	`
	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}
