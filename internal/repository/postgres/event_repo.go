package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"eventhub/internal/domain"
)

// imageURLSeparator joins image URLs into one column in the page queries.
// The consumer splits on the same separator to recover display order.
const imageURLSeparator = ","

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, description, location, start_time, end_time, point, max_attenders, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $9)
		RETURNING event_id
	`
	return querier(ctx, r.DB).QueryRowContext(ctx, query,
		e.Name, e.Description, e.Location, e.StartTime, e.EndTime,
		e.Point, e.MaxAttenders, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

const eventColumns = `event_id, name, description, location, start_time, end_time, point, max_attenders, is_deleted, created_at, updated_at`

func scanEvent(row *sql.Row) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(
		&e.ID, &e.Name, &e.Description, &e.Location, &e.StartTime, &e.EndTime,
		&e.Point, &e.MaxAttenders, &e.IsDeleted, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE event_id = $1 AND is_deleted = FALSE
	`
	return scanEvent(querier(ctx, r.DB).QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate takes an exclusive row lock on the event, held until the
// context transaction commits or rolls back. Concurrent callers on the same
// event block here; callers on other events do not. A lock wait timeout
// from the server surfaces as domain.ErrLockTimeout.
func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id int) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE event_id = $1 AND is_deleted = FALSE
		FOR UPDATE
	`
	e, err := scanEvent(querier(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "55P03" { // lock_not_available
			return nil, domain.ErrLockTimeout
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, location = $3, start_time = $4, end_time = $5,
		    point = $6, max_attenders = $7, updated_at = $8
		WHERE event_id = $9 AND is_deleted = FALSE
	`
	result, err := querier(ctx, r.DB).ExecContext(ctx, query,
		e.Name, e.Description, e.Location, e.StartTime, e.EndTime,
		e.Point, e.MaxAttenders, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) SoftDelete(ctx context.Context, id int) (bool, error) {
	query := `
		UPDATE events
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE event_id = $1 AND is_deleted = FALSE
	`
	result, err := querier(ctx, r.DB).ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// eventPageQuery aggregates, in one pass, each qualifying event with its
// image URLs (string_agg in image id order) and the grand total of
// qualifying events (COUNT(*) OVER () runs after grouping and before
// LIMIT, so the total is stable across pages). One row per event, no N+1.
// The window total only travels on returned rows; a page past the last
// event comes back with zero rows, so the callers recover the total with
// eventCountQuery over the same WHERE clause.
const eventPageQuery = `
	SELECT e.event_id, e.name, e.description, e.location, e.start_time, e.end_time,
	       e.point, e.max_attenders, e.is_deleted, e.created_at, e.updated_at,
	       COALESCE(string_agg(i.image_url, '` + imageURLSeparator + `' ORDER BY i.image_id), '') AS image_urls,
	       COUNT(*) OVER () AS total_count
	FROM events e
	LEFT JOIN event_images i ON i.event_id = e.event_id
	WHERE e.is_deleted = FALSE%s
	GROUP BY e.event_id
	ORDER BY e.start_time DESC, e.event_id DESC
	LIMIT $1 OFFSET $2
`

const eventCountQuery = `
	SELECT COUNT(*)
	FROM events e
	WHERE e.is_deleted = FALSE%s
`

// statusCond returns the time-window condition for filter with its
// placeholder numbered arg ($3 in the page query, $1 in the count query).
func statusCond(filter domain.EventStatusFilter, arg int) (string, error) {
	switch filter {
	case domain.EventStatusUpcoming:
		return fmt.Sprintf(" AND e.start_time > $%d", arg), nil
	case domain.EventStatusOngoing:
		return fmt.Sprintf(" AND e.start_time <= $%d AND e.end_time >= $%d", arg, arg), nil
	case domain.EventStatusPast:
		return fmt.Sprintf(" AND e.end_time < $%d", arg), nil
	default:
		return "", domain.ErrInvalidInput
	}
}

func (r *eventRepository) ListPage(ctx context.Context, params domain.PaginationParams) (*domain.EventPage, error) {
	query := fmt.Sprintf(eventPageQuery, "")
	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, err
	}
	page, err := collectEventPage(rows)
	if err != nil {
		return nil, err
	}
	if len(page.Events) == 0 {
		countQuery := fmt.Sprintf(eventCountQuery, "")
		if err := querier(ctx, r.DB).QueryRowContext(ctx, countQuery).Scan(&page.Total); err != nil {
			return nil, err
		}
	}
	return page, nil
}

func (r *eventRepository) ListPageByStatus(ctx context.Context, params domain.PaginationParams, filter domain.EventStatusFilter, now time.Time) (*domain.EventPage, error) {
	cond, err := statusCond(filter, 3)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(eventPageQuery, cond)
	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, params.PageSize, params.Offset(), now)
	if err != nil {
		return nil, err
	}
	page, err := collectEventPage(rows)
	if err != nil {
		return nil, err
	}
	if len(page.Events) == 0 {
		countCond, _ := statusCond(filter, 1)
		countQuery := fmt.Sprintf(eventCountQuery, countCond)
		if err := querier(ctx, r.DB).QueryRowContext(ctx, countQuery, now).Scan(&page.Total); err != nil {
			return nil, err
		}
	}
	return page, nil
}

func collectEventPage(rows *sql.Rows) (*domain.EventPage, error) {
	defer rows.Close()

	page := &domain.EventPage{Events: []*domain.EventWithImages{}}
	for rows.Next() {
		ev := &domain.EventWithImages{}
		var urls string
		if err := rows.Scan(
			&ev.ID, &ev.Name, &ev.Description, &ev.Location, &ev.StartTime, &ev.EndTime,
			&ev.Point, &ev.MaxAttenders, &ev.IsDeleted, &ev.CreatedAt, &ev.UpdatedAt,
			&urls, &page.Total,
		); err != nil {
			return nil, err
		}
		ev.ImageURLs = splitImageURLs(urls)
		page.Events = append(page.Events, ev)
	}
	return page, rows.Err()
}

// splitImageURLs splits the delimited aggregate back into a list. An empty
// aggregate means the event has no images, not one empty URL.
func splitImageURLs(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, imageURLSeparator)
}

func (r *eventRepository) ListAttendedByUser(ctx context.Context, userID int) ([]*domain.Event, error) {
	query := `
		SELECT e.event_id, e.name, e.description, e.location, e.start_time, e.end_time,
		       e.point, e.max_attenders, e.is_deleted, e.created_at, e.updated_at
		FROM events e
		JOIN registrations reg ON reg.event_id = e.event_id
		WHERE reg.user_id = $1
		  AND reg.status IN ($2, $3)
		  AND e.is_deleted = FALSE
		ORDER BY e.start_time DESC
	`
	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, userID,
		string(domain.StatusAttendedPredicted), string(domain.StatusAttendedConfirmed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Description, &e.Location, &e.StartTime, &e.EndTime,
			&e.Point, &e.MaxAttenders, &e.IsDeleted, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
