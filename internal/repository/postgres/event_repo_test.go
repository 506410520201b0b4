package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"eventhub/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

var eventRowColumns = []string{
	"event_id", "name", "description", "location", "start_time", "end_time",
	"point", "max_attenders", "is_deleted", "created_at", "updated_at",
}

var pageRowColumns = append(append([]string{}, eventRowColumns...), "image_urls", "total_count")

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  int
		wantErr bool
	}{
		{
			name: "success",
			event: &domain.Event{
				Name:         "Go Meetup",
				Description:  "Monthly meetup",
				Location:     "Room 4",
				StartTime:    now,
				EndTime:      now.Add(2 * time.Hour),
				Point:        10,
				MaxAttenders: 50,
				CreatedAt:    now,
				UpdatedAt:    now,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(name, description, location, start_time, end_time, point, max_attenders, is_deleted, created_at, updated_at\)`).
					WithArgs("Go Meetup", "Monthly meetup", "Room 4", now, now.Add(2*time.Hour), 10, 50, now, now).
					WillReturnRows(sqlmock.NewRows([]string{"event_id"}).AddRow(7))
			},
			wantID:  7,
			wantErr: false,
		},
		{
			name: "db error",
			event: &domain.Event{
				Name:         "Go Meetup",
				MaxAttenders: 50,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		id         int
		mock       func(mock sqlmock.Sqlmock)
		want       *domain.Event
		wantErr    bool
		isNotFound bool
	}{
		{
			name: "success",
			id:   7,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT event_id, name, description, location, start_time, end_time, point, max_attenders, is_deleted, created_at, updated_at\s+FROM events\s+WHERE event_id = \$1 AND is_deleted = FALSE`).
					WithArgs(7).
					WillReturnRows(sqlmock.NewRows(eventRowColumns).
						AddRow(7, "Go Meetup", "Monthly meetup", "Room 4", now, now.Add(2*time.Hour), 10, 50, false, now, now))
			},
			want: &domain.Event{
				ID:           7,
				Name:         "Go Meetup",
				Description:  "Monthly meetup",
				Location:     "Room 4",
				StartTime:    now,
				EndTime:      now.Add(2 * time.Hour),
				Point:        10,
				MaxAttenders: 50,
				CreatedAt:    now,
				UpdatedAt:    now,
			},
		},
		{
			name: "not found",
			id:   99,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT event_id,`).
					WithArgs(99).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr:    true,
			isNotFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, got)
				if tt.isNotFound {
					require.True(t, errors.Is(err, domain.ErrNotFound))
				}
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByIDForUpdate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		id      int
		mock    func(mock sqlmock.Sqlmock)
		wantID  int
		wantErr error
	}{
		{
			name: "locks the row",
			id:   7,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE event_id = \$1 AND is_deleted = FALSE\s+FOR UPDATE`).
					WithArgs(7).
					WillReturnRows(sqlmock.NewRows(eventRowColumns).
						AddRow(7, "Go Meetup", "d", "l", now, now.Add(time.Hour), 0, 5, false, now, now))
			},
			wantID: 7,
		},
		{
			name: "lock wait timeout maps to ErrLockTimeout",
			id:   7,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FOR UPDATE`).
					WithArgs(7).
					WillReturnError(&pq.Error{Code: "55P03"})
			},
			wantErr: domain.ErrLockTimeout,
		},
		{
			name: "soft-deleted row is absent",
			id:   8,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FOR UPDATE`).
					WithArgs(8).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			got, err := repo.GetByIDForUpdate(ctx, tt.id)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				require.Nil(t, got)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, got.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		id          int
		mock        func(mock sqlmock.Sqlmock)
		wantDeleted bool
		wantErr     bool
	}{
		{
			name: "deletes a live event",
			id:   7,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events\s+SET is_deleted = TRUE`).
					WithArgs(7).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantDeleted: true,
		},
		{
			name: "absent or already deleted is a no-op",
			id:   99,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events\s+SET is_deleted = TRUE`).
					WithArgs(99).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantDeleted: false,
		},
		{
			name: "db error",
			id:   7,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events\s+SET is_deleted = TRUE`).
					WithArgs(7).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			deleted, err := repo.SoftDelete(ctx, tt.id)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantDeleted, deleted)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	event := &domain.Event{
		ID:           7,
		Name:         "Renamed",
		Description:  "d",
		Location:     "l",
		StartTime:    now,
		EndTime:      now.Add(time.Hour),
		Point:        5,
		MaxAttenders: 20,
		UpdatedAt:    now,
	}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events\s+SET name = \$1`).
			WithArgs("Renamed", "d", "l", now, now.Add(time.Hour), 5, 20, now, 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewEventRepository(db).Update(ctx, event))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("soft-deleted event is not updatable", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events\s+SET name = \$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = NewEventRepository(db).Update(ctx, event)
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestEventRepository_ListPage(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		params domain.PaginationParams
		mock   func(mock sqlmock.Sqlmock)
		check  func(t *testing.T, page *domain.EventPage)
	}{
		{
			name:   "aggregated urls keep image order and total spans pages",
			params: domain.PaginationParams{Page: 2, PageSize: 2},
			mock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(pageRowColumns).
					AddRow(3, "C", "d", "l", now, now.Add(time.Hour), 0, 10, false, now, now, "https://img/a.png,https://img/b.png", 5).
					AddRow(2, "B", "d", "l", now, now.Add(time.Hour), 0, 10, false, now, now, "", 5)
				mock.ExpectQuery(`string_agg\(i\.image_url, ',' ORDER BY i\.image_id\).+COUNT\(\*\) OVER \(\)`).
					WithArgs(2, 2).
					WillReturnRows(rows)
			},
			check: func(t *testing.T, page *domain.EventPage) {
				require.Equal(t, 5, page.Total)
				require.Len(t, page.Events, 2)
				require.Equal(t, []string{"https://img/a.png", "https://img/b.png"}, page.Events[0].ImageURLs)
				require.Equal(t, []string{}, page.Events[1].ImageURLs)
			},
		},
		{
			name:   "page past the end is empty but keeps the total",
			params: domain.PaginationParams{Page: 4, PageSize: 3},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`COUNT\(\*\) OVER \(\)`).
					WithArgs(3, 9).
					WillReturnRows(sqlmock.NewRows(pageRowColumns))
				mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM events e\s+WHERE e\.is_deleted = FALSE`).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
			},
			check: func(t *testing.T, page *domain.EventPage) {
				require.Equal(t, 7, page.Total)
				require.Empty(t, page.Events)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			page, err := NewEventRepository(db).ListPage(ctx, tt.params)
			require.NoError(t, err)
			tt.check(t, page)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_ListPageByStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	params := domain.PaginationParams{Page: 1, PageSize: 10}

	t.Run("upcoming filters on start_time", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`AND e\.start_time > \$3`).
			WithArgs(10, 0, now).
			WillReturnRows(sqlmock.NewRows(pageRowColumns).
				AddRow(4, "D", "d", "l", now.Add(time.Hour), now.Add(2*time.Hour), 0, 10, false, now, now, "", 1))

		page, err := NewEventRepository(db).ListPageByStatus(ctx, params, domain.EventStatusUpcoming, now)
		require.NoError(t, err)
		require.Equal(t, 1, page.Total)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty page falls back to a filtered count", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`AND e\.end_time < \$3`).
			WithArgs(10, 20, now).
			WillReturnRows(sqlmock.NewRows(pageRowColumns))
		mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM events e\s+WHERE e\.is_deleted = FALSE AND e\.end_time < \$1`).
			WithArgs(now).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

		page, err := NewEventRepository(db).ListPageByStatus(ctx, domain.PaginationParams{Page: 3, PageSize: 10}, domain.EventStatusPast, now)
		require.NoError(t, err)
		require.Equal(t, 12, page.Total)
		require.Empty(t, page.Events)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown filter is rejected", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		_, err = NewEventRepository(db).ListPageByStatus(ctx, params, domain.EventStatusFilter("someday"), now)
		require.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestEventRepository_ListAttendedByUser(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`JOIN registrations reg ON reg\.event_id = e\.event_id`).
		WithArgs(3, "attended_predicted", "attended_confirmed").
		WillReturnRows(sqlmock.NewRows(eventRowColumns).
			AddRow(7, "Go Meetup", "d", "l", now, now.Add(time.Hour), 0, 50, false, now, now))

	events, err := NewEventRepository(db).ListAttendedByUser(ctx, 3)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, 7, events[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
