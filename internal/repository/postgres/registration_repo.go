package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventhub/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

// Upsert keeps history on re-registration: the composite key is reused and
// the status overwritten, created_at stays from the first cycle.
func (r *registrationRepository) Upsert(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (user_id, event_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, event_id)
		DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`
	_, err := querier(ctx, r.DB).ExecContext(ctx, query,
		reg.UserID, reg.EventID, string(reg.Status), reg.CreatedAt, reg.UpdatedAt)
	return err
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID int) (*domain.Registration, error) {
	query := `
		SELECT user_id, event_id, status, created_at, updated_at
		FROM registrations
		WHERE event_id = $1 AND user_id = $2
	`
	reg := &domain.Registration{}
	err := querier(ctx, r.DB).QueryRowContext(ctx, query, eventID, userID).
		Scan(&reg.UserID, &reg.EventID, &reg.Status, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) CountActiveByEvent(ctx context.Context, eventID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM registrations
		WHERE event_id = $1 AND status IN ($2, $3, $4)
	`
	var count int
	err := querier(ctx, r.DB).QueryRowContext(ctx, query, eventID,
		string(domain.StatusRegistered),
		string(domain.StatusAttendedPredicted),
		string(domain.StatusAttendedConfirmed),
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, eventID, userID int, status domain.RegistrationStatus) error {
	query := `
		UPDATE registrations
		SET status = $1, updated_at = NOW()
		WHERE event_id = $2 AND user_id = $3
	`
	result, err := querier(ctx, r.DB).ExecContext(ctx, query, string(status), eventID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) MarkRegisteredAsPredicted(ctx context.Context, eventID int) (int, error) {
	query := `
		UPDATE registrations
		SET status = $1, updated_at = NOW()
		WHERE event_id = $2 AND status = $3
	`
	result, err := querier(ctx, r.DB).ExecContext(ctx, query,
		string(domain.StatusAttendedPredicted), eventID, string(domain.StatusRegistered))
	if err != nil {
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

func (r *registrationRepository) ListByEvent(ctx context.Context, eventID int) ([]*domain.Registration, error) {
	query := `
		SELECT user_id, event_id, status, created_at, updated_at
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	rows, err := querier(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		if err := rows.Scan(&reg.UserID, &reg.EventID, &reg.Status, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
