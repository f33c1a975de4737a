package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
)

type eventRepository struct {
	db querier
}

func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, club_id, name, capacity, starts_at, ends_at, cancelled, COALESCE(cancel_reason, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(&e.ID, &e.ClubID, &e.Name, &e.Capacity, &e.StartsAt, &e.EndsAt, &e.Cancelled, &e.CancelReason)
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int32) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.db.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", "events", "eventID", id)
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, repository.ErrNotFound) {
		logger.DatabaseResult("SELECT FOR UPDATE", 0, nil, "eventID", id)
		return nil, err
	}
	logger.DatabaseResult("SELECT FOR UPDATE", 1, err, "eventID", id)
	return e, err
}

func (r *eventRepository) Cancel(ctx context.Context, id int32, reason string) error {
	query := `UPDATE events SET cancelled = TRUE, cancel_reason = $1 WHERE id = $2 AND cancelled = FALSE`
	result, err := r.db.ExecContext(ctx, query, reason, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Either already cancelled or missing; only the latter is an error.
		var exists bool
		err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
	}
	return nil
}

func (r *eventRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events 
	          WHERE cancelled = FALSE AND starts_at >= $1 AND starts_at < $2 ORDER BY starts_at`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
