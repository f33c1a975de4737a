package postgres

import (
	"context"
	"database/sql"
	"time"

	"clubhub-backend/internal/repository"
)

type reminderRepository struct {
	db querier
}

func NewReminderRepository(db *sql.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) MarkSent(ctx context.Context, eventID int32, at time.Time) (bool, error) {
	query := `INSERT INTO event_reminders (event_id, sent_at) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING`
	result, err := r.db.ExecContext(ctx, query, eventID, at)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
