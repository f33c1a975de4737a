package postgres

import (
	"context"
	"database/sql"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
)

type enrollmentRepository struct {
	db querier
}

func NewEnrollmentRepository(db *sql.DB) repository.EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, e *domain.Enrollment) error {
	query := `INSERT INTO enrollments (user_id, event_id, joined_at) VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, event_id) DO NOTHING`
	logger.DatabaseCall("INSERT", "enrollments", "userID", e.UserID, "eventID", e.EventID)
	result, err := r.db.ExecContext(ctx, query, e.UserID, e.EventID, e.JoinedAt)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err, "eventID", e.EventID)
		return mapError(err)
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("INSERT", rows, err, "eventID", e.EventID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrAlreadyExists
	}
	return nil
}

func (r *enrollmentRepository) Delete(ctx context.Context, userID, eventID int32) error {
	query := `DELETE FROM enrollments WHERE user_id = $1 AND event_id = $2`
	result, err := r.db.ExecContext(ctx, query, userID, eventID)
	if err != nil {
		return err
	}
	return requireOneRow(result, repository.ErrNotFound)
}

func (r *enrollmentRepository) Get(ctx context.Context, userID, eventID int32) (*domain.Enrollment, error) {
	e := &domain.Enrollment{}
	query := `SELECT user_id, event_id, joined_at FROM enrollments WHERE user_id = $1 AND event_id = $2`
	err := r.db.QueryRowContext(ctx, query, userID, eventID).Scan(&e.UserID, &e.EventID, &e.JoinedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (r *enrollmentRepository) CountByEvent(ctx context.Context, eventID int32) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM enrollments WHERE event_id = $1`, eventID).Scan(&count)
	return count, err
}

func (r *enrollmentRepository) ListUserIDsByEvent(ctx context.Context, eventID int32) ([]int32, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM enrollments WHERE event_id = $1 ORDER BY joined_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
