package postgres

import (
	"context"
	"database/sql"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository"
)

type clubRepository struct {
	db querier
}

func NewClubRepository(db *sql.DB) repository.ClubRepository {
	return &clubRepository{db: db}
}

func (r *clubRepository) GetByID(ctx context.Context, id int32) (*domain.Club, error) {
	c := &domain.Club{}
	var closedAt sql.NullTime
	query := `SELECT id, name, department_id, active, closed_at FROM clubs WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.DepartmentID, &c.Active, &closedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if closedAt.Valid {
		t := closedAt.Time
		c.ClosedAt = &t
	}
	return c, nil
}
