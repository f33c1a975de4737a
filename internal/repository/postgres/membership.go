package postgres

import (
	"context"
	"database/sql"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository"
)

type membershipRepository struct {
	db querier
}

func NewMembershipRepository(db *sql.DB) repository.MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(ctx context.Context, m *domain.Membership) error {
	// The primary key on (user_id, club_id) makes the existence check and the
	// insert a single atomic statement.
	query := `INSERT INTO memberships (user_id, club_id, joined_at) VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, club_id) DO NOTHING`
	result, err := r.db.ExecContext(ctx, query, m.UserID, m.ClubID, m.JoinedAt)
	if err != nil {
		return mapError(err)
	}
	return requireOneRow(result, repository.ErrAlreadyExists)
}

func (r *membershipRepository) Delete(ctx context.Context, userID, clubID int32) error {
	query := `DELETE FROM memberships WHERE user_id = $1 AND club_id = $2`
	result, err := r.db.ExecContext(ctx, query, userID, clubID)
	if err != nil {
		return err
	}
	return requireOneRow(result, repository.ErrNotFound)
}

func (r *membershipRepository) Get(ctx context.Context, userID, clubID int32) (*domain.Membership, error) {
	m := &domain.Membership{}
	query := `SELECT user_id, club_id, joined_at FROM memberships WHERE user_id = $1 AND club_id = $2`
	err := r.db.QueryRowContext(ctx, query, userID, clubID).Scan(&m.UserID, &m.ClubID, &m.JoinedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return m, nil
}

func (r *membershipRepository) CountByClub(ctx context.Context, clubID int32) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM memberships WHERE club_id = $1`, clubID).Scan(&count)
	return count, err
}

// requireOneRow returns errNone when the statement touched no rows.
func requireOneRow(result sql.Result, errNone error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errNone
	}
	return nil
}
