package postgres

import (
	"context"
	"database/sql"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository"
)

type accountRepository struct {
	db querier
}

func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetByID(ctx context.Context, id int32) (*domain.Account, error) {
	query := `SELECT id, email, name, role, active FROM accounts WHERE id = $1`
	return r.scan(r.db.QueryRowContext(ctx, query, id))
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT id, email, name, role, active FROM accounts WHERE LOWER(email) = LOWER($1)`
	return r.scan(r.db.QueryRowContext(ctx, query, email))
}

func (r *accountRepository) scan(row *sql.Row) (*domain.Account, error) {
	a := &domain.Account{}
	var role string
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &role, &a.Active); err != nil {
		return nil, mapError(err)
	}
	// Unknown role names fall back to the least privileged role.
	parsed, ok := domain.ParseRole(role)
	if !ok {
		parsed = domain.RoleStudent
	}
	a.Role = parsed
	return a, nil
}
