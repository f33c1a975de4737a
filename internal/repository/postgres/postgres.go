package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"clubhub-backend/internal/repository"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the same repository
// code runs inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repos
}

type repos struct {
	accounts      repository.AccountRepository
	clubs         repository.ClubRepository
	events        repository.EventRepository
	memberships   repository.MembershipRepository
	enrollments   repository.EnrollmentRepository
	notifications repository.NotificationRepository
	reminders     repository.ReminderRepository
}

func newRepos(q querier) repos {
	return repos{
		accounts:      &accountRepository{db: q},
		clubs:         &clubRepository{db: q},
		events:        &eventRepository{db: q},
		memberships:   &membershipRepository{db: q},
		enrollments:   &enrollmentRepository{db: q},
		notifications: &notificationRepository{db: q},
		reminders:     &reminderRepository{db: q},
	}
}

func (r repos) Accounts() repository.AccountRepository           { return r.accounts }
func (r repos) Clubs() repository.ClubRepository                 { return r.clubs }
func (r repos) Events() repository.EventRepository               { return r.events }
func (r repos) Memberships() repository.MembershipRepository     { return r.memberships }
func (r repos) Enrollments() repository.EnrollmentRepository     { return r.enrollments }
func (r repos) Notifications() repository.NotificationRepository { return r.notifications }
func (r repos) Reminders() repository.ReminderRepository         { return r.reminders }

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:    db,
		repos: newRepos(db),
	}
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *Store) Close() error                   { return s.db.Close() }

// WithTx runs fn inside a READ COMMITTED transaction. Row locks taken by
// fn (SELECT ... FOR UPDATE) are held until commit or rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(txRepos{newRepos(tx)}); err != nil {
		return err
	}
	return tx.Commit()
}

type txRepos struct {
	repos
}

const uniqueViolation = "23505"

// mapError translates driver errors into the repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return repository.ErrAlreadyExists
	}
	return err
}

var _ repository.Store = (*Store)(nil)
