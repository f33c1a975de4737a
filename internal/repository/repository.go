package repository

import (
	"context"
	"errors"
	"time"

	"clubhub-backend/internal/domain"
)

var (
	ErrNotFound      = errors.New("repository: not found")
	ErrAlreadyExists = errors.New("repository: already exists")
)

type AccountRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type ClubRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Club, error)
}

type EventRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Event, error)

	// GetForUpdate reads the event and holds an exclusive lock on it until the
	// surrounding transaction ends. Concurrent joins on the same event queue here.
	GetForUpdate(ctx context.Context, id int32) (*domain.Event, error)

	// Cancel flips the cancelled flag. Cancelling an already cancelled event
	// keeps the original reason.
	Cancel(ctx context.Context, id int32, reason string) error

	ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Event, error)
}

type MembershipRepository interface {
	// Create returns ErrAlreadyExists when the (user, club) pair is taken.
	Create(ctx context.Context, m *domain.Membership) error
	// Delete returns ErrNotFound when there was no row to remove.
	Delete(ctx context.Context, userID, clubID int32) error
	Get(ctx context.Context, userID, clubID int32) (*domain.Membership, error)
	CountByClub(ctx context.Context, clubID int32) (int32, error)
}

type EnrollmentRepository interface {
	// Create returns ErrAlreadyExists when the (user, event) pair is taken.
	Create(ctx context.Context, e *domain.Enrollment) error
	// Delete returns ErrNotFound when there was no row to remove.
	Delete(ctx context.Context, userID, eventID int32) error
	Get(ctx context.Context, userID, eventID int32) (*domain.Enrollment, error)
	CountByEvent(ctx context.Context, eventID int32) (int32, error)
	ListUserIDsByEvent(ctx context.Context, eventID int32) ([]int32, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id int64, userID int32) error
	ListUndelivered(ctx context.Context, limit int32) ([]domain.Notification, error)
	MarkDelivered(ctx context.Context, id int64, at time.Time) error
}

type ReminderRepository interface {
	// MarkSent records that reminders went out for the event. It reports false
	// when the event was already marked.
	MarkSent(ctx context.Context, eventID int32, at time.Time) (bool, error)
}

// Repositories is the set of repos available both outside and inside a
// transaction.
type Repositories interface {
	Accounts() AccountRepository
	Clubs() ClubRepository
	Events() EventRepository
	Memberships() MembershipRepository
	Enrollments() EnrollmentRepository
	Notifications() NotificationRepository
	Reminders() ReminderRepository
}

// Tx is a transaction-scoped view of the store. Nested transactions are not
// supported, so it deliberately has no WithTx.
type Tx interface {
	Repositories
}

type Store interface {
	Repositories

	// WithTx runs fn in one read/write transaction. The transaction is rolled
	// back when fn returns an error and committed otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Ping(ctx context.Context) error
	Close() error
}
