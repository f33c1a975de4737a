package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository"
	"clubhub-backend/internal/repository/postgres"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestAccountRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewAccountRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, name, role, active FROM accounts WHERE id").
			WithArgs(int32(4)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role", "active"}).
				AddRow(4, "ana@uni.edu", "Ana", "CLUB_MANAGER", false))

		acc, err := repo.GetByID(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleClubManager, acc.Role)
		assert.False(t, acc.Active)
	})

	t.Run("Unknown role falls back to student", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, name, role, active FROM accounts WHERE id").
			WithArgs(int32(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "role", "active"}).
				AddRow(5, "bo@uni.edu", "Bo", "JANITOR", true))

		acc, err := repo.GetByID(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleStudent, acc.Role)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email, name, role, active FROM accounts WHERE id").
			WithArgs(int32(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClubRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewClubRepository(db)
	closed := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, name, department_id, active, closed_at FROM clubs").
		WithArgs(int32(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "department_id", "active", "closed_at"}).
			AddRow(3, "Chess", 10, false, closed))

	club, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Chess", club.Name)
	require.NotNil(t, club.ClosedAt)
	assert.True(t, club.ClosedAt.Equal(closed))
	assert.False(t, club.IsOpen())
	assert.NoError(t, mock.ExpectationsWereMet())
}

var eventCols = []string{"id", "club_id", "name", "capacity", "starts_at", "ends_at", "cancelled", "cancel_reason"}

func TestEventRepository_GetForUpdate(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewEventRepository(db)
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE id = $1 FOR UPDATE")).
		WithArgs(int32(8)).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow(8, 3, "Blitz night", 20, start, start.Add(2*time.Hour), false, ""))

	e, err := repo.GetForUpdate(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, int32(20), e.Capacity)
	assert.Equal(t, "Blitz night", e.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Cancel(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewEventRepository(db)
	ctx := context.Background()

	t.Run("First cancellation", func(t *testing.T) {
		mock.ExpectExec("UPDATE events SET cancelled = TRUE").
			WithArgs("room flooded", int32(8)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Cancel(ctx, 8, "room flooded"))
	})

	t.Run("Already cancelled is a no-op", func(t *testing.T) {
		mock.ExpectExec("UPDATE events SET cancelled = TRUE").
			WithArgs("again", int32(8)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int32(8)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		assert.NoError(t, repo.Cancel(ctx, 8, "again"))
	})

	t.Run("Missing event", func(t *testing.T) {
		mock.ExpectExec("UPDATE events SET cancelled = TRUE").
			WithArgs("x", int32(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int32(9)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		assert.ErrorIs(t, repo.Cancel(ctx, 9, "x"), repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewMembershipRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Inserted", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO memberships").
			WithArgs(int32(1), int32(2), now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(ctx, &domain.Membership{UserID: 1, ClubID: 2, JoinedAt: now}))
	})

	t.Run("Conflict", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO memberships").
			WithArgs(int32(1), int32(2), now).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Create(ctx, &domain.Membership{UserID: 1, ClubID: 2, JoinedAt: now})
		assert.ErrorIs(t, err, repository.ErrAlreadyExists)
	})

	t.Run("Unique violation from driver", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO memberships").
			WithArgs(int32(1), int32(2), now).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, &domain.Membership{UserID: 1, ClubID: 2, JoinedAt: now})
		assert.ErrorIs(t, err, repository.ErrAlreadyExists)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewMembershipRepository(db)

	mock.ExpectExec("DELETE FROM memberships").
		WithArgs(int32(1), int32(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 1, 2)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewEnrollmentRepository(db)
	ctx := context.Background()

	t.Run("CountByEvent", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM enrollments WHERE event_id = $1")).
			WithArgs(int32(8)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountByEvent(ctx, 8)
		require.NoError(t, err)
		assert.Equal(t, int32(3), count)
	})

	t.Run("ListUserIDsByEvent", func(t *testing.T) {
		mock.ExpectQuery("SELECT user_id FROM enrollments").
			WithArgs(int32(8)).
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(4).AddRow(9).AddRow(2))

		ids, err := repo.ListUserIDsByEvent(ctx, 8)
		require.NoError(t, err)
		assert.Equal(t, []int32{4, 9, 2}, ids)
	})

	t.Run("Get missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT user_id, event_id, joined_at FROM enrollments").
			WithArgs(int32(4), int32(8)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, 4, 8)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		n := &domain.Notification{
			UserID:     4,
			Kind:       domain.NotificationKindMembership,
			Message:    "You joined Chess",
			Attributes: map[string]string{"club_id": "3"},
		}
		mock.ExpectQuery("INSERT INTO notifications").
			WithArgs(int32(4), domain.NotificationKindMembership, "You joined Chess", false, []byte(`{"club_id":"3"}`), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

		require.NoError(t, repo.Create(ctx, n))
		assert.Equal(t, int64(11), n.ID)
		assert.False(t, n.CreatedAt.IsZero())
	})

	t.Run("List", func(t *testing.T) {
		created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM notifications WHERE user_id = $1")).
			WithArgs(int32(4)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("FROM notifications").
			WithArgs(int32(4), int32(20), int32(0)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "kind", "message", "is_read", "attributes", "created_at", "delivered_at"}).
				AddRow(int64(11), 4, "MEMBERSHIP", "You joined Chess", false, []byte(`{"club_id":"3"}`), created, nil))

		notes, count, err := repo.List(ctx, 4, 20, 0)
		require.NoError(t, err)
		assert.Equal(t, int32(1), count)
		require.Len(t, notes, 1)
		assert.Equal(t, "3", notes[0].Attributes["club_id"])
		assert.Nil(t, notes[0].DeliveredAt)
	})

	t.Run("MarkAsRead by someone else", func(t *testing.T) {
		mock.ExpectExec("UPDATE notifications SET is_read = TRUE").
			WithArgs(int64(11), int32(5)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.MarkAsRead(ctx, 11, 5), repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepository_MarkSent(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewReminderRepository(db)
	at := time.Now().UTC()

	mock.ExpectExec("INSERT INTO event_reminders").
		WithArgs(int32(8), at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO event_reminders").
		WithArgs(int32(8), at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	first, err := repo.MarkSent(context.Background(), 8, at)
	require.NoError(t, err)
	second, err := repo.MarkSent(context.Background(), 8, at)
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithTx(t *testing.T) {
	db, mock := newMock(t)
	store := postgres.NewStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("Commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO enrollments").
			WithArgs(int32(1), int32(8), now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.WithTx(ctx, func(tx repository.Tx) error {
			return tx.Enrollments().Create(ctx, &domain.Enrollment{UserID: 1, EventID: 8, JoinedAt: now})
		})
		assert.NoError(t, err)
	})

	t.Run("Rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := store.WithTx(ctx, func(tx repository.Tx) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
