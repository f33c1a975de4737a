package service_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/service"
)

func TestNotificationService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, nil)
	owner := f.student()
	other := f.student()
	svc := service.NewNotificationService(f.store)

	for i := 0; i < 5; i++ {
		require.NoError(t, f.store.Notifications().Create(ctx, &domain.Notification{UserID: owner.ID, Message: "m"}))
	}

	t.Run("Paging", func(t *testing.T) {
		notes, total, err := svc.GetNotifications(ctx, owner.ID, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, int32(5), total)
		assert.Len(t, notes, 2)

		notes, _, err = svc.GetNotifications(ctx, owner.ID, 0, 0)
		require.NoError(t, err)
		assert.Len(t, notes, 5)
	})

	t.Run("Page past the offset range is empty", func(t *testing.T) {
		notes, total, err := svc.GetNotifications(ctx, owner.ID, math.MaxInt32, 100)
		require.NoError(t, err)
		assert.Empty(t, notes)
		assert.Equal(t, int32(5), total)
	})

	t.Run("Only the owner can mark read", func(t *testing.T) {
		notes, _, _ := svc.GetNotifications(ctx, owner.ID, 1, 1)
		require.Len(t, notes, 1)

		assert.ErrorIs(t, svc.MarkAsRead(ctx, other.ID, notes[0].ID), domain.ErrNotificationNotFound)
		require.NoError(t, svc.MarkAsRead(ctx, owner.ID, notes[0].ID))

		again, _, _ := svc.GetNotifications(ctx, owner.ID, 1, 1)
		assert.True(t, again[0].IsRead)
	})

	t.Run("Suspended", func(t *testing.T) {
		f.store.SetAccountActive(owner.ID, false)
		defer f.store.SetAccountActive(owner.ID, true)

		_, _, err := svc.GetNotifications(ctx, owner.ID, 1, 10)
		assert.ErrorIs(t, err, domain.ErrSuspended)
		assert.ErrorIs(t, svc.MarkAsRead(ctx, owner.ID, 1), domain.ErrSuspended)
	})
}
