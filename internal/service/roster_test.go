package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository"
)

func rosterJoin(f *fixture, userID, eventID int32) error {
	ctx := context.Background()
	return f.store.WithTx(ctx, func(tx repository.Tx) error {
		_, err := f.roster.Join(ctx, tx, userID, eventID)
		return err
	})
}

func TestEventRoster_JoinChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(nil, nil)
		event := f.event(2)
		require.NoError(t, rosterJoin(f, 1, event.ID))

		e, err := f.store.Enrollments().Get(ctx, 1, event.ID)
		require.NoError(t, err)
		assert.True(t, e.JoinedAt.Equal(f.clock.Now()))
	})

	t.Run("Missing event reads as cancelled", func(t *testing.T) {
		f := newFixture(nil, nil)
		assert.ErrorIs(t, rosterJoin(f, 1, 404), domain.ErrEventCancelled)
	})

	t.Run("Cancelled beats ended", func(t *testing.T) {
		f := newFixture(nil, nil)
		event := f.event(2)
		event.Cancelled = true
		f.store.PutEvent(event)
		f.clock.Advance(72 * time.Hour)
		assert.ErrorIs(t, rosterJoin(f, 1, event.ID), domain.ErrEventCancelled)
	})

	t.Run("Ended even with seats left", func(t *testing.T) {
		f := newFixture(nil, nil)
		event := f.event(50)
		f.clock.Advance(26*time.Hour + time.Second)
		assert.ErrorIs(t, rosterJoin(f, 1, event.ID), domain.ErrEventEnded)
	})

	t.Run("Exactly at end is allowed", func(t *testing.T) {
		f := newFixture(nil, nil)
		event := f.event(50)
		f.clock.Advance(26 * time.Hour)
		assert.NoError(t, rosterJoin(f, 1, event.ID))
	})

	t.Run("Ended beats already joined", func(t *testing.T) {
		f := newFixture(nil, nil)
		event := f.event(50)
		require.NoError(t, rosterJoin(f, 1, event.ID))
		f.clock.Advance(48 * time.Hour)
		assert.ErrorIs(t, rosterJoin(f, 1, event.ID), domain.ErrEventEnded)
	})

	t.Run("Already joined beats full", func(t *testing.T) {
		f := newFixture(nil, nil)
		event := f.event(1)
		require.NoError(t, rosterJoin(f, 1, event.ID))
		assert.ErrorIs(t, rosterJoin(f, 1, event.ID), domain.ErrAlreadyJoined)
	})

	t.Run("Full", func(t *testing.T) {
		f := newFixture(nil, nil)
		event := f.event(2)
		require.NoError(t, rosterJoin(f, 1, event.ID))
		require.NoError(t, rosterJoin(f, 2, event.ID))
		assert.ErrorIs(t, rosterJoin(f, 3, event.ID), domain.ErrEventFull)

		count, _ := f.store.Enrollments().CountByEvent(ctx, event.ID)
		assert.Equal(t, int32(2), count)
	})
}

func TestEventRoster_Leave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, nil)
	event := f.event(2)
	leave := func(userID int32) error {
		return f.store.WithTx(ctx, func(tx repository.Tx) error {
			_, err := f.roster.Leave(ctx, tx, userID, event.ID)
			return err
		})
	}

	assert.ErrorIs(t, leave(1), domain.ErrNotEnrolled)

	require.NoError(t, rosterJoin(f, 1, event.ID))
	f.clock.Advance(30 * 24 * time.Hour)
	assert.NoError(t, leave(1), "leaving after the event ended is allowed")
	count, _ := f.store.Enrollments().CountByEvent(ctx, event.ID)
	assert.Equal(t, int32(0), count)
}

func TestEventRoster_Cancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, nil)
	event := f.event(2)
	cancel := func(eventID int32, reason string) (*domain.Event, error) {
		var got *domain.Event
		err := f.store.WithTx(ctx, func(tx repository.Tx) error {
			var err error
			got, err = f.roster.Cancel(ctx, tx, eventID, reason)
			return err
		})
		return got, err
	}

	first, err := cancel(event.ID, "venue unavailable")
	require.NoError(t, err)
	assert.True(t, first.Cancelled)

	second, err := cancel(event.ID, "again")
	require.NoError(t, err, "cancelling twice is a no-op")
	assert.Equal(t, "venue unavailable", second.CancelReason)

	_, err = cancel(404, "x")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	assert.ErrorIs(t, rosterJoin(f, 1, event.ID), domain.ErrEventCancelled)
}

func TestEventRoster_Roster(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, nil)
	event := f.event(3)
	require.NoError(t, rosterJoin(f, 1, event.ID))

	summary, err := f.roster.Roster(ctx, f.store, event.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RosterSummary{EventID: event.ID, Capacity: 3, Enrolled: 1, Remaining: 2}, *summary)

	_, err = f.roster.Roster(ctx, f.store, 404)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}
