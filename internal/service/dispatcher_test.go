package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/service"
)

func TestDispatch_Messages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, nil)
	club := f.club()
	event := f.event(5)
	d := service.NewNotificationDispatcher(f.store)

	tests := []struct {
		name string
		evt  domain.ChangeEvent
		kind domain.NotificationKind
		want string
	}{
		{"club joined", &domain.MembershipChanged{UserID: 3, ClubID: club.ID, Kind: domain.ChangeJoined}, domain.NotificationKindMembership, "You joined Chess Society"},
		{"club left", domain.MembershipChanged{UserID: 3, ClubID: club.ID, Kind: domain.ChangeLeft}, domain.NotificationKindMembership, "You left Chess Society"},
		{"event joined", &domain.EnrollmentChanged{UserID: 3, EventID: event.ID, Kind: domain.ChangeJoined}, domain.NotificationKindEnrollment, "You joined Blitz Night"},
		{"event left", domain.EnrollmentChanged{UserID: 3, EventID: event.ID, Kind: domain.ChangeLeft}, domain.NotificationKindEnrollment, "You left Blitz Night"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, err := d.Dispatch(ctx, tt.evt)
			require.NoError(t, err)
			require.Len(t, notes, 1)
			assert.Equal(t, int32(3), notes[0].UserID)
			assert.Equal(t, tt.kind, notes[0].Kind)
			assert.Equal(t, tt.want, notes[0].Message)
			assert.False(t, notes[0].IsRead)
			assert.NotZero(t, notes[0].ID)
		})
	}
}

func TestDispatch_AnnouncementFansOutToCurrentEnrollees(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, nil)
	event := f.event(10)
	d := service.NewNotificationDispatcher(f.store)

	for _, userID := range []int32{11, 12, 13} {
		require.NoError(t, rosterJoin(f, userID, event.ID))
	}

	notes, err := d.Dispatch(ctx, domain.AnnouncementPosted{EventID: event.ID, Message: "Room changed to B204"})
	require.NoError(t, err)
	require.Len(t, notes, 3)
	for _, userID := range []int32{11, 12, 13} {
		stored := f.notificationsFor(userID)
		require.Len(t, stored, 1)
		assert.Equal(t, "Room changed to B204", stored[0].Message)
		assert.False(t, stored[0].IsRead)
	}

	require.NoError(t, rosterJoin(f, 14, event.ID))
	assert.Empty(t, f.notificationsFor(14))
}

func TestDispatch_AnnouncementWithoutEnrollees(t *testing.T) {
	f := newFixture(nil, nil)
	event := f.event(10)
	notes, err := service.NewNotificationDispatcher(f.store).Dispatch(context.Background(), domain.AnnouncementPosted{EventID: event.ID, Message: "hello"})
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestDispatch_UnknownClub(t *testing.T) {
	f := newFixture(nil, nil)
	_, err := service.NewNotificationDispatcher(f.store).Dispatch(context.Background(), domain.MembershipChanged{UserID: 1, ClubID: 404})
	assert.Error(t, err)
	assert.Empty(t, f.notificationsFor(1))
}
