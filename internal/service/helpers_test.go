package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository/memory"
	"clubhub-backend/internal/service"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, evt domain.ChangeEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

// MockDispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, evt domain.ChangeEvent) ([]domain.Notification, error) {
	args := m.Called(ctx, evt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

type fixture struct {
	store      *memory.Store
	clock      *fakeClock
	ledger     service.MembershipLedger
	roster     service.EventRoster
	dispatcher service.NotificationDispatcher
	svc        service.ParticipationService
	nextEmail  int
}

// newFixture wires the real rules over a memory store. A nil dispatcher uses
// the real one.
func newFixture(dispatcher service.NotificationDispatcher, publisher service.ChangePublisher) *fixture {
	f := &fixture{store: memory.NewStore(), clock: newFakeClock()}
	f.ledger = service.NewMembershipLedger(f.clock.Now)
	f.roster = service.NewEventRoster(f.clock.Now)
	if dispatcher == nil {
		dispatcher = service.NewNotificationDispatcher(f.store)
	}
	f.dispatcher = dispatcher
	f.svc = service.NewParticipationService(f.store, f.ledger, f.roster, f.dispatcher, publisher)
	return f
}

func (f *fixture) account(role domain.Role, active bool) domain.Account {
	f.nextEmail++
	return f.store.PutAccount(domain.Account{
		Email:  fmt.Sprintf("user%d@uni.edu", f.nextEmail),
		Name:   fmt.Sprintf("User %d", f.nextEmail),
		Role:   role,
		Active: active,
	})
}

func (f *fixture) student() domain.Account {
	return f.account(domain.RoleStudent, true)
}

func (f *fixture) club() domain.Club {
	return f.store.PutClub(domain.Club{Name: "Chess Society", DepartmentID: 1, Active: true})
}

// event returns an event that starts tomorrow and lasts two hours.
func (f *fixture) event(capacity int32) domain.Event {
	starts := f.clock.Now().Add(24 * time.Hour)
	return f.store.PutEvent(domain.Event{
		ClubID:   1,
		Name:     "Blitz Night",
		Capacity: capacity,
		StartsAt: starts,
		EndsAt:   starts.Add(2 * time.Hour),
	})
}

func (f *fixture) notificationsFor(userID int32) []domain.Notification {
	notes, _, _ := f.store.Notifications().List(context.Background(), userID, 100, 0)
	return notes
}

func allowRoles(roles ...domain.Role) service.RoleCheck {
	return func(role domain.Role) error {
		for _, r := range roles {
			if r == role {
				return nil
			}
		}
		return domain.ErrForbidden
	}
}
