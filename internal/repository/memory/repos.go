package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository"
)

// repos is a view over the store. tx is nil outside WithTx.
type repos struct {
	s  *Store
	tx *txState
}

func (r repos) Accounts() repository.AccountRepository           { return accountRepo(r) }
func (r repos) Clubs() repository.ClubRepository                 { return clubRepo(r) }
func (r repos) Events() repository.EventRepository               { return eventRepo(r) }
func (r repos) Memberships() repository.MembershipRepository     { return membershipRepo(r) }
func (r repos) Enrollments() repository.EnrollmentRepository     { return enrollmentRepo(r) }
func (r repos) Notifications() repository.NotificationRepository { return notificationRepo(r) }
func (r repos) Reminders() repository.ReminderRepository         { return reminderRepo(r) }

type accountRepo repos

func (r accountRepo) GetByID(ctx context.Context, id int32) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r accountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

type clubRepo repos

func (r clubRepo) GetByID(ctx context.Context, id int32) (*domain.Club, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.clubs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

type eventRepo repos

func (r eventRepo) GetByID(ctx context.Context, id int32) (*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r eventRepo) GetForUpdate(ctx context.Context, id int32) (*domain.Event, error) {
	if err := r.s.lockEvent(ctx, r.tx, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r eventRepo) Cancel(ctx context.Context, id int32, reason string) error {
	// Same lock as GetForUpdate, so a cancel cannot land inside a join.
	if err := r.s.lockEvent(ctx, r.tx, id); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	if e.Cancelled {
		return nil
	}
	prev := e
	e.Cancelled = true
	e.CancelReason = reason
	r.s.events[id] = e
	r.tx.record(func() { r.s.events[id] = prev })
	return nil
}

func (r eventRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var events []domain.Event
	for _, e := range r.s.events {
		if e.Cancelled || e.StartsAt.Before(from) || !e.StartsAt.Before(to) {
			continue
		}
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartsAt.Before(events[j].StartsAt) })
	return events, nil
}

type membershipRepo repos

func (r membershipRepo) Create(ctx context.Context, m *domain.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey{m.UserID, m.ClubID}
	if _, ok := r.s.memberships[key]; ok {
		return repository.ErrAlreadyExists
	}
	r.s.memberships[key] = m.JoinedAt
	r.tx.record(func() { delete(r.s.memberships, key) })
	return nil
}

func (r membershipRepo) Delete(ctx context.Context, userID, clubID int32) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey{userID, clubID}
	joinedAt, ok := r.s.memberships[key]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.s.memberships, key)
	r.tx.record(func() { r.s.memberships[key] = joinedAt })
	return nil
}

func (r membershipRepo) Get(ctx context.Context, userID, clubID int32) (*domain.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	joinedAt, ok := r.s.memberships[pairKey{userID, clubID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.Membership{UserID: userID, ClubID: clubID, JoinedAt: joinedAt}, nil
}

func (r membershipRepo) CountByClub(ctx context.Context, clubID int32) (int32, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var count int32
	for key := range r.s.memberships {
		if key.otherID == clubID {
			count++
		}
	}
	return count, nil
}

type enrollmentRepo repos

func (r enrollmentRepo) Create(ctx context.Context, e *domain.Enrollment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey{e.UserID, e.EventID}
	if _, ok := r.s.enrollments[key]; ok {
		return repository.ErrAlreadyExists
	}
	r.s.enrollments[key] = e.JoinedAt
	r.tx.record(func() { delete(r.s.enrollments, key) })
	return nil
}

func (r enrollmentRepo) Delete(ctx context.Context, userID, eventID int32) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey{userID, eventID}
	joinedAt, ok := r.s.enrollments[key]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.s.enrollments, key)
	r.tx.record(func() { r.s.enrollments[key] = joinedAt })
	return nil
}

func (r enrollmentRepo) Get(ctx context.Context, userID, eventID int32) (*domain.Enrollment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	joinedAt, ok := r.s.enrollments[pairKey{userID, eventID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.Enrollment{UserID: userID, EventID: eventID, JoinedAt: joinedAt}, nil
}

func (r enrollmentRepo) CountByEvent(ctx context.Context, eventID int32) (int32, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var count int32
	for key := range r.s.enrollments {
		if key.otherID == eventID {
			count++
		}
	}
	return count, nil
}

func (r enrollmentRepo) ListUserIDsByEvent(ctx context.Context, eventID int32) ([]int32, error) {
	r.s.mu.RLock()
	type entry struct {
		userID   int32
		joinedAt time.Time
	}
	var entries []entry
	for key, joinedAt := range r.s.enrollments {
		if key.otherID == eventID {
			entries = append(entries, entry{key.userID, joinedAt})
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].joinedAt.Equal(entries[j].joinedAt) {
			return entries[i].userID < entries[j].userID
		}
		return entries[i].joinedAt.Before(entries[j].joinedAt)
	})
	ids := make([]int32, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.userID)
	}
	return ids, nil
}

type notificationRepo repos

func (r notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextNotificationID++
	n.ID = r.s.nextNotificationID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	stored := *n
	stored.Attributes = maps.Clone(n.Attributes)
	r.s.notifications = append(r.s.notifications, stored)

	id := n.ID
	r.tx.record(func() {
		for i := range r.s.notifications {
			if r.s.notifications[i].ID == id {
				r.s.notifications = append(r.s.notifications[:i], r.s.notifications[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (r notificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	if offset < 0 {
		return nil, 0, fmt.Errorf("negative offset %d", offset)
	}
	r.s.mu.RLock()
	var mine []domain.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			n.Attributes = maps.Clone(n.Attributes)
			mine = append(mine, n)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(mine, func(i, j int) bool {
		if mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].ID > mine[j].ID
		}
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})
	total := int32(len(mine))
	if offset >= total {
		return nil, total, nil
	}
	end := int64(offset) + int64(limit)
	if limit <= 0 || end > int64(total) {
		end = int64(total)
	}
	return mine[offset:end], total, nil
}

func (r notificationRepo) MarkAsRead(ctx context.Context, id int64, userID int32) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.notifications {
		n := &r.s.notifications[i]
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r notificationRepo) ListUndelivered(ctx context.Context, limit int32) ([]domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var pending []domain.Notification
	for _, n := range r.s.notifications {
		if n.DeliveredAt != nil {
			continue
		}
		n.Attributes = maps.Clone(n.Attributes)
		pending = append(pending, n)
		if limit > 0 && int32(len(pending)) == limit {
			break
		}
	}
	return pending, nil
}

func (r notificationRepo) MarkDelivered(ctx context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.notifications {
		if r.s.notifications[i].ID == id {
			t := at
			r.s.notifications[i].DeliveredAt = &t
			return nil
		}
	}
	return repository.ErrNotFound
}

type reminderRepo repos

func (r reminderRepo) MarkSent(ctx context.Context, eventID int32, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reminders[eventID]; ok {
		return false, nil
	}
	r.s.reminders[eventID] = at
	r.tx.record(func() { delete(r.s.reminders, eventID) })
	return true, nil
}
