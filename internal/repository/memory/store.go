// Package memory is a process-local repository.Store used for single-instance
// development and for exercising the participation rules in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository"
)

type pairKey struct {
	userID  int32
	otherID int32
}

// Store keeps every table in maps guarded by one RWMutex. Writes made inside
// WithTx are applied immediately and recorded in an undo log that is replayed
// backwards when the transaction fails.
type Store struct {
	mu sync.RWMutex

	accounts      map[int32]domain.Account
	clubs         map[int32]domain.Club
	events        map[int32]domain.Event
	memberships   map[pairKey]time.Time
	enrollments   map[pairKey]time.Time
	notifications []domain.Notification
	reminders     map[int32]time.Time

	nextAccountID      int32
	nextClubID         int32
	nextEventID        int32
	nextNotificationID int64

	locksMu    sync.Mutex
	eventLocks map[int32]chan struct{}

	repos
}

func NewStore() *Store {
	s := &Store{
		accounts:    make(map[int32]domain.Account),
		clubs:       make(map[int32]domain.Club),
		events:      make(map[int32]domain.Event),
		memberships: make(map[pairKey]time.Time),
		enrollments: make(map[pairKey]time.Time),
		reminders:   make(map[int32]time.Time),
		eventLocks:  make(map[int32]chan struct{}),
	}
	s.repos = repos{s: s}
	return s
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

// txState is the bookkeeping of one running transaction.
type txState struct {
	undo   []func()
	locked []chan struct{}
	held   map[int32]bool
}

func (t *txState) record(fn func()) {
	if t != nil {
		t.undo = append(t.undo, fn)
	}
}

// WithTx runs fn with transaction-scoped repositories. Event locks taken by
// GetForUpdate stay held until fn returns.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	state := &txState{held: make(map[int32]bool)}
	defer func() {
		if r := recover(); r != nil {
			s.rollback(state)
			s.release(state)
			panic(r)
		}
		if err != nil {
			s.rollback(state)
		}
		s.release(state)
	}()
	return fn(repos{s: s, tx: state})
}

func (s *Store) rollback(state *txState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(state.undo) - 1; i >= 0; i-- {
		state.undo[i]()
	}
	state.undo = nil
}

func (s *Store) release(state *txState) {
	for i := len(state.locked) - 1; i >= 0; i-- {
		<-state.locked[i]
	}
	state.locked = nil
}

// lockEvent blocks until the transaction owns the event's lock. Re-locking an
// event already held by the same transaction is a no-op.
func (s *Store) lockEvent(ctx context.Context, state *txState, eventID int32) error {
	if state == nil || state.held[eventID] {
		return nil
	}
	s.locksMu.Lock()
	l, ok := s.eventLocks[eventID]
	if !ok {
		l = make(chan struct{}, 1)
		s.eventLocks[eventID] = l
	}
	s.locksMu.Unlock()

	select {
	case l <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	state.locked = append(state.locked, l)
	state.held[eventID] = true
	return nil
}

// PutAccount inserts or replaces an account. A zero ID is assigned.
func (s *Store) PutAccount(a domain.Account) domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		s.nextAccountID++
		a.ID = s.nextAccountID
	} else if a.ID > s.nextAccountID {
		s.nextAccountID = a.ID
	}
	s.accounts[a.ID] = a
	return a
}

// PutClub inserts or replaces a club. A zero ID is assigned.
func (s *Store) PutClub(c domain.Club) domain.Club {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		s.nextClubID++
		c.ID = s.nextClubID
	} else if c.ID > s.nextClubID {
		s.nextClubID = c.ID
	}
	s.clubs[c.ID] = c
	return c
}

// PutEvent inserts or replaces an event. A zero ID is assigned.
func (s *Store) PutEvent(e domain.Event) domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		s.nextEventID++
		e.ID = s.nextEventID
	} else if e.ID > s.nextEventID {
		s.nextEventID = e.ID
	}
	s.events[e.ID] = e
	return e
}

// SetAccountActive flips the account status; unknown ids are ignored.
func (s *Store) SetAccountActive(id int32, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		a.Active = active
		s.accounts[id] = a
	}
}

var _ repository.Store = (*Store)(nil)
