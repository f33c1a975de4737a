package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
)

type eventRoster struct {
	now func() time.Time
}

// NewEventRoster returns the enrollment rules. now defaults to time.Now.
func NewEventRoster(now func() time.Time) EventRoster {
	if now == nil {
		now = time.Now
	}
	return &eventRoster{now: now}
}

// Join checks, in order: cancelled or missing event, ended event, existing
// enrollment, full event. The event row stays locked until tx ends, so the
// count and the insert cannot interleave with another join on the same event.
func (r *eventRoster) Join(ctx context.Context, tx repository.Tx, userID, eventID int32) (*domain.EnrollmentChanged, error) {
	logger.EnterMethod("eventRoster.Join", "userID", userID, "eventID", eventID)

	event, err := tx.Events().GetForUpdate(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, r.reject(domain.ErrEventCancelled, userID, eventID)
		}
		logger.ExitMethodWithError("eventRoster.Join", err, "eventID", eventID)
		return nil, fmt.Errorf("failed to lock event: %w", err)
	}
	if event.Cancelled {
		return nil, r.reject(domain.ErrEventCancelled, userID, eventID)
	}
	if event.HasEnded(r.now()) {
		return nil, r.reject(domain.ErrEventEnded, userID, eventID)
	}

	_, err = tx.Enrollments().Get(ctx, userID, eventID)
	if err == nil {
		return nil, r.reject(domain.ErrAlreadyJoined, userID, eventID)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	count, err := tx.Enrollments().CountByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	if count >= event.Capacity {
		return nil, r.reject(domain.ErrEventFull, userID, eventID)
	}

	e := &domain.Enrollment{UserID: userID, EventID: eventID, JoinedAt: r.now().UTC()}
	if err := tx.Enrollments().Create(ctx, e); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, r.reject(domain.ErrAlreadyJoined, userID, eventID)
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	logger.ExitMethod("eventRoster.Join", "userID", userID, "eventID", eventID, "seat", count+1)
	return &domain.EnrollmentChanged{UserID: userID, EventID: eventID, Kind: domain.ChangeJoined}, nil
}

func (r *eventRoster) reject(err error, userID, eventID int32) error {
	logger.ExitMethodRejected("eventRoster.Join", err, "userID", userID, "eventID", eventID)
	return err
}

// Leave has no time window: a user may leave an event that already ended.
func (r *eventRoster) Leave(ctx context.Context, tx repository.Tx, userID, eventID int32) (*domain.EnrollmentChanged, error) {
	if err := tx.Enrollments().Delete(ctx, userID, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotEnrolled
		}
		return nil, fmt.Errorf("failed to delete enrollment: %w", err)
	}
	return &domain.EnrollmentChanged{UserID: userID, EventID: eventID, Kind: domain.ChangeLeft}, nil
}

// Cancel is idempotent; a second call keeps the first reason and returns the
// cancelled event.
func (r *eventRoster) Cancel(ctx context.Context, tx repository.Tx, eventID int32, reason string) (*domain.Event, error) {
	if err := tx.Events().Cancel(ctx, eventID, reason); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to cancel event: %w", err)
	}
	event, err := tx.Events().GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (r *eventRoster) Roster(ctx context.Context, repos repository.Repositories, eventID int32) (*domain.RosterSummary, error) {
	event, err := repos.Events().GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	count, err := repos.Enrollments().CountByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	summary := domain.NewRosterSummary(event, count)
	return &summary, nil
}
