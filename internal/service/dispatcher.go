package service

import (
	"context"
	"fmt"
	"strconv"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
)

type notificationDispatcher struct {
	store repository.Store
}

func NewNotificationDispatcher(store repository.Store) NotificationDispatcher {
	return &notificationDispatcher{store: store}
}

// Dispatch persists the notification records for one change. Membership and
// enrollment changes notify the affected user; announcements notify every
// user enrolled at the time of the call, all in one transaction.
func (d *notificationDispatcher) Dispatch(ctx context.Context, evt domain.ChangeEvent) ([]domain.Notification, error) {
	logger.EnterMethod("notificationDispatcher.Dispatch", "type", evt.Topic())

	var notes []domain.Notification
	var err error
	switch e := evt.(type) {
	case *domain.MembershipChanged:
		notes, err = d.membershipChanged(ctx, *e)
	case domain.MembershipChanged:
		notes, err = d.membershipChanged(ctx, e)
	case *domain.EnrollmentChanged:
		notes, err = d.enrollmentChanged(ctx, *e)
	case domain.EnrollmentChanged:
		notes, err = d.enrollmentChanged(ctx, e)
	case *domain.AnnouncementPosted:
		notes, err = d.announcementPosted(ctx, *e)
	case domain.AnnouncementPosted:
		notes, err = d.announcementPosted(ctx, e)
	default:
		err = fmt.Errorf("unsupported change event %T", evt)
	}

	if err != nil {
		logger.ExitMethodWithError("notificationDispatcher.Dispatch", err, "type", evt.Topic())
		return nil, err
	}
	logger.ExitMethod("notificationDispatcher.Dispatch", "type", evt.Topic(), "created", len(notes))
	return notes, nil
}

func (d *notificationDispatcher) membershipChanged(ctx context.Context, e domain.MembershipChanged) ([]domain.Notification, error) {
	club, err := d.store.Clubs().GetByID(ctx, e.ClubID)
	if err != nil {
		return nil, fmt.Errorf("failed to get club: %w", err)
	}
	n := domain.Notification{
		UserID:  e.UserID,
		Kind:    domain.NotificationKindMembership,
		Message: changeMessage(e.Kind, club.Name),
		Attributes: map[string]string{
			"club_id": strconv.Itoa(int(e.ClubID)),
			"change":  string(e.Kind),
		},
	}
	if err := d.store.Notifications().Create(ctx, &n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return []domain.Notification{n}, nil
}

func (d *notificationDispatcher) enrollmentChanged(ctx context.Context, e domain.EnrollmentChanged) ([]domain.Notification, error) {
	event, err := d.store.Events().GetByID(ctx, e.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	n := domain.Notification{
		UserID:  e.UserID,
		Kind:    domain.NotificationKindEnrollment,
		Message: changeMessage(e.Kind, event.Name),
		Attributes: map[string]string{
			"event_id": strconv.Itoa(int(e.EventID)),
			"change":   string(e.Kind),
		},
	}
	if err := d.store.Notifications().Create(ctx, &n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return []domain.Notification{n}, nil
}

func (d *notificationDispatcher) announcementPosted(ctx context.Context, e domain.AnnouncementPosted) ([]domain.Notification, error) {
	var notes []domain.Notification
	err := d.store.WithTx(ctx, func(tx repository.Tx) error {
		userIDs, err := tx.Enrollments().ListUserIDsByEvent(ctx, e.EventID)
		if err != nil {
			return fmt.Errorf("failed to list enrollees: %w", err)
		}
		notes = make([]domain.Notification, 0, len(userIDs))
		for _, userID := range userIDs {
			n := domain.Notification{
				UserID:  userID,
				Kind:    domain.NotificationKindAnnouncement,
				Message: e.Message,
				Attributes: map[string]string{
					"event_id": strconv.Itoa(int(e.EventID)),
				},
			}
			if err := tx.Notifications().Create(ctx, &n); err != nil {
				return fmt.Errorf("failed to create notification: %w", err)
			}
			notes = append(notes, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func changeMessage(kind domain.ChangeKind, subject string) string {
	if kind == domain.ChangeLeft {
		return "You left " + subject
	}
	return "You joined " + subject
}
