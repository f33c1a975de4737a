package jobs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
)

// SendEventReminders creates one reminder notification per enrollee for
// every event starting within the reminder window. Each event is reminded at
// most once.
func (jr *JobRunner) SendEventReminders() {
	jr.runWithRecovery("SendEventReminders", func() {
		events, notified, err := jr.sendReminders(context.Background())
		if err != nil {
			logger.Error("Failed to send event reminders", "error", err)
			return
		}
		logger.Info("Event reminders sent", "events", events, "notified", notified)
	})
}

func (jr *JobRunner) sendReminders(ctx context.Context) (events, notified int, err error) {
	now := jr.now().UTC()
	window := time.Duration(jr.config.Delivery.ReminderWindowHour) * time.Hour

	upcoming, err := jr.store.Events().ListStartingBetween(ctx, now, now.Add(window))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list upcoming events: %w", err)
	}

	for _, event := range upcoming {
		count, err := jr.remind(ctx, event, now)
		if err != nil {
			logger.Error("Failed to send reminders for event", "eventID", event.ID, "error", err)
			continue
		}
		if count >= 0 {
			events++
			notified += count
		}
	}
	return events, notified, nil
}

// remind returns -1 when the event was already reminded.
func (jr *JobRunner) remind(ctx context.Context, event domain.Event, now time.Time) (int, error) {
	count := 0
	err := jr.store.WithTx(ctx, func(tx repository.Tx) error {
		first, err := tx.Reminders().MarkSent(ctx, event.ID, now)
		if err != nil {
			return err
		}
		if !first {
			count = -1
			return nil
		}

		userIDs, err := tx.Enrollments().ListUserIDsByEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		message := fmt.Sprintf("Reminder: %s starts at %s", event.Name, event.StartsAt.UTC().Format("Mon Jan 2 15:04 MST"))
		for _, userID := range userIDs {
			n := &domain.Notification{
				UserID:  userID,
				Kind:    domain.NotificationKindReminder,
				Message: message,
				Attributes: map[string]string{
					"event_id": strconv.Itoa(int(event.ID)),
				},
			}
			if err := tx.Notifications().Create(ctx, n); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	return count, err
}
