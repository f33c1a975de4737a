package jobs

import (
	"context"
	"errors"
	"fmt"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
)

// DeliverPendingNotifications pushes one batch of undelivered notification
// records through the configured channels. Delivery is at-least-once: a
// record is only marked delivered after every channel accepted it.
func (jr *JobRunner) DeliverPendingNotifications() {
	jr.runWithRecovery("DeliverPendingNotifications", func() {
		delivered, failed, err := jr.deliverPending(context.Background())
		if err != nil {
			logger.Error("Failed to deliver notifications", "error", err)
			return
		}
		logger.Info("Notifications delivered", "delivered", delivered, "failed", failed)
	})
}

func (jr *JobRunner) deliverPending(ctx context.Context) (delivered, failed int, err error) {
	if len(jr.channels) == 0 {
		logger.Debug("No delivery channels configured, skipping")
		return 0, 0, nil
	}

	pending, err := jr.store.Notifications().ListUndelivered(ctx, int32(jr.config.Delivery.BatchSize))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list undelivered notifications: %w", err)
	}

	accounts := make(map[int32]*domain.Account)
	for _, n := range pending {
		account, ok := accounts[n.UserID]
		if !ok {
			account, err = jr.store.Accounts().GetByID(ctx, n.UserID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				logger.Error("Failed to get account", "userID", n.UserID, "error", err)
				failed++
				continue
			}
			accounts[n.UserID] = account
		}

		// Suspended or removed accounts keep the inbox record but get no
		// external delivery.
		if account != nil && account.Active {
			if err := jr.deliverOne(ctx, account, n); err != nil {
				logger.Error("Failed to deliver notification", "notificationID", n.ID, "userID", n.UserID, "error", err)
				failed++
				continue
			}
		}

		if err := jr.store.Notifications().MarkDelivered(ctx, n.ID, jr.now().UTC()); err != nil {
			logger.Error("Failed to mark notification delivered", "notificationID", n.ID, "error", err)
			failed++
			continue
		}
		delivered++
	}
	return delivered, failed, nil
}

func (jr *JobRunner) deliverOne(ctx context.Context, account *domain.Account, n domain.Notification) error {
	var errs []error
	for _, ch := range jr.channels {
		if err := ch.Deliver(ctx, account, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
		}
	}
	return errors.Join(errs...)
}
