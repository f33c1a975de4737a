package service

import (
	"context"
	"errors"
	"math"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type notificationService struct {
	store repository.Store
}

func NewNotificationService(store repository.Store) NotificationService {
	return &notificationService{store: store}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	if _, err := loadActiveAccount(ctx, s.store, userID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	// Pages past the int32 offset range are empty anyway, so clamp instead of
	// letting the product wrap negative.
	offset := int64(page-1) * int64(pageSize)
	if offset > math.MaxInt32 {
		offset = math.MaxInt32
	}
	return s.store.Notifications().List(ctx, userID, pageSize, int32(offset))
}

// MarkAsRead only flips notifications owned by userID; anything else looks
// like a missing notification.
func (s *notificationService) MarkAsRead(ctx context.Context, userID int32, notificationID int64) error {
	if _, err := loadActiveAccount(ctx, s.store, userID); err != nil {
		return err
	}
	err := s.store.Notifications().MarkAsRead(ctx, notificationID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrNotificationNotFound
	}
	return err
}
