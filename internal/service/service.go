package service

import (
	"context"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository"
)

// RoleCheck is supplied by the authorization boundary. It returns
// domain.ErrForbidden when the role may not perform the action.
type RoleCheck func(role domain.Role) error

type MembershipLedger interface {
	Join(ctx context.Context, tx repository.Tx, userID, clubID int32) (*domain.MembershipChanged, error)
	Leave(ctx context.Context, tx repository.Tx, userID, clubID int32) (*domain.MembershipChanged, error)
}

type EventRoster interface {
	Join(ctx context.Context, tx repository.Tx, userID, eventID int32) (*domain.EnrollmentChanged, error)
	Leave(ctx context.Context, tx repository.Tx, userID, eventID int32) (*domain.EnrollmentChanged, error)
	Cancel(ctx context.Context, tx repository.Tx, eventID int32, reason string) (*domain.Event, error)
	Roster(ctx context.Context, repos repository.Repositories, eventID int32) (*domain.RosterSummary, error)
}

type NotificationDispatcher interface {
	Dispatch(ctx context.Context, evt domain.ChangeEvent) ([]domain.Notification, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID int32, notificationID int64) error
}

type ParticipationService interface {
	JoinClub(ctx context.Context, userID, clubID int32) error
	LeaveClub(ctx context.Context, userID, clubID int32) error
	JoinEvent(ctx context.Context, userID, eventID int32) error
	LeaveEvent(ctx context.Context, userID, eventID int32) error
	PostAnnouncement(ctx context.Context, actorID, eventID int32, message string, authorize RoleCheck) (int, error)
	CancelEvent(ctx context.Context, actorID, eventID int32, reason string, authorize RoleCheck) (*domain.Event, error)

	// Status queries let callers re-check state after a timeout instead of
	// retrying a mutation blindly. A nil result means no row exists.
	MembershipStatus(ctx context.Context, userID, clubID int32) (*domain.Membership, error)
	EnrollmentStatus(ctx context.Context, userID, eventID int32) (*domain.Enrollment, error)
	EventRoster(ctx context.Context, userID, eventID int32) (*domain.RosterSummary, error)
}

// ChangePublisher forwards committed changes to the change stream.
type ChangePublisher interface {
	Publish(ctx context.Context, evt domain.ChangeEvent) error
}

// DeliveryChannel pushes a stored notification to an external channel.
type DeliveryChannel interface {
	Name() string
	Deliver(ctx context.Context, account *domain.Account, n domain.Notification) error
}
