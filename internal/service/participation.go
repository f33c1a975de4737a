package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
)

const instrumentationName = "clubhub-backend/internal/service"

// afterCommitTimeout bounds notification persistence and broker publishing
// once the mutation has committed, independent of the request deadline.
const afterCommitTimeout = 5 * time.Second

type participationService struct {
	store      repository.Store
	ledger     MembershipLedger
	roster     EventRoster
	dispatcher NotificationDispatcher
	publisher  ChangePublisher

	tracer           trace.Tracer
	requests         metric.Int64Counter
	dispatchFailures metric.Int64Counter
}

// NewParticipationService wires the participation rules. publisher may be nil.
func NewParticipationService(
	store repository.Store,
	ledger MembershipLedger,
	roster EventRoster,
	dispatcher NotificationDispatcher,
	publisher ChangePublisher,
) ParticipationService {
	meter := otel.Meter(instrumentationName)
	requests, err := meter.Int64Counter("participation.requests",
		metric.WithDescription("Participation requests by operation and outcome"))
	if err != nil {
		logger.Warn("failed to create counter", "name", "participation.requests", "error", err)
	}
	failures, err := meter.Int64Counter("notifications.dispatch.failures",
		metric.WithDescription("Notification records that could not be persisted after a committed change"))
	if err != nil {
		logger.Warn("failed to create counter", "name", "notifications.dispatch.failures", "error", err)
	}

	return &participationService{
		store:            store,
		ledger:           ledger,
		roster:           roster,
		dispatcher:       dispatcher,
		publisher:        publisher,
		tracer:           otel.Tracer(instrumentationName),
		requests:         requests,
		dispatchFailures: failures,
	}
}

func (s *participationService) JoinClub(ctx context.Context, userID, clubID int32) error {
	return s.mutate(ctx, "JoinClub", userID, attribute.Int("club.id", int(clubID)),
		func(tx repository.Tx) (domain.ChangeEvent, error) {
			return s.ledger.Join(ctx, tx, userID, clubID)
		})
}

func (s *participationService) LeaveClub(ctx context.Context, userID, clubID int32) error {
	return s.mutate(ctx, "LeaveClub", userID, attribute.Int("club.id", int(clubID)),
		func(tx repository.Tx) (domain.ChangeEvent, error) {
			return s.ledger.Leave(ctx, tx, userID, clubID)
		})
}

func (s *participationService) JoinEvent(ctx context.Context, userID, eventID int32) error {
	return s.mutate(ctx, "JoinEvent", userID, attribute.Int("event.id", int(eventID)),
		func(tx repository.Tx) (domain.ChangeEvent, error) {
			return s.roster.Join(ctx, tx, userID, eventID)
		})
}

func (s *participationService) LeaveEvent(ctx context.Context, userID, eventID int32) error {
	return s.mutate(ctx, "LeaveEvent", userID, attribute.Int("event.id", int(eventID)),
		func(tx repository.Tx) (domain.ChangeEvent, error) {
			return s.roster.Leave(ctx, tx, userID, eventID)
		})
}

// mutate runs one gated ledger or roster change in its own transaction, then
// dispatches and publishes the resulting change outside of it.
func (s *participationService) mutate(
	ctx context.Context,
	op string,
	userID int32,
	subject attribute.KeyValue,
	fn func(tx repository.Tx) (domain.ChangeEvent, error),
) (err error) {
	ctx, span := s.tracer.Start(ctx, "ParticipationService."+op,
		trace.WithAttributes(attribute.Int("user.id", int(userID)), subject))
	defer func() { s.finish(ctx, span, op, err) }()

	var evt domain.ChangeEvent
	err = s.store.WithTx(ctx, func(tx repository.Tx) error {
		// The gate reads the account inside the transaction so a suspension
		// committed before it is always seen.
		if _, err := loadActiveAccount(ctx, tx, userID); err != nil {
			return err
		}
		var txErr error
		evt, txErr = fn(tx)
		return txErr
	})
	if err != nil {
		return err
	}

	s.afterCommit(ctx, evt)
	return nil
}

// afterCommit never fails the caller: the change is already durable.
func (s *participationService) afterCommit(ctx context.Context, evt domain.ChangeEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), afterCommitTimeout)
	defer cancel()

	if _, err := s.dispatcher.Dispatch(ctx, evt); err != nil {
		logger.ErrorContext(ctx, "notification dispatch failed", "type", evt.Topic(), "error", err)
		s.addDispatchFailure(ctx, evt.Topic())
	}
	s.publish(ctx, evt)
}

func (s *participationService) publish(ctx context.Context, evt domain.ChangeEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		logger.WarnContext(ctx, "change event publish failed", "type", evt.Topic(), "error", err)
	}
}

func (s *participationService) PostAnnouncement(ctx context.Context, actorID, eventID int32, message string, authorize RoleCheck) (notified int, err error) {
	ctx, span := s.tracer.Start(ctx, "ParticipationService.PostAnnouncement",
		trace.WithAttributes(attribute.Int("user.id", int(actorID)), attribute.Int("event.id", int(eventID))))
	defer func() { s.finish(ctx, span, "PostAnnouncement", err) }()

	if err := s.authorizeActor(ctx, s.store, actorID, authorize); err != nil {
		return 0, err
	}
	if _, err := s.store.Events().GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, domain.ErrEventNotFound
		}
		return 0, fmt.Errorf("failed to get event: %w", err)
	}

	evt := domain.AnnouncementPosted{EventID: eventID, Message: message}
	notes, err := s.dispatcher.Dispatch(ctx, evt)
	if err != nil {
		s.addDispatchFailure(ctx, evt.Topic())
		return 0, fmt.Errorf("failed to dispatch announcement: %w", err)
	}
	span.SetAttributes(attribute.Int("notified.count", len(notes)))

	s.publish(ctx, evt)
	return len(notes), nil
}

func (s *participationService) CancelEvent(ctx context.Context, actorID, eventID int32, reason string, authorize RoleCheck) (event *domain.Event, err error) {
	ctx, span := s.tracer.Start(ctx, "ParticipationService.CancelEvent",
		trace.WithAttributes(attribute.Int("user.id", int(actorID)), attribute.Int("event.id", int(eventID))))
	defer func() { s.finish(ctx, span, "CancelEvent", err) }()

	err = s.store.WithTx(ctx, func(tx repository.Tx) error {
		if err := s.authorizeActor(ctx, tx, actorID, authorize); err != nil {
			return err
		}
		var txErr error
		event, txErr = s.roster.Cancel(ctx, tx, eventID, reason)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "event cancelled", "eventID", eventID, "reason", event.CancelReason)
	return event, nil
}

// authorizeActor applies the suspension gate before the role check, so a
// suspended manager sees SUSPENDED rather than FORBIDDEN.
func (s *participationService) authorizeActor(ctx context.Context, repos repository.Repositories, actorID int32, authorize RoleCheck) error {
	account, err := loadActiveAccount(ctx, repos, actorID)
	if err != nil {
		return err
	}
	if authorize == nil {
		return domain.ErrForbidden
	}
	return authorize(account.Role)
}

func (s *participationService) MembershipStatus(ctx context.Context, userID, clubID int32) (*domain.Membership, error) {
	if _, err := loadActiveAccount(ctx, s.store, userID); err != nil {
		return nil, err
	}
	m, err := s.store.Memberships().Get(ctx, userID, clubID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return m, err
}

func (s *participationService) EnrollmentStatus(ctx context.Context, userID, eventID int32) (*domain.Enrollment, error) {
	if _, err := loadActiveAccount(ctx, s.store, userID); err != nil {
		return nil, err
	}
	e, err := s.store.Enrollments().Get(ctx, userID, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return e, err
}

func (s *participationService) EventRoster(ctx context.Context, userID, eventID int32) (*domain.RosterSummary, error) {
	if _, err := loadActiveAccount(ctx, s.store, userID); err != nil {
		return nil, err
	}
	return s.roster.Roster(ctx, s.store, eventID)
}

// finish records the outcome of one operation on the span, the request
// counter and the log.
func (s *participationService) finish(ctx context.Context, span trace.Span, op string, err error) {
	defer span.End()

	outcome := "ok"
	var rule *domain.RuleError
	switch {
	case err == nil:
		logger.InfoContext(ctx, "participation request succeeded", "operation", op)
	case errors.As(err, &rule):
		outcome = string(rule.Code)
		span.SetAttributes(attribute.String("rule.code", outcome))
		logger.InfoContext(ctx, "participation request rejected", "operation", op, "code", outcome)
	default:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "participation request failed", "operation", op, "error", err)
	}

	if s.requests != nil {
		s.requests.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", outcome),
		))
	}
}

func (s *participationService) addDispatchFailure(ctx context.Context, topic string) {
	if s.dispatchFailures != nil {
		s.dispatchFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("type", topic)))
	}
}
