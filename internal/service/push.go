package service

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
)

type pushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type pushService struct {
	client pushSender
}

// NewPushService delivers notifications through Firebase Cloud Messaging to
// the per-user topic the mobile app subscribes to.
func NewPushService(ctx context.Context, projectID, credentialsFile string) (DeliveryChannel, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase messaging: %w", err)
	}
	return &pushService{client: client}, nil
}

func (s *pushService) Name() string { return "push" }

func (s *pushService) Deliver(ctx context.Context, account *domain.Account, n domain.Notification) error {
	data := make(map[string]string, len(n.Attributes)+2)
	for k, v := range n.Attributes {
		data[k] = v
	}
	data["notification_id"] = fmt.Sprint(n.ID)
	data["kind"] = string(n.Kind)

	message := &messaging.Message{
		Topic: userTopic(account.ID),
		Notification: &messaging.Notification{
			Title: subjectFor(n.Kind),
			Body:  n.Message,
		},
		Data: data,
	}

	logger.ExternalServiceCall("fcm", "Send", "notificationID", n.ID, "topic", message.Topic)
	_, err := s.client.Send(ctx, message)
	logger.ExternalServiceResult("fcm", "Send", err, "notificationID", n.ID)
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	return nil
}

func userTopic(userID int32) string {
	return fmt.Sprintf("user-%d", userID)
}
