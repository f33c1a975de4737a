package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
)

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type emailService struct {
	client    mailSender
	fromEmail string
	fromName  string
}

// NewEmailService delivers notifications as plain emails through SendGrid.
func NewEmailService(apiKey, fromEmail, fromName string) DeliveryChannel {
	return newEmailService(sendgrid.NewSendClient(apiKey), fromEmail, fromName)
}

func newEmailService(client mailSender, fromEmail, fromName string) *emailService {
	return &emailService{client: client, fromEmail: fromEmail, fromName: fromName}
}

func (s *emailService) Name() string { return "email" }

func (s *emailService) Deliver(ctx context.Context, account *domain.Account, n domain.Notification) error {
	if account.Email == "" {
		return nil
	}
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(account.Name, account.Email)
	body := fmt.Sprintf("Hello %s,\n\n%s\n\nBest regards,\nThe Clubhub Team", account.Name, n.Message)
	message := mail.NewSingleEmailPlainText(from, subjectFor(n.Kind), to, body)

	logger.ExternalServiceCall("sendgrid", "Send", "notificationID", n.ID)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err, "notificationID", n.ID)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func subjectFor(kind domain.NotificationKind) string {
	switch kind {
	case domain.NotificationKindMembership:
		return "Club membership update"
	case domain.NotificationKindEnrollment:
		return "Event enrollment update"
	case domain.NotificationKindAnnouncement:
		return "Event announcement"
	case domain.NotificationKindReminder:
		return "Event reminder"
	default:
		return "Clubhub notification"
	}
}
