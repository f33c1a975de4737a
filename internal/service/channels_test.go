package service

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clubhub-backend/internal/domain"
)

type mockMailSender struct {
	mock.Mock
}

func (m *mockMailSender) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rest.Response), args.Error(1)
}

type mockPushSender struct {
	mock.Mock
}

func (m *mockPushSender) Send(ctx context.Context, message *messaging.Message) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

var testAccount = &domain.Account{ID: 7, Email: "ana@uni.edu", Name: "Ana", Role: domain.RoleStudent, Active: true}

func TestEmailService_Deliver(t *testing.T) {
	note := domain.Notification{ID: 3, UserID: 7, Kind: domain.NotificationKindAnnouncement, Message: "Room changed"}

	t.Run("Success", func(t *testing.T) {
		sender := new(mockMailSender)
		sender.On("SendWithContext", mock.Anything, mock.MatchedBy(func(m *mail.SGMailV3) bool {
			return m.Subject == "Event announcement" &&
				m.From.Address == "noreply@clubhub.edu" &&
				m.Personalizations[0].To[0].Address == "ana@uni.edu"
		})).Return(&rest.Response{StatusCode: 202}, nil)

		svc := newEmailService(sender, "noreply@clubhub.edu", "Clubhub")
		require.NoError(t, svc.Deliver(context.Background(), testAccount, note))
		sender.AssertExpectations(t)
	})

	t.Run("Provider rejects", func(t *testing.T) {
		sender := new(mockMailSender)
		sender.On("SendWithContext", mock.Anything, mock.Anything).Return(&rest.Response{StatusCode: 401, Body: "unauthorized"}, nil)

		err := newEmailService(sender, "noreply@clubhub.edu", "Clubhub").Deliver(context.Background(), testAccount, note)
		assert.ErrorContains(t, err, "status 401")
	})

	t.Run("Transport error", func(t *testing.T) {
		sender := new(mockMailSender)
		sender.On("SendWithContext", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: timeout"))

		err := newEmailService(sender, "noreply@clubhub.edu", "Clubhub").Deliver(context.Background(), testAccount, note)
		assert.ErrorContains(t, err, "timeout")
	})

	t.Run("No address is skipped", func(t *testing.T) {
		sender := new(mockMailSender)
		err := newEmailService(sender, "noreply@clubhub.edu", "Clubhub").Deliver(context.Background(), &domain.Account{ID: 8}, note)
		assert.NoError(t, err)
		sender.AssertNotCalled(t, "SendWithContext", mock.Anything, mock.Anything)
	})
}

func TestPushService_Deliver(t *testing.T) {
	note := domain.Notification{
		ID: 5, UserID: 7, Kind: domain.NotificationKindEnrollment, Message: "You joined Blitz Night",
		Attributes: map[string]string{"event_id": "9"},
	}

	sender := new(mockPushSender)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(m *messaging.Message) bool {
		return m.Topic == "user-7" &&
			m.Notification.Title == "Event enrollment update" &&
			m.Notification.Body == "You joined Blitz Night" &&
			m.Data["event_id"] == "9" &&
			m.Data["notification_id"] == "5"
	})).Return("projects/p/messages/1", nil).Once()
	sender.On("Send", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded")).Once()

	svc := &pushService{client: sender}
	require.NoError(t, svc.Deliver(context.Background(), testAccount, note))
	assert.ErrorContains(t, svc.Deliver(context.Background(), testAccount, note), "quota exceeded")
	assert.Equal(t, "push", svc.Name())
	sender.AssertExpectations(t)
}

func TestSubjectFor(t *testing.T) {
	assert.Equal(t, "Club membership update", subjectFor(domain.NotificationKindMembership))
	assert.Equal(t, "Event reminder", subjectFor(domain.NotificationKindReminder))
	assert.Equal(t, "Clubhub notification", subjectFor("OTHER"))
}
