package domain

import "time"

type NotificationKind string

const (
	NotificationKindMembership   NotificationKind = "MEMBERSHIP"
	NotificationKindEnrollment   NotificationKind = "ENROLLMENT"
	NotificationKindAnnouncement NotificationKind = "ANNOUNCEMENT"
	NotificationKindReminder     NotificationKind = "REMINDER"
)

type Notification struct {
	ID          int64             `json:"id"`
	UserID      int32             `json:"user_id"`
	Kind        NotificationKind  `json:"kind"`
	Message     string            `json:"message"`
	IsRead      bool              `json:"is_read"`
	Attributes  map[string]string `json:"attributes"`
	CreatedAt   time.Time         `json:"created_at"`
	DeliveredAt *time.Time        `json:"delivered_at,omitempty"` // set once pushed to external channels
}
