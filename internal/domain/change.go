package domain

type ChangeKind string

const (
	ChangeJoined ChangeKind = "JOINED"
	ChangeLeft   ChangeKind = "LEFT"
)

// ChangeEvent is produced by a successful ledger or roster mutation, or
// supplied externally for announcements, and consumed by the dispatcher.
type ChangeEvent interface {
	// Topic names the event type on the change stream.
	Topic() string
}

type MembershipChanged struct {
	UserID int32      `json:"user_id"`
	ClubID int32      `json:"club_id"`
	Kind   ChangeKind `json:"kind"`
}

func (MembershipChanged) Topic() string { return "membership.changed" }

type EnrollmentChanged struct {
	UserID  int32      `json:"user_id"`
	EventID int32      `json:"event_id"`
	Kind    ChangeKind `json:"kind"`
}

func (EnrollmentChanged) Topic() string { return "enrollment.changed" }

type AnnouncementPosted struct {
	EventID int32  `json:"event_id"`
	Message string `json:"message"`
}

func (AnnouncementPosted) Topic() string { return "announcement.posted" }
