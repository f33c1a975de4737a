package domain

import "time"

type Event struct {
	ID           int32     `json:"id"`
	ClubID       int32     `json:"club_id"`
	Name         string    `json:"name"`
	Capacity     int32     `json:"capacity"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	Cancelled    bool      `json:"cancelled"`
	CancelReason string    `json:"cancel_reason,omitempty"`
}

// HasEnded reports whether now is past the event end. Joining at exactly
// EndsAt is still allowed.
func (e *Event) HasEnded(now time.Time) bool {
	return now.After(e.EndsAt)
}

type Enrollment struct {
	UserID   int32     `json:"user_id"`
	EventID  int32     `json:"event_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// RosterSummary is the seat usage of one event at the time it was read.
type RosterSummary struct {
	EventID   int32 `json:"event_id"`
	Capacity  int32 `json:"capacity"`
	Enrolled  int32 `json:"enrolled"`
	Remaining int32 `json:"remaining"`
	Cancelled bool  `json:"cancelled"`
}

func NewRosterSummary(e *Event, enrolled int32) RosterSummary {
	remaining := e.Capacity - enrolled
	if remaining < 0 {
		remaining = 0
	}
	return RosterSummary{
		EventID:   e.ID,
		Capacity:  e.Capacity,
		Enrolled:  enrolled,
		Remaining: remaining,
		Cancelled: e.Cancelled,
	}
}
