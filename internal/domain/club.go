package domain

import "time"

type Club struct {
	ID           int32      `json:"id"`
	Name         string     `json:"name"`
	DepartmentID int32      `json:"department_id"`
	Active       bool       `json:"active"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
}

// IsOpen reports whether the club still accepts new memberships and events.
func (c *Club) IsOpen() bool {
	return c != nil && c.Active && c.ClosedAt == nil
}

type Membership struct {
	UserID   int32     `json:"user_id"`
	ClubID   int32     `json:"club_id"`
	JoinedAt time.Time `json:"joined_at"`
}
