package domain

import "strings"

type Role string

const (
	RoleStudent     Role = "STUDENT"
	RoleAcademic    Role = "ACADEMIC"
	RoleClubManager Role = "CLUB_MANAGER"
	RoleAdmin       Role = "ADMIN"
)

// ParseRole maps a stored role name onto the closed Role set.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAcademic, RoleClubManager, RoleAdmin:
		return true
	}
	return false
}

type Account struct {
	ID     int32  `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Active bool   `json:"active"` // false once an administrator suspends the account
}
