package http

import "clubhub-backend/internal/domain"

// canManageEvents allows club managers and administrators to announce and
// cancel events.
func canManageEvents(role domain.Role) error {
	switch role {
	case domain.RoleClubManager, domain.RoleAdmin:
		return nil
	case domain.RoleStudent, domain.RoleAcademic:
		return domain.ErrForbidden
	default:
		return domain.ErrForbidden
	}
}
