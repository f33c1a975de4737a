package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Bearer token required
)

// RouteSecurityConfig maps mux route names to their required security level.
// Routes missing from the map require an access token.
var RouteSecurityConfig = map[string]SecurityLevel{
	"Healthz": SecurityPublic,

	"JoinClub":         SecurityAccess,
	"LeaveClub":        SecurityAccess,
	"MembershipStatus": SecurityAccess,

	"JoinEvent":        SecurityAccess,
	"LeaveEvent":       SecurityAccess,
	"EnrollmentStatus": SecurityAccess,
	"EventRoster":      SecurityAccess,
	"PostAnnouncement": SecurityAccess,
	"CancelEvent":      SecurityAccess,

	"ListNotifications": SecurityAccess,
	"MarkNotification":  SecurityAccess,
}

// RouteSecurity returns the level for a route name.
func RouteSecurity(name string) SecurityLevel {
	if level, ok := RouteSecurityConfig[name]; ok {
		return level
	}
	return SecurityAccess
}
