// Package http exposes the participation operations as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"clubhub-backend/internal/config"
	"clubhub-backend/internal/security"
	"clubhub-backend/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the participation API.
type Handler struct {
	participation service.ParticipationService
	notifications service.NotificationService
	store         Pinger
	validator     security.TokenValidator

	requestTimeout time.Duration
	limiter        *actorLimiter
}

func NewHandler(
	participation service.ParticipationService,
	notifications service.NotificationService,
	store Pinger,
	validator security.TokenValidator,
	cfg *config.Config,
) *Handler {
	return &Handler{
		participation:  participation,
		notifications:  notifications,
		store:          store,
		validator:      validator,
		requestTimeout: cfg.RequestTimeout(),
		limiter:        newActorLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst),
	}
}

// Router builds the mux. Route names are the keys of
// config.RouteSecurityConfig.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.requestID, h.accessLog, h.authenticate, h.rateLimit, h.timeout)

	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet).Name("Healthz")

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/clubs/{clubID}/membership", h.joinClub).Methods(http.MethodPost).Name("JoinClub")
	api.HandleFunc("/clubs/{clubID}/membership", h.leaveClub).Methods(http.MethodDelete).Name("LeaveClub")
	api.HandleFunc("/clubs/{clubID}/membership", h.membershipStatus).Methods(http.MethodGet).Name("MembershipStatus")

	api.HandleFunc("/events/{eventID}/enrollment", h.joinEvent).Methods(http.MethodPost).Name("JoinEvent")
	api.HandleFunc("/events/{eventID}/enrollment", h.leaveEvent).Methods(http.MethodDelete).Name("LeaveEvent")
	api.HandleFunc("/events/{eventID}/enrollment", h.enrollmentStatus).Methods(http.MethodGet).Name("EnrollmentStatus")
	api.HandleFunc("/events/{eventID}/roster", h.eventRoster).Methods(http.MethodGet).Name("EventRoster")
	api.HandleFunc("/events/{eventID}/announcements", h.postAnnouncement).Methods(http.MethodPost).Name("PostAnnouncement")
	api.HandleFunc("/events/{eventID}/cancel", h.cancelEvent).Methods(http.MethodPost).Name("CancelEvent")

	api.HandleFunc("/notifications", h.listNotifications).Methods(http.MethodGet).Name("ListNotifications")
	api.HandleFunc("/notifications/{id}/read", h.markNotification).Methods(http.MethodPost).Name("MarkNotification")

	return r
}
