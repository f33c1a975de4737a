package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clubhub-backend/internal/logger"
)

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		logger.WarnContext(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody(codeUnavailable))
		return
	}
	writeJSON(w, http.StatusOK, okBody(nil))
}

// withActorAndID resolves the authenticated actor and one int32 path id.
func withActorAndID(w http.ResponseWriter, r *http.Request, name string) (actorID, id int32, ok bool) {
	actorID, ok = actorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "missing actor")
		return 0, 0, false
	}
	raw, ok := pathID(r, name, 32)
	if !ok {
		writeBadRequest(w)
		return 0, 0, false
	}
	return actorID, int32(raw), true
}

func (h *Handler) joinClub(w http.ResponseWriter, r *http.Request) {
	userID, clubID, ok := withActorAndID(w, r, "clubID")
	if !ok {
		return
	}
	if err := h.participation.JoinClub(r.Context(), userID, clubID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody(envelope{"club_id": clubID, "member": true}))
}

func (h *Handler) leaveClub(w http.ResponseWriter, r *http.Request) {
	userID, clubID, ok := withActorAndID(w, r, "clubID")
	if !ok {
		return
	}
	if err := h.participation.LeaveClub(r.Context(), userID, clubID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody(envelope{"club_id": clubID, "member": false}))
}

func (h *Handler) membershipStatus(w http.ResponseWriter, r *http.Request) {
	userID, clubID, ok := withActorAndID(w, r, "clubID")
	if !ok {
		return
	}
	m, err := h.participation.MembershipStatus(r.Context(), userID, clubID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body := envelope{"club_id": clubID, "member": m != nil}
	if m != nil {
		body["joined_at"] = m.JoinedAt
	}
	writeJSON(w, http.StatusOK, okBody(body))
}

func (h *Handler) joinEvent(w http.ResponseWriter, r *http.Request) {
	userID, eventID, ok := withActorAndID(w, r, "eventID")
	if !ok {
		return
	}
	if err := h.participation.JoinEvent(r.Context(), userID, eventID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody(envelope{"event_id": eventID, "enrolled": true}))
}

func (h *Handler) leaveEvent(w http.ResponseWriter, r *http.Request) {
	userID, eventID, ok := withActorAndID(w, r, "eventID")
	if !ok {
		return
	}
	if err := h.participation.LeaveEvent(r.Context(), userID, eventID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody(envelope{"event_id": eventID, "enrolled": false}))
}

func (h *Handler) enrollmentStatus(w http.ResponseWriter, r *http.Request) {
	userID, eventID, ok := withActorAndID(w, r, "eventID")
	if !ok {
		return
	}
	e, err := h.participation.EnrollmentStatus(r.Context(), userID, eventID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body := envelope{"event_id": eventID, "enrolled": e != nil}
	if e != nil {
		body["joined_at"] = e.JoinedAt
	}
	writeJSON(w, http.StatusOK, okBody(body))
}

func (h *Handler) eventRoster(w http.ResponseWriter, r *http.Request) {
	userID, eventID, ok := withActorAndID(w, r, "eventID")
	if !ok {
		return
	}
	summary, err := h.participation.EventRoster(r.Context(), userID, eventID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody(envelope{"roster": summary}))
}

type announcementRequest struct {
	Message string `json:"message"`
}

func (h *Handler) postAnnouncement(w http.ResponseWriter, r *http.Request) {
	actorID, eventID, ok := withActorAndID(w, r, "eventID")
	if !ok {
		return
	}
	var req announcementRequest
	if err := decodeBody(w, r, &req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeBadRequest(w)
		return
	}
	count, err := h.participation.PostAnnouncement(r.Context(), actorID, eventID, req.Message, canManageEvents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody(envelope{"notified_count": count}))
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) cancelEvent(w http.ResponseWriter, r *http.Request) {
	actorID, eventID, ok := withActorAndID(w, r, "eventID")
	if !ok {
		return
	}
	// The reason is optional, so an empty body is accepted.
	var req cancelRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w)
		return
	}
	event, err := h.participation.CancelEvent(r.Context(), actorID, eventID, strings.TrimSpace(req.Reason), canManageEvents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody(envelope{"event": event}))
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "missing actor")
		return
	}
	page, ok := queryInt32(r, "page")
	if !ok {
		writeBadRequest(w)
		return
	}
	pageSize, ok := queryInt32(r, "page_size")
	if !ok {
		writeBadRequest(w)
		return
	}

	notifications, total, err := h.notifications.GetNotifications(r.Context(), userID, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody(envelope{"notifications": notifications, "total": total}))
}

func (h *Handler) markNotification(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "missing actor")
		return
	}
	id, ok := pathID(r, "id", 64)
	if !ok {
		writeBadRequest(w)
		return
	}
	if err := h.notifications.MarkAsRead(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody(nil))
}

// queryInt32 returns 0 for an absent parameter so the service defaults apply.
func queryInt32(r *http.Request, name string) (int32, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 0 {
		return 0, false
	}
	return int32(v), true
}
