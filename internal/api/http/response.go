package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
)

const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeUnauthorized   = "UNAUTHORIZED"
	codeTimeout        = "TIMEOUT"
	codeInternal       = "INTERNAL"
	codeUnavailable    = "UNAVAILABLE"
)

type envelope map[string]any

func okBody(fields envelope) envelope {
	body := envelope{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	return body
}

func errorBody(code string) envelope {
	return envelope{"ok": false, "error": code}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeUnauthorized(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	writeJSON(w, http.StatusUnauthorized, errorBody(codeUnauthorized))
}

func writeBadRequest(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorBody(codeInvalidRequest))
}

// writeError maps rule outcomes onto status codes. Anything that is not a
// rule outcome is an infrastructure failure and is logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var rule *domain.RuleError
	if errors.As(err, &rule) {
		body := errorBody(string(rule.Code))
		switch rule.Kind {
		case domain.KindPrecondition:
			writeJSON(w, http.StatusConflict, body)
		case domain.KindAccessDenied:
			if rule.Code == domain.CodeSuspended {
				body["status"] = string(domain.CodeSuspended)
			}
			writeJSON(w, http.StatusForbidden, body)
		case domain.KindNotFound:
			writeJSON(w, http.StatusNotFound, body)
		default:
			writeJSON(w, http.StatusConflict, body)
		}
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		logger.WarnContext(r.Context(), "request timed out", "route", routeName(r), "error", err)
		writeJSON(w, http.StatusGatewayTimeout, errorBody(codeTimeout))
		return
	}

	logger.ErrorContext(r.Context(), "request failed", "route", routeName(r), "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody(codeInternal))
}

const maxBodyBytes = 64 << 10

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
