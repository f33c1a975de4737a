package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"clubhub-backend/internal/config"
	"clubhub-backend/internal/logger"
)

const requestIDHeader = "X-Request-ID"

type ctxKey int

const actorKey ctxKey = iota

func actorFromContext(ctx context.Context) (int32, bool) {
	id, ok := ctx.Value(actorKey).(int32)
	return id, ok
}

func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", routeName(r),
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		return route.GetName()
	}
	return ""
}

func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if config.RouteSecurity(routeName(r)) == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		authz := r.Header.Get("Authorization")
		if len(authz) < 7 || !strings.EqualFold(authz[:7], "Bearer ") {
			writeUnauthorized(w, "missing bearer token")
			return
		}
		claims, err := h.validator.ValidateAccessToken(strings.TrimSpace(authz[7:]))
		if err != nil {
			logger.WarnContext(r.Context(), "token validation failed", "error", err)
			writeUnauthorized(w, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, claims.UserID)
		ctx = logger.WithActor(ctx, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := actorFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if !h.limiter.get(actorID).Allow() {
			logger.WarnContext(r.Context(), "rate limit exceeded", "route", routeName(r))
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorBody("RATE_LIMITED"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) timeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.requestTimeout <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actorLimiter keeps one token bucket per authenticated account.
type actorLimiter struct {
	mu          sync.Mutex
	limiters    map[int32]*rate.Limiter
	rate        rate.Limit
	burst       int
	lastCleanup time.Time
}

func newActorLimiter(perMinute, burst int) *actorLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
	}
	return &actorLimiter{
		limiters:    make(map[int32]*rate.Limiter),
		rate:        limit,
		burst:       burst,
		lastCleanup: time.Now(),
	}
}

func (l *actorLimiter) get(actorID int32) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Idle buckets are full; dropping them loses nothing.
	if time.Since(l.lastCleanup) > 5*time.Minute {
		for id, lim := range l.limiters {
			if lim.Tokens() >= float64(l.burst) {
				delete(l.limiters, id)
			}
		}
		l.lastCleanup = time.Now()
	}

	lim, ok := l.limiters[actorID]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[actorID] = lim
	}
	return lim
}

func pathID(r *http.Request, name string, bitSize int) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, bitSize)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
