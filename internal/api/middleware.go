package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"labsys.dev/lab-control/internal/auth"
	"labsys.dev/lab-control/internal/store"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	userKey
)

// GetRequestID extracts the request ID from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// UserFromContext extracts the authenticated user set by authenticate.
func UserFromContext(ctx context.Context) *store.User {
	if user, ok := ctx.Value(userKey).(*store.User); ok {
		return user
	}
	return nil
}

// requestID tags each request with a UUID for tracing. An incoming
// X-Request-ID header wins so the portal can correlate retries.
func (h *Handlers) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, reqID)
		w.Header().Set("X-Request-ID", reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// instrument logs each request and feeds the Prometheus collectors.
func (h *Handlers) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Track in-flight requests
		if h.metrics != nil {
			h.metrics.HTTPRequestsInFlight.WithLabelValues(r.Method, r.URL.Path).Inc()
			defer h.metrics.HTTPRequestsInFlight.WithLabelValues(r.Method, r.URL.Path).Dec()
		}

		// Track duration
		var timer *prometheus.Timer
		if h.metrics != nil {
			timer = prometheus.NewTimer(h.metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path))
			defer timer.ObserveDuration()
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if h.metrics != nil {
			h.metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
		}

		h.logger.Debug("request handled",
			"request_id", GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// cors mirrors the permissive development policy of the original backend:
// the portal may be served from any origin, devices do not use browsers.
func (h *Handlers) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authenticate verifies the bearer token and resolves its subject to a live
// user record. A token whose user has been deleted is rejected, so
// revocation is as simple as removing the account.
func (h *Handlers) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			h.rejectAuth(w, "missing_token", http.StatusUnauthorized, "Please login to access this resource")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			h.rejectAuth(w, "missing_token", http.StatusUnauthorized, "Please login to access this resource")
			return
		}

		userID, _, err := h.tokens.Verify(parts[1])
		if err != nil {
			h.rejectAuth(w, "invalid_token", http.StatusUnauthorized, "Invalid token or session expired")
			return
		}

		user, err := h.store.UserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				h.rejectAuth(w, "invalid_token", http.StatusUnauthorized, "User not found or invalid token")
				return
			}
			h.respondInternal(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next(w, r.WithContext(ctx))
	}
}

// require gates a handler on a role capability. It must compose after
// authenticate, which puts the resolved user into the context.
func (h *Handlers) require(action auth.Action, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil || !auth.Allowed(user.Role, action) {
			h.rejectAuth(w, "forbidden", http.StatusForbidden, "Access denied. Admin role required.")
			return
		}
		next(w, r)
	}
}

// rejectAuth counts and emits an authentication or authorization failure.
func (h *Handlers) rejectAuth(w http.ResponseWriter, reason string, status int, message string) {
	if h.metrics != nil {
		h.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
	h.respondError(w, status, message)
}
