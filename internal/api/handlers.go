package api

import (
	"errors"
	"log/slog"
	"net/http"

	"labsys.dev/lab-control/internal/auth"
	"labsys.dev/lab-control/internal/store"
	"labsys.dev/lab-control/pkg/metrics"
)

// Handlers carries the dependencies shared by all endpoint handlers.
type Handlers struct {
	logger  *slog.Logger
	store   *store.Store
	tokens  *auth.TokenManager
	metrics *metrics.APIMetrics // Optional metrics
}

// NewHandlers creates the handler set for the API.
func NewHandlers(logger *slog.Logger, st *store.Store, tokens *auth.TokenManager, m *metrics.APIMetrics) (*Handlers, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if st == nil {
		return nil, errors.New("store cannot be nil")
	}

	if tokens == nil {
		return nil, errors.New("token manager cannot be nil")
	}

	return &Handlers{
		logger:  logger,
		store:   st,
		tokens:  tokens,
		metrics: m,
	}, nil
}

// Router builds the full route table with the shared middleware applied.
func (h *Handlers) Router() http.Handler {
	mux := http.NewServeMux()

	// Health check and metrics
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	// Auth (public)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("POST /auth/register", h.handleRegister)

	// User administration (admin only)
	mux.HandleFunc("GET /users", h.authenticate(h.require(auth.ActionManageUsers, h.handleListUsers)))
	mux.HandleFunc("POST /users", h.authenticate(h.require(auth.ActionManageUsers, h.handleCreateUser)))
	mux.HandleFunc("GET /users/{id}", h.authenticate(h.require(auth.ActionManageUsers, h.handleGetUser)))
	mux.HandleFunc("PUT /users/{id}", h.authenticate(h.require(auth.ActionManageUsers, h.handleUpdateUser)))
	mux.HandleFunc("DELETE /users/{id}", h.authenticate(h.require(auth.ActionManageUsers, h.handleDeleteUser)))

	// Device ingress (no authentication; the device network is the trust boundary)
	mux.HandleFunc("POST /esp32/sensors", h.handleIngestSensorReading)
	mux.HandleFunc("GET /esp32/sensors/current", h.handleCurrentSensorReading)
	mux.HandleFunc("GET /esp32/sensors/history", h.handleSensorHistory)
	mux.HandleFunc("GET /esp32/relays", h.handleRelayCommands)
	mux.HandleFunc("GET /esp32/prayer-times", h.handleDevicePrayerTimes)
	mux.HandleFunc("GET /esp32/working-hours", h.handleDeviceWorkingHours)

	// Management (authenticated; schedule and working-hours writes admin only)
	mux.HandleFunc("GET /management/relays", h.authenticate(h.handleGetRelayStates))
	mux.HandleFunc("PUT /management/relays", h.authenticate(h.handleUpdateRelayStates))
	mux.HandleFunc("POST /management/relays/toggle/{relayId}", h.authenticate(h.handleToggleRelay))
	mux.HandleFunc("POST /management/relays/all-on", h.authenticate(h.handleSetAllRelays))
	mux.HandleFunc("POST /management/relays/all-off", h.authenticate(h.handleSetAllRelays))
	mux.HandleFunc("GET /management/prayer-times", h.authenticate(h.handleListPrayerTimes))
	mux.HandleFunc("POST /management/prayer-times", h.authenticate(h.require(auth.ActionManageSchedules, h.handleCreatePrayerTime)))
	mux.HandleFunc("GET /management/prayer-times/{id}", h.authenticate(h.handleGetPrayerTime))
	mux.HandleFunc("PUT /management/prayer-times/{id}", h.authenticate(h.require(auth.ActionManageSchedules, h.handleUpdatePrayerTime)))
	mux.HandleFunc("DELETE /management/prayer-times/{id}", h.authenticate(h.require(auth.ActionManageSchedules, h.handleDeletePrayerTime)))
	mux.HandleFunc("GET /management/working-hours", h.authenticate(h.handleGetWorkingHours))
	mux.HandleFunc("PUT /management/working-hours", h.authenticate(h.require(auth.ActionManageWorkingHours, h.handleUpsertWorkingHours)))

	return h.requestID(h.cors(h.instrument(mux)))
}

// handleHealth serves the liveness endpoint.
func (h *Handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
		h.logger.Error("failed to write health response", "error", err)
	}
}
