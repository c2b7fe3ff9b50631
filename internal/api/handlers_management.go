package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"labsys.dev/lab-control/internal/store"
)

// handleGetRelayStates serves GET /management/relays with the same lazy
// default materialization as the device poll endpoint.
func (h *Handlers) handleGetRelayStates(w http.ResponseWriter, r *http.Request) {
	state, err := h.store.RelayState(r.Context())
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	h.respondData(w, http.StatusOK, "", state)
}

type updateRelaysRequest struct {
	Relay1 *bool `json:"relay1"`
	Relay2 *bool `json:"relay2"`
	Relay3 *bool `json:"relay3"`
	Relay4 *bool `json:"relay4"`
}

// handleUpdateRelayStates serves PUT /management/relays: a full replace that
// requires all four channels.
func (h *Handlers) handleUpdateRelayStates(w http.ResponseWriter, r *http.Request) {
	var req updateRelaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if req.Relay1 == nil || req.Relay2 == nil || req.Relay3 == nil || req.Relay4 == nil {
		h.respondError(w, http.StatusBadRequest, "All relay states are required")
		return
	}

	state, err := h.store.UpdateRelayState(r.Context(), *req.Relay1, *req.Relay2, *req.Relay3, *req.Relay4)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	h.respondData(w, http.StatusOK, "Relay states updated successfully", state)
}

// handleToggleRelay serves POST /management/relays/toggle/{relayId}: flips
// exactly the addressed channel and refreshes the timestamp.
func (h *Handlers) handleToggleRelay(w http.ResponseWriter, r *http.Request) {
	relayID, err := strconv.Atoi(r.PathValue("relayId"))
	if err != nil || relayID < 1 || relayID > 4 {
		h.respondError(w, http.StatusBadRequest, "Relay ID must be between 1 and 4")
		return
	}

	state, err := h.store.ToggleRelay(r.Context(), relayID)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RelayToggles.WithLabelValues(strconv.Itoa(relayID)).Inc()
	}

	h.respondData(w, http.StatusOK, fmt.Sprintf("Relay %d toggled successfully", relayID), state)
}

// handleSetAllRelays serves POST /management/relays/all-on and /all-off.
// The desired state is derived from the path, not the body.
func (h *Handlers) handleSetAllRelays(w http.ResponseWriter, r *http.Request) {
	isOn := strings.HasSuffix(r.URL.Path, "all-on")

	state, err := h.store.SetAllRelays(r.Context(), isOn)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	label := "OFF"
	if isOn {
		label = "ON"
	}
	h.respondData(w, http.StatusOK, fmt.Sprintf("All relays turned %s successfully", label), state)
}

// handleListPrayerTimes serves GET /management/prayer-times.
func (h *Handlers) handleListPrayerTimes(w http.ResponseWriter, r *http.Request) {
	prayerTimes, err := h.store.PrayerTimes(r.Context())
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	h.respondData(w, http.StatusOK, "", prayerTimes)
}

type prayerTimeRequest struct {
	Name     *string `json:"name"`
	Hour     *int    `json:"hour"`
	Minute   *int    `json:"minute"`
	Duration *int    `json:"duration"`
}

// validatePrayerFields range-checks the fields that are present.
func (h *Handlers) validatePrayerFields(w http.ResponseWriter, req *prayerTimeRequest) bool {
	if req.Hour != nil && (*req.Hour < 0 || *req.Hour > 23) {
		h.respondError(w, http.StatusBadRequest, "Hour must be between 0 and 23")
		return false
	}
	if req.Minute != nil && (*req.Minute < 0 || *req.Minute > 59) {
		h.respondError(w, http.StatusBadRequest, "Minute must be between 0 and 59")
		return false
	}
	if req.Duration != nil && (*req.Duration < 1 || *req.Duration > 120) {
		h.respondError(w, http.StatusBadRequest, "Duration must be between 1 and 120 minutes")
		return false
	}
	return true
}

// handleCreatePrayerTime serves POST /management/prayer-times (admin).
func (h *Handlers) handleCreatePrayerTime(w http.ResponseWriter, r *http.Request) {
	var req prayerTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if req.Name == nil || *req.Name == "" || req.Hour == nil || req.Minute == nil || req.Duration == nil {
		h.respondError(w, http.StatusBadRequest, "Name, hour, minute, and duration are required")
		return
	}
	if !h.validatePrayerFields(w, &req) {
		return
	}

	prayerTime := &store.PrayerTime{
		Name:     strings.TrimSpace(*req.Name),
		Hour:     *req.Hour,
		Minute:   *req.Minute,
		Duration: *req.Duration,
	}

	if err := h.store.CreatePrayerTime(r.Context(), prayerTime); err != nil {
		switch {
		case errors.Is(err, store.ErrPrayerTimeLimit):
			h.respondError(w, http.StatusBadRequest, "Cannot create more than 5 prayer times")
		case errors.Is(err, store.ErrDuplicateName):
			h.respondError(w, http.StatusConflict, "Prayer time with this name already exists")
		default:
			h.respondInternal(w, r, err)
		}
		return
	}

	h.respondData(w, http.StatusCreated, "Prayer time created successfully", prayerTime)
}

// parseIDParam reads the {id} path value; a non-numeric id behaves like a
// missing record.
func (h *Handlers) parseIDParam(w http.ResponseWriter, r *http.Request, notFoundMessage string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusNotFound, notFoundMessage)
		return 0, false
	}
	return uint(id), true
}

// handleGetPrayerTime serves GET /management/prayer-times/{id}.
func (h *Handlers) handleGetPrayerTime(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIDParam(w, r, "Prayer time not found")
	if !ok {
		return
	}

	prayerTime, err := h.store.PrayerTimeByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Prayer time not found")
			return
		}
		h.respondInternal(w, r, err)
		return
	}

	h.respondData(w, http.StatusOK, "", prayerTime)
}

// handleUpdatePrayerTime serves PUT /management/prayer-times/{id} (admin).
// Absent fields keep their stored values.
func (h *Handlers) handleUpdatePrayerTime(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIDParam(w, r, "Prayer time not found")
	if !ok {
		return
	}

	var req prayerTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if !h.validatePrayerFields(w, &req) {
		return
	}

	prayerTime, err := h.store.PrayerTimeByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Prayer time not found")
			return
		}
		h.respondInternal(w, r, err)
		return
	}

	if req.Name != nil && *req.Name != "" {
		prayerTime.Name = strings.TrimSpace(*req.Name)
	}
	if req.Hour != nil {
		prayerTime.Hour = *req.Hour
	}
	if req.Minute != nil {
		prayerTime.Minute = *req.Minute
	}
	if req.Duration != nil {
		prayerTime.Duration = *req.Duration
	}

	if err := h.store.UpdatePrayerTime(r.Context(), prayerTime); err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			h.respondError(w, http.StatusConflict, "Prayer time with this name already exists")
			return
		}
		h.respondInternal(w, r, err)
		return
	}

	h.respondData(w, http.StatusOK, "Prayer time updated successfully", prayerTime)
}

// handleDeletePrayerTime serves DELETE /management/prayer-times/{id} (admin).
func (h *Handlers) handleDeletePrayerTime(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIDParam(w, r, "Prayer time not found")
	if !ok {
		return
	}

	if err := h.store.DeletePrayerTime(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Prayer time not found")
			return
		}
		h.respondInternal(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: true, Message: "Prayer time deleted successfully"})
}

// handleGetWorkingHours serves GET /management/working-hours.
func (h *Handlers) handleGetWorkingHours(w http.ResponseWriter, r *http.Request) {
	hours, err := h.store.WorkingHours(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Working hours not configured")
			return
		}
		h.respondInternal(w, r, err)
		return
	}

	h.respondData(w, http.StatusOK, "", hours)
}

type workingHoursRequest struct {
	Name        *string `json:"name"`
	StartHour   *int    `json:"startHour"`
	StartMinute *int    `json:"startMinute"`
	EndHour     *int    `json:"endHour"`
	EndMinute   *int    `json:"endMinute"`
	IsActive    *bool   `json:"isActive"`
}

// handleUpsertWorkingHours serves PUT /management/working-hours (admin).
// The record is a singleton with upsert semantics.
func (h *Handlers) handleUpsertWorkingHours(w http.ResponseWriter, r *http.Request) {
	var req workingHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if req.StartHour == nil || req.StartMinute == nil || req.EndHour == nil || req.EndMinute == nil {
		h.respondError(w, http.StatusBadRequest, "Start hour, start minute, end hour and end minute are required")
		return
	}
	if *req.StartHour < 0 || *req.StartHour > 23 || *req.EndHour < 0 || *req.EndHour > 23 {
		h.respondError(w, http.StatusBadRequest, "Hours must be between 0 and 23")
		return
	}
	if *req.StartMinute < 0 || *req.StartMinute > 59 || *req.EndMinute < 0 || *req.EndMinute > 59 {
		h.respondError(w, http.StatusBadRequest, "Minutes must be between 0 and 59")
		return
	}

	hours := &store.WorkingHours{
		Name:        "Working Hours",
		StartHour:   *req.StartHour,
		StartMinute: *req.StartMinute,
		EndHour:     *req.EndHour,
		EndMinute:   *req.EndMinute,
		IsActive:    true,
	}
	if req.Name != nil && *req.Name != "" {
		hours.Name = *req.Name
	}
	if req.IsActive != nil {
		hours.IsActive = *req.IsActive
	}

	if err := h.store.UpsertWorkingHours(r.Context(), hours); err != nil {
		h.respondInternal(w, r, err)
		return
	}

	h.respondData(w, http.StatusOK, "Working hours updated successfully", hours)
}
