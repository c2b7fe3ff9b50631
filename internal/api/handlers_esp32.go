package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"labsys.dev/lab-control/internal/store"
)

// sensorReadingRequest uses pointers so missing fields are distinguishable
// from zero values.
type sensorReadingRequest struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	LightLevel  *int     `json:"lightLevel"`
	FlameStatus *int     `json:"flameStatus"`
}

// handleIngestSensorReading serves POST /esp32/sensors: the device pushes
// one reading, destructively replacing whatever was stored before.
func (h *Handlers) handleIngestSensorReading(w http.ResponseWriter, r *http.Request) {
	var req sensorReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if req.Temperature == nil || req.Humidity == nil || req.LightLevel == nil || req.FlameStatus == nil {
		h.respondError(w, http.StatusBadRequest, "Temperature, humidity, lightLevel and flameStatus are required")
		return
	}

	if *req.Temperature < -50 || *req.Temperature > 100 {
		h.respondError(w, http.StatusBadRequest, "Temperature must be between -50 and 100")
		return
	}
	if *req.Humidity < 0 || *req.Humidity > 100 {
		h.respondError(w, http.StatusBadRequest, "Humidity must be between 0 and 100")
		return
	}
	if *req.LightLevel != store.LightNight && *req.LightLevel != store.LightDay {
		h.respondError(w, http.StatusBadRequest, "Light level must be 0 or 1")
		return
	}
	if *req.FlameStatus != store.FlameNone && *req.FlameStatus != store.FlameDetected {
		h.respondError(w, http.StatusBadRequest, "Flame status must be 0 or 1")
		return
	}

	reading := &store.SensorReading{
		Temperature: *req.Temperature,
		Humidity:    *req.Humidity,
		LightLevel:  *req.LightLevel,
		FlameStatus: *req.FlameStatus,
	}

	if err := h.store.ReplaceSensorReading(r.Context(), reading); err != nil {
		h.respondInternal(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.SensorReadingsStored.Inc()
	}

	h.respondData(w, http.StatusOK, "Sensor data received successfully", reading)
}

// handleCurrentSensorReading serves GET /esp32/sensors/current. An empty
// store is a 404 empty-state signal, not a malformed request.
func (h *Handlers) handleCurrentSensorReading(w http.ResponseWriter, r *http.Request) {
	reading, err := h.store.CurrentSensorReading(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "No sensor data available")
			return
		}
		h.respondInternal(w, r, err)
		return
	}

	h.respondData(w, http.StatusOK, "", reading)
}

// handleSensorHistory serves GET /esp32/sensors/history?limit=10. With the
// replace-only store this returns at most one reading in steady state.
func (h *Handlers) handleSensorHistory(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.respondError(w, http.StatusBadRequest, "Limit must be a positive integer")
			return
		}
		limit = parsed
	}

	readings, err := h.store.SensorHistory(r.Context(), limit)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	h.respondData(w, http.StatusOK, "", readings)
}

// relayProjection is the four-channel view the device polls; timestamps and
// keys stay server-side.
type relayProjection struct {
	Relay1 bool `json:"relay1"`
	Relay2 bool `json:"relay2"`
	Relay3 bool `json:"relay3"`
	Relay4 bool `json:"relay4"`
}

// handleRelayCommands serves GET /esp32/relays, the device's poll target for
// desired relay output. The all-off default is materialized on first read.
func (h *Handlers) handleRelayCommands(w http.ResponseWriter, r *http.Request) {
	state, err := h.store.RelayState(r.Context())
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RelayCommandsServed.Inc()
	}

	h.respondData(w, http.StatusOK, "", relayProjection{
		Relay1: state.Relay1,
		Relay2: state.Relay2,
		Relay3: state.Relay3,
		Relay4: state.Relay4,
	})
}

// handleDevicePrayerTimes serves GET /esp32/prayer-times, ordered by
// (hour, minute) so the device can walk the day's windows in sequence.
func (h *Handlers) handleDevicePrayerTimes(w http.ResponseWriter, r *http.Request) {
	prayerTimes, err := h.store.PrayerTimes(r.Context())
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	h.respondData(w, http.StatusOK, "", prayerTimes)
}

// handleDeviceWorkingHours serves GET /esp32/working-hours.
func (h *Handlers) handleDeviceWorkingHours(w http.ResponseWriter, r *http.Request) {
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
