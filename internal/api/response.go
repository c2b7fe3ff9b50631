// Package api provides the REST control plane: the unauthenticated device
// ingress consumed by the ESP32 and the authenticated management API
// consumed by the admin portal.
package api

import (
	"encoding/json"
	"net/http"
)

// Response is the uniform JSON envelope every endpoint emits. Errors carry
// a flat message; there is no per-field error array.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// writeJSON writes an envelope with the given status code.
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// respondData writes a success envelope with a payload.
func (h *Handlers) respondData(w http.ResponseWriter, status int, message string, data any) {
	h.writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// respondError writes a failure envelope with a flat message.
func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, Response{Success: false, Message: message})
}

// respondInternal logs an unexpected store failure and emits a generic 500.
func (h *Handlers) respondInternal(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("internal error",
		"request_id", GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	h.respondError(w, http.StatusInternalServerError, "Internal server error")
}
