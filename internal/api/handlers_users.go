package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"labsys.dev/lab-control/internal/auth"
	"labsys.dev/lab-control/internal/store"
)

// handleListUsers serves GET /users (admin). Password hashes never leave the
// store layer thanks to the json:"-" tag.
func (h *Handlers) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.Users(r.Context())
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	h.respondData(w, http.StatusOK, "", users)
}

// handleCreateUser serves POST /users (admin). Same shape as registration,
// different success message.
func (h *Handlers) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if !h.validateAccountFields(w, &req) {
		return
	}

	h.createAccount(w, r, &req, "User created successfully")
}

// handleGetUser serves GET /users/{id} (admin).
func (h *Handlers) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIDParam(w, r, "User not found")
	if !ok {
		return
	}

	user, err := h.store.UserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.respondInternal(w, r, err)
		return
	}

	h.respondData(w, http.StatusOK, "", user)
}

type updateUserRequest struct {
	Username *string     `json:"username"`
	Email    *string     `json:"email"`
	Password *string     `json:"password"`
	Role     *store.Role `json:"role"`
}

// handleUpdateUser serves PUT /users/{id} (admin). Absent fields keep their
// stored values. Admins cannot change their own role, which keeps at least
// one admin reachable through the API itself.
func (h *Handlers) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIDParam(w, r, "User not found")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if req.Role != nil && !store.ValidRole(*req.Role) {
		h.respondError(w, http.StatusBadRequest, "Invalid role. Must be either 'admin' or 'user'")
		return
	}

	caller := UserFromContext(r.Context())
	if req.Role != nil && caller != nil && caller.ID == id && *req.Role != caller.Role {
		h.respondError(w, http.StatusBadRequest, "Cannot change your own role")
		return
	}

	user, err := h.store.UserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.respondInternal(w, r, err)
		return
	}

	if req.Username != nil && *req.Username != "" {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil && *req.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < 6 {
			h.respondError(w, http.StatusBadRequest, "Password must be at least 6 characters")
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			h.respondInternal(w, r, err)
			return
		}
		user.PasswordHash = hash
	}

	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			h.respondError(w, http.StatusConflict, "Email already registered")
		case errors.Is(err, store.ErrUsernameTaken):
			h.respondError(w, http.StatusConflict, "Username already taken")
		default:
			h.respondInternal(w, r, err)
		}
		return
	}

	h.respondData(w, http.StatusOK, "User updated successfully", user)
}

// handleDeleteUser serves DELETE /users/{id} (admin). Self-deletion is
// rejected for the same lockout reason as self role changes.
func (h *Handlers) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseIDParam(w, r, "User not found")
	if !ok {
		return
	}

	caller := UserFromContext(r.Context())
	if caller != nil && caller.ID == id {
		h.respondError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.respondInternal(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{Success: true, Message: "User deleted successfully"})
}
