package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"labsys.dev/lab-control/internal/auth"
	"labsys.dev/lab-control/internal/store"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse pairs the issued token with a safe user projection.
type loginResponse struct {
	User  *store.User `json:"user"`
	Token string      `json:"token"`
}

// handleLogin serves POST /auth/login. Unknown email and wrong password are
// indistinguishable to the caller. No role restriction applies here; the
// portal enforces its own admin-only sign-in rule client-side.
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if req.Email == "" || req.Password == "" {
		h.respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.store.UserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.rejectAuth(w, "bad_credentials", http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.respondInternal(w, r, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.rejectAuth(w, "bad_credentials", http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	h.logger.Info("user logged in",
		"request_id", GetRequestID(r.Context()),
		"user_id", user.ID,
		"role", user.Role,
	)

	h.respondData(w, http.StatusOK, "Login successful", loginResponse{User: user, Token: token})
}

type registerRequest struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     store.Role `json:"role"`
}

// validateAccountFields checks the shared create-account constraints.
func (h *Handlers) validateAccountFields(w http.ResponseWriter, req *registerRequest) bool {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		h.respondError(w, http.StatusBadRequest, "Username, email and password are required")
		return false
	}
	if len(req.Password) < 6 {
		h.respondError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return false
	}
	if req.Role != "" && !store.ValidRole(req.Role) {
		h.respondError(w, http.StatusBadRequest, "Invalid role. Must be either 'admin' or 'user'")
		return false
	}
	return true
}

// createAccount persists a new user, mapping uniqueness violations to 409.
func (h *Handlers) createAccount(w http.ResponseWriter, r *http.Request, req *registerRequest, successMessage string) {
	role := req.Role
	if role == "" {
		role = store.RoleUser
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	user := &store.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := h.store.CreateUser(r.Context(), user); err != nil {
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

	h.respondData(w, http.StatusCreated, successMessage, user)
}

// handleRegister serves POST /auth/register. The role field is optional and
// defaults to user.
func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if !h.validateAccountFields(w, &req) {
		return
	}

	h.createAccount(w, r, &req, "User registered successfully")
}
