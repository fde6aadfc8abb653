package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medilens/patient-portal/internal/session"
	"github.com/medilens/patient-portal/internal/users"
	"github.com/medilens/patient-portal/pkg/logging"
)

// AuthHandler covers login, registration, and logout against the user
// directory.
type AuthHandler struct {
	users    *users.Store
	sessions *session.Manager
	logger   *logging.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(store *users.Store, sessions *session.Manager, logger *logging.Logger) *AuthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthHandler{users: store, sessions: sessions, logger: logger.Component("http.auth")}
}

type loginRequest struct {
	Email string `json:"email"`
}

type loginResponse struct {
	User  *users.User `json:"user"`
	Token string      `json:"token"`
}

// Login authenticates by email and returns the signed session token.
// Route: POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	u, token, err := h.users.Login(r.Context(), req.Email)
	if errors.Is(err, users.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "no account found for this email")
		return
	}
	if err != nil {
		h.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{User: u, Token: token})
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Register creates a patient account.
// Route: POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	u, err := h.users.Register(r.Context(), req.Name, req.Email)
	if errors.Is(err, users.ErrExists) {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		h.logger.Error("registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// Logout discards the visitor's correlation token so the next request
// mints a fresh one.
// Route: POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
