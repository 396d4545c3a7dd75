package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/service"
)

// AuthHandler serves /auth: signup, signin and the current account.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// HandleSignup registers an account.
//
// HTTP: POST /auth/signup
// REQUEST BODY: {"email": "a@x.com", "name": "Ana", "password": "..."}
// RESPONSE: 201 {"access_token": "...", "token_type": "bearer", "expires_in": 1800}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in model.SignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.auth.Signup(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// HandleSignin exchanges email and password for a token.
//
// HTTP: POST /auth/signin
// RESPONSE: 200 with the same body as signup; 401 for any bad credential.
func (h *AuthHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var in model.SigninInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.auth.Signin(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleMe returns the authenticated user.
//
// HTTP: GET /auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDeleteMe deletes the account and everything it owns.
//
// HTTP: DELETE /auth/me
func (h *AuthHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.auth.DeleteAccount(r.Context(), user.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
