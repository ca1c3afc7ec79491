package handler

import (
	"log/slog"
	"net/http"

	"github.com/tickbox/tickbox/internal/auth"
	"github.com/tickbox/tickbox/internal/handler/dto"
	"github.com/tickbox/tickbox/internal/middleware"
	"github.com/tickbox/tickbox/internal/service"
)

// UserHandler handles registration, login and session endpoints.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// Register handles POST /users. The new session token is returned in the
// X-Auth header, never in the body.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.svc.Register(r.Context(), req.Credentials())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	w.Header().Set(middleware.TokenHeader, token)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Login handles POST /users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.svc.Login(r.Context(), req.Credentials())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID)

	w.Header().Set(middleware.TokenHeader, token)
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.ToUserResponse(auth.MustSessionFromContext(r.Context()).User))
}

// Logout handles DELETE /users/me/token, revoking only the presented token.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := auth.MustSessionFromContext(r.Context())
	if err := h.svc.Logout(r.Context(), session.User, session.Token); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_logged_out", "user_id", session.User.ID)

	w.WriteHeader(http.StatusOK)
}
