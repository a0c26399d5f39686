package handler

import (
	"net/http"

	"github.com/northwind/salesportal/internal/ctxkeys"
	"github.com/northwind/salesportal/internal/metrics"
	"github.com/northwind/salesportal/internal/model"
	"github.com/northwind/salesportal/internal/render"
	"github.com/northwind/salesportal/internal/service"
)

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{
		authService: authService,
	}
}

type loginRequest struct {
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login exchanges a role password for a session token.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		status := writeError(w, r, err)
		metrics.LoginAttempts.WithLabelValues("unknown", metrics.Outcome(status)).Inc()
		return
	}

	roleLabel := "unknown"
	if role, ok := model.ParseRole(req.Role); ok {
		roleLabel = role.String()
	}

	session, err := h.authService.Login(r.Context(), req.Password, req.Role)
	if err != nil {
		status := writeError(w, r, err)
		metrics.LoginAttempts.WithLabelValues(roleLabel, metrics.Outcome(status)).Inc()
		return
	}

	metrics.LoginAttempts.WithLabelValues(roleLabel, "ok").Inc()
	render.JSON(w, http.StatusOK, session)
}

// Revoke ends the caller's own session before it expires.
func (h *authHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	principal := ctxkeys.Principal(r.Context())
	if principal == nil {
		writeError(w, r, service.ErrMissingToken)
		return
	}

	err := h.authService.Revoke(r.Context(), principal)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Success(w, http.StatusOK)
}
