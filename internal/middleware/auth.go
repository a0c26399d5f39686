package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/northwind/salesportal/internal/ctxkeys"
	"github.com/northwind/salesportal/internal/model"
	"github.com/northwind/salesportal/internal/render"
	"github.com/northwind/salesportal/internal/service"
)

// TokenVerifier turns a bearer token into a principal.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*model.Principal, error)
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// puts the verified principal into the request context.
func RequireAuth(verifier TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal, err := verifier.VerifyToken(r.Context(), bearerToken(r))
			if err != nil {
				unauthorized(w, r, err)
				return
			}

			ctx := ctxkeys.WithPrincipal(r.Context(), principal)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(role model.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal := ctxkeys.Principal(r.Context())
			if principal == nil {
				render.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !principal.Role.Satisfies(role) {
				render.Error(w, http.StatusForbidden, "this action requires the "+role.String()+" role")
				return
			}
			next(w, r)
		}
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	var message string
	switch {
	case errors.Is(err, service.ErrMissingToken):
		message = "authentication required"
	case errors.Is(err, service.ErrTokenExpired):
		message = "session expired"
	case errors.Is(err, service.ErrTokenRevoked), errors.Is(err, service.ErrInvalidToken):
		message = "invalid session"
	default:
		slog.Error("token verification failed", "error", err, "path", r.URL.Path)
		render.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("WWW-Authenticate", `Bearer realm="salesportal"`)
	render.Error(w, http.StatusUnauthorized, message)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
