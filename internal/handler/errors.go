package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/northwind/salesportal/internal/render"
	"github.com/northwind/salesportal/internal/repository"
	"github.com/northwind/salesportal/internal/service"
)

const maxBodyBytes = 1 << 20

// errorStatuses is checked in order; the first sentinel err wraps wins.
var errorStatuses = []struct {
	target error
	status int
}{
	{service.ErrInvalidInput, http.StatusBadRequest},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrMissingToken, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrTokenExpired, http.StatusUnauthorized},
	{service.ErrTokenRevoked, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrBlobMissing, http.StatusConflict},

	{repository.ErrContentNotFound, http.StatusNotFound},
	{repository.ErrContentExists, http.StatusConflict},
	{repository.ErrVersionConflict, http.StatusConflict},

	{context.DeadlineExceeded, http.StatusGatewayTimeout},
}

// classify maps err to a status and a message that is safe to return.
func classify(err error) (int, string) {
	var inputErr *service.InputError
	if errors.As(err, &inputErr) {
		return http.StatusBadRequest, inputErr.Message
	}

	for _, e := range errorStatuses {
		if errors.Is(err, e.target) {
			if e.status == http.StatusGatewayTimeout {
				return e.status, "request timed out"
			}
			return e.status, e.target.Error()
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

// writeError renders err and returns the status it was mapped to. Server-side
// failures are logged with the underlying error; the caller only sees a
// generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) int {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
	}
	render.Error(w, status, message)
	return status
}

func badRequest(message string) error {
	return &service.InputError{Message: message}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return badRequest("request body is required")
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return badRequest("request body is too large")
	}
	if err != nil {
		return badRequest("request body must be valid JSON")
	}
	return nil
}
