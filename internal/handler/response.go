// Package handler contains the HTTP handlers. Handlers decode requests,
// delegate to services, and encode responses; all domain decisions live one
// layer down.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/project-phoenix/internal/apperror"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors to HTTP statuses. Anything unrecognized is a
// 500 with a generic message; internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperror.ErrUpstream):
		status = http.StatusBadGateway
	}

	if status != http.StatusInternalServerError {
		message = err.Error()
	} else {
		slog.Error("unhandled error", "error", err)
	}

	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON reads the request body into v. Malformed JSON becomes a
// validation error so clients see a 400, not a 500.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return apperror.ValidationFailed("body", "invalid request body")
	}
	return nil
}
