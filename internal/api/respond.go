package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Arthurk12/racha-ai/internal/auth"
	"github.com/Arthurk12/racha-ai/internal/service"
	"github.com/Arthurk12/racha-ai/internal/storage"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error body with the given status.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps a service or storage error to an HTTP status and writes it.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNameTaken),
		errors.Is(err, service.ErrNothingToSettle):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, auth.ErrWeakPIN):
		status = http.StatusBadRequest
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Don't leak internals to clients; the logging middleware has the rest.
		msg = "internal server error"
	}
	writeJSONError(w, status, msg)
}

// decodeJSON parses the request body into v. Unknown fields are rejected so
// typos in field names fail loudly instead of silently zeroing values.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return service.ErrInvalidInput
	}
	return nil
}
