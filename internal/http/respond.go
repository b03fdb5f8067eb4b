package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kakeibo/internal/core"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

// respondError maps domain errors onto HTTP statuses: validation errors
// are the client's fault, a not-found is 404, a store that stayed down
// through its retries is 503, everything else is 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isValidationError(err):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
	case errors.Is(err, core.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found", Details: err.Error()})
	case errors.Is(err, core.ErrUnavailable):
		slog.ErrorContext(r.Context(), "Store unavailable", "error", err, "path", r.URL.Path)
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "storage unavailable", Details: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Details: err.Error()})
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrValidation) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidType) ||
		errors.Is(err, core.ErrInvalidAccountType) ||
		errors.Is(err, core.ErrEmptyCategory) ||
		errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrInsufficientFunds)
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	respondJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

// decodeBody parses a JSON request body into dst, rejecting unknown
// fields so typos surface as 400s instead of silent zero values.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func badRequest(w http.ResponseWriter, details string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request", Details: details})
}
