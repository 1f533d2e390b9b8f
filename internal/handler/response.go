package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON / writeError so the API has one
// error shape:
//
//	{"error": "conflict", "message": "user already exists: alice@example.com"}
//
// "error" is machine-readable and stable; "message" is for humans. Validation
// failures also carry "field".

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/project-studio/internal/apperror"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "conflict")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Offending input field, for validation errors
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status must be written before the body: once Encode writes,
// later header changes are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorMapping is one row of the sentinel → HTTP table.
type errorMapping struct {
	sentinel error
	status   int
	code     string
}

// errorTable is checked in order with errors.Is.
var errorTable = []errorMapping{
	{apperror.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperror.ErrInvalidCredentials, http.StatusBadRequest, "invalid_credentials"},
	{apperror.ErrBadRequest, http.StatusBadRequest, "bad_request"},
	{apperror.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
	{apperror.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperror.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperror.ErrConflict, http.StatusConflict, "conflict"},
}

// writeError maps a domain error to an HTTP status and sends it.
//
// Services return apperror values (possibly wrapped with fmt.Errorf %w);
// errors.Is walks the chain to find the sentinel and errors.As recovers the
// AppError for its message. Anything without a known sentinel is a 500 with
// a generic body. The raw error is logged and never sent, since it may hold
// SQL or file paths.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		for _, m := range errorTable {
			if !errors.Is(err, m.sentinel) {
				continue
			}
			if appErr.Cause != nil {
				logger.Warn("request failed",
					slog.String("error", m.code),
					slog.String("cause", appErr.Cause.Error()),
				)
			}
			writeJSON(w, m.status, ErrorResponse{
				Error:   m.code,
				Message: appErr.Message,
				Field:   appErr.Field,
			})
			return
		}
	}

	logger.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a single JSON object from the request body into dst.
// A malformed or oversized body is reported as a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.BadRequest("invalid JSON body", err)
	}
	return nil
}
