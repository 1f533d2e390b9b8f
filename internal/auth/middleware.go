package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/sakif/project-studio/internal/middleware"
)

// contextKey is an unexported type used for context keys in this package.
//
// Only this package can create a key of type contextKey, so only this
// package can read or write userID values in the context.
type contextKey string

const userIDKey contextKey = "userID"

// TokenValidator is the part of TokenService the gate needs.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// RequireBearer is a middleware that enforces authentication on protected routes.
//
// It reads the token from "Authorization: Bearer <token>", validates it and
// stores the userID in the request context and on the request log line.
// Outcomes:
//
//	no header / not a bearer credential → 401 Unauthorized
//	token present but invalid           → 403 Forbidden  ("forbidden")
//	token present but expired           → 403 Forbidden  ("token_expired")
//
// Handlers behind this middleware read the acting identity with
// UserIDFromContext; they never trust an owner field from the body.
func RequireBearer(tokens TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := jwtauth.TokenFromHeader(r)
			if raw == "" {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "authorization token required")
				return
			}

			userID, err := tokens.Validate(raw)
			if err != nil {
				logger.Debug("bearer token rejected",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				if errors.Is(err, ErrTokenExpired) {
					writeAuthError(w, http.StatusForbidden, "token_expired", "token expired")
					return
				}
				writeAuthError(w, http.StatusForbidden, "forbidden", "invalid token")
				return
			}

			middleware.SetUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying userID. Exported for tests of
// handlers that sit behind RequireBearer.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's ID from the request context.
//
// Returns ("", false) if the request is anonymous (no valid token was present).
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// writeAuthError writes the same {"error","message"} shape the handler
// package uses, without importing it.
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
