package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/project-studio/internal/auth"
	"github.com/sakif/project-studio/internal/model"
	"github.com/sakif/project-studio/internal/service"
)

// stateCookie holds the OAuth state between the GitHub redirect and callback.
const stateCookie = "oauth_state"

// AccountService is the part of service.AuthService the handlers call.
type AccountService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	LoginWithGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*service.AuthResult, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// GitHubAuthenticator is implemented by *auth.GitHubProvider.
type GitHubAuthenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// AuthHandler serves registration, password login, the current-user profile
// and the GitHub sign-in flow.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister       → POST /api/users/register
//   - HandleLogin          → POST /api/users/login
//   - HandleMe             → GET  /api/users/me (behind RequireBearer)
//   - HandleGitHubLogin    → GET  /api/auth/github/login
//   - HandleGitHubCallback → GET  /api/auth/github/callback
type AuthHandler struct {
	accounts AccountService
	github   GitHubAuthenticator
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil when GitHub
// sign-in is not configured; the server then does not mount those routes.
func NewAuthHandler(accounts AccountService, github GitHubAuthenticator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		github:   github,
		logger:   logger,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse is returned by both password and GitHub sign-in.
type tokenResponse struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

type meResponse struct {
	User model.PublicUser `json:"user"`
}

// HandleRegister creates an account.
//
// HTTP: POST /api/users/register
// REQUEST BODY: {"username": "alice", "email": "alice@example.com", "password": "secret123"}
// RESPONSES: 201 created, 400 invalid input, 409 email already registered.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		User:    user.Public(),
	})
}

// HandleLogin verifies credentials and returns a bearer token.
//
// HTTP: POST /api/users/login
// REQUEST BODY: {"email": "alice@example.com", "password": "secret123"}
// RESPONSES: 200 {token, user}, 400 invalid credentials.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newTokenResponse(result))
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /api/users/me
// Auth: Required (RequireBearer sets the userID in context)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.accounts.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: user.Public()})
}

// HandleGitHubLogin redirects the browser to GitHub's authorization page.
//
// HTTP: GET /api/auth/github/login
//
// CSRF PROTECTION VIA STATE:
// A random state value goes into a short-lived HttpOnly cookie and into the
// authorization URL. HandleGitHubCallback only proceeds when GitHub echoes
// the same value back.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes GitHub sign-in and returns a bearer token.
//
// HTTP: GET /api/auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check); the cookie is single-use
//  2. Exchange the code for a GitHub profile
//  3. Find or create the linked account and issue a token
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || query.Get("state") != cookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_state",
			Message: "invalid OAuth state",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   stateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// The user may have declined on GitHub's consent page.
	if errParam := query.Get("error"); errParam != "" {
		h.logger.Info("auth callback: authorization denied", slog.String("error", errParam))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "access_denied",
			Message: "GitHub authorization was denied",
		})
		return
	}

	code := query.Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "missing OAuth code",
		})
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "authentication failed",
		})
		return
	}

	result, err := h.accounts.LoginWithGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newTokenResponse(result))
}

// newTokenResponse omits the email: sign-in responses carry only the ID and
// username.
func newTokenResponse(result *service.AuthResult) tokenResponse {
	return tokenResponse{
		Token: result.Token,
		User: model.PublicUser{
			UserID:   result.User.ID,
			Username: result.User.Username,
		},
	}
}
