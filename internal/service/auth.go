// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// Services take repository interfaces, never *sqlite.DB, so tests can pass
// the gomock doubles from internal/mock. They return apperror values; the
// handler layer decides which HTTP status each one becomes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/sakif/project-studio/internal/apperror"
	"github.com/sakif/project-studio/internal/auth"
	"github.com/sakif/project-studio/internal/model"
	"github.com/sakif/project-studio/internal/repository"
)

// Validation limits for registration input.
const (
	MaxUsernameLength = 50
	MaxEmailLength    = 254
	MinPasswordLength = 8
)

// timingPassword is hashed once per AuthService. Login checks the submitted
// password against that hash when there is no real hash to check, so every
// rejected login pays one bcrypt comparison.
const timingPassword = "project-studio-timing-equalizer"

// PasswordHasher hashes and compares passwords. *auth.PasswordService
// satisfies it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(hash, password string) bool
}

// noreplyDomain receives the synthetic address of GitHub users who keep
// their email private.
const noreplyDomain = "users.noreply.github.com"

// AuthService handles registration, password login and GitHub sign-in.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - tokens     *auth.TokenService         → issue JWTs
//   - passwords  PasswordHasher             → bcrypt hashing
//   - logger     *slog.Logger               → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords PasswordHasher
	logger    *slog.Logger

	// dummyHash is compared on login paths that have no stored hash.
	dummyHash string
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords PasswordHasher,
	logger *slog.Logger,
) *AuthService {
	dummy, err := passwords.Hash(timingPassword)
	if err != nil {
		logger.Warn("hashing login timing password failed", slog.String("error", err.Error()))
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
		dummyHash: dummy,
	}
}

// AuthResult bundles the signed-in user and the issued bearer token.
type AuthResult struct {
	User  *model.User
	Token string
}

// rejectWithoutHash spends the same bcrypt work as a real comparison.
func (s *AuthService) rejectWithoutHash(password string) {
	if s.dummyHash == "" {
		return
	}
	_ = s.passwords.Matches(s.dummyHash, password)
}

// Register validates the input, hashes the password and stores a new user.
//
// The email is lowercased before it is stored. There is no existence check
// before the insert: the store's unique index decides, and a duplicate comes
// back as apperror.ErrConflict.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies email and password and issues a token.
//
// Every credential failure (unknown email, wrong password, GitHub-only
// account) returns the same apperror.InvalidCredentials after exactly one
// bcrypt comparison, so response time does not tell registered emails apart.
// Store failures are returned as-is and end up as 500s.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		s.rejectWithoutHash(password)
		return nil, apperror.InvalidCredentials()
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.rejectWithoutHash(password)
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if user.PasswordHash == "" {
		s.rejectWithoutHash(password)
		s.logger.Info("login rejected", slog.String("userID", user.ID))
		return nil, apperror.InvalidCredentials()
	}
	if !s.passwords.Matches(user.PasswordHash, password) {
		s.logger.Info("login rejected", slog.String("userID", user.ID))
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// LoginWithGitHub signs in the account linked to ghUser, creating it on the
// first visit, and issues a token.
//
// Accounts are matched on the GitHub ID, never on email. If the GitHub email
// already belongs to a password account the result is apperror.ErrConflict:
// linking the two would let whoever controls the GitHub account take over the
// password account.
func (s *AuthService) LoginWithGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, errors.New("service/auth: GitHub user must not be nil")
	}

	user, err := s.users.GetUserByGitHubID(ctx, ghUser.ID)
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrNotFound):
		user, err = s.createGitHubUser(ctx, ghUser)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("service/auth: looking up GitHub user %d: %w", ghUser.ID, err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", ghUser.Login),
	)

	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) createGitHubUser(ctx context.Context, ghUser *auth.GitHubUser) (*model.User, error) {
	email := normalizeEmail(ghUser.Email)
	if email == "" {
		email = strings.ToLower(ghUser.Login) + "@" + noreplyDomain
	}

	username := ghUser.Login
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		username = string([]rune(username)[:MaxUsernameLength])
	}

	githubID := ghUser.ID
	user := &model.User{
		Username: username,
		Email:    email,
		GitHubID: &githubID,
	}

	err := s.users.CreateUser(ctx, user)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrConflict) {
		return nil, fmt.Errorf("service/auth: creating GitHub user %d: %w", ghUser.ID, err)
	}

	// Either a concurrent callback for the same GitHub account won the
	// insert, or the email belongs to someone else.
	existing, lookupErr := s.users.GetUserByGitHubID(ctx, ghUser.ID)
	if lookupErr == nil {
		return existing, nil
	}
	return nil, err
}

// GetUserByID returns the user for the given internal ID.
//
// Used by GET /api/users/me after RequireBearer has put the token subject in
// the request context.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.Unauthenticated("user ID must not be empty")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}

	return user, nil
}

func validateRegistration(username, email, password string) error {
	if username == "" {
		return apperror.ValidationFailed("username", "username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or fewer", MaxUsernameLength))
	}

	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if len(email) > MaxEmailLength || !validEmail(email) {
		return apperror.ValidationFailed("email", "email is not a valid address")
	}

	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > auth.MaxPasswordBytes {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", auth.MaxPasswordBytes))
	}

	return nil
}

// validEmail accepts a bare address only: "Alice <a@b.c>" parses but is
// rejected because the parsed address differs from the input.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
