// Package auth provides credential hashing, bearer-token issuance and
// validation, the HTTP gate for protected routes, and GitHub sign-in.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. Client registers (POST /api/users/register): password stored as a bcrypt hash
//  2. Client logs in (POST /api/users/login): server verifies the hash and issues a JWT
//  3. Client sends "Authorization: Bearer <jwt>" on protected calls
//  4. RequireBearer validates the JWT and puts the userID in the request context
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"userID","iss":"project-studio","iat":...,"exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// The server verifies the signature without any DB lookup, only the secret.
// Tokens are never revoked server-side; the exp claim bounds their lifetime.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret NewTokenService accepts.
const MinSecretLength = 16

var (
	// ErrTokenInvalid covers bad signatures, malformed tokens, wrong issuer or
	// algorithm, and tokens without a subject.
	ErrTokenInvalid = errors.New("auth: invalid token")
	// ErrTokenExpired is returned for a well-formed, correctly signed token
	// whose exp claim is in the past.
	ErrTokenExpired = errors.New("auth: token expired")
)

// TokenConfig is the signing configuration of a TokenService.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret used to sign and verify tokens. The secret is
// injected at construction; nothing in this package reads the environment.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a TokenService from cfg.
// The secret should be at least 32 bytes of random data in production.
// Example: AUTH_JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: JWT secret must be at least %d characters", MinSecretLength)
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("auth: token TTL must be positive")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("auth: token issuer must not be empty")
	}
	return &TokenService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
	}, nil
}

// claims is the JWT payload. We use "sub" (Subject) to store the internal
// user ID.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new access token for userID with the
// configured lifetime.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests (a negative duration yields an already-expired token).
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("auth: user ID must not be empty")
	}

	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the userID stored in
// its "sub" claim.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid
//   - Token carries an exp claim and it is in the future
//   - Issuer matches the configured issuer
//   - Algorithm is HS256 (prevents "alg":"none" and algorithm confusion)
//
// Failures are reported as ErrTokenExpired or ErrTokenInvalid so callers can
// tell them apart with errors.Is.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", ErrTokenInvalid
	}

	if c.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrTokenInvalid)
	}

	return c.Subject, nil
}
