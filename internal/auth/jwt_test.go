package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-at-least-16-chars!!"

// newTestTokenService creates a TokenService with a fixed, known secret so
// tests are deterministic.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(TokenConfig{
		Secret: testSecret,
		Issuer: "project-studio",
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// TOKEN SERVICE CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  TokenConfig
	}{
		{"short secret", TokenConfig{Secret: "short", Issuer: "x", TTL: time.Hour}},
		{"zero ttl", TokenConfig{Secret: testSecret, Issuer: "x"}},
		{"negative ttl", TokenConfig{Secret: testSecret, Issuer: "x", TTL: -time.Minute}},
		{"empty issuer", TokenConfig{Secret: testSecret, TTL: time.Hour}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTokenService(tt.cfg); err == nil {
				t.Fatalf("NewTokenService(%+v) should fail", tt.cfg)
			}
		})
	}
}

// =========================================================================
// GENERATE TESTS
// =========================================================================

func TestGenerate_LooksLikeJWT(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if got := strings.Count(token, "."); got != 2 {
		t.Errorf("Generate() token doesn't look like a JWT (expected 2 dots, got %d)", got)
	}
}

func TestGenerate_EmptyUserID(t *testing.T) {
	ts := newTestTokenService(t)

	if _, err := ts.Generate(""); err == nil {
		t.Fatal("Generate() should refuse an empty user ID")
	}
}

func TestGenerate_CarriesIssuedAtAndExpiry(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Generate("user-123")

	parsed, _, err := jwt.NewParser().ParseUnverified(token, &claims{})
	if err != nil {
		t.Fatalf("ParseUnverified() error = %v", err)
	}
	c := parsed.Claims.(*claims)
	if c.IssuedAt == nil || c.ExpiresAt == nil {
		t.Fatal("token must carry iat and exp claims")
	}
	if got := c.ExpiresAt.Sub(c.IssuedAt.Time); got != time.Hour {
		t.Errorf("exp - iat = %v, want %v", got, time.Hour)
	}
}

// =========================================================================
// VALIDATE TESTS
// =========================================================================

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)
	userID := "cv37rs3pp9olc6atsptg"

	token, err := ts.Generate(userID)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != userID {
		t.Errorf("Validate() userID = %q, want %q", got, userID)
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration("user-123", -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	_, err = ts.Validate(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Validate() error = %v, want ErrTokenExpired", err)
	}
	if errors.Is(err, ErrTokenInvalid) {
		t.Error("an expired token must not be reported as ErrTokenInvalid")
	}
}

func TestValidate_InvalidTokens(t *testing.T) {
	ts := newTestTokenService(t)
	good, _ := ts.Generate("user-123")

	other, _ := NewTokenService(TokenConfig{Secret: "wrong-secret-32-chars-long!!!!!!", Issuer: "project-studio", TTL: time.Hour})
	foreign, _ := other.Generate("user-123")

	otherIssuer, _ := NewTokenService(TokenConfig{Secret: testSecret, Issuer: "someone-else", TTL: time.Hour})
	wrongIss, _ := otherIssuer.Generate("user-123")

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    "project-studio",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123", Issuer: "project-studio"},
	}).SignedString([]byte(testSecret))

	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "project-studio",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt.token"},
		{"tampered signature", good[:len(good)-3] + "xxx"},
		{"wrong secret", foreign},
		{"wrong issuer", wrongIss},
		{"alg none", unsigned},
		{"no expiry", noExp},
		{"no subject", noSub},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.Validate(tt.token)
			if !errors.Is(err, ErrTokenInvalid) {
				t.Fatalf("Validate() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}
