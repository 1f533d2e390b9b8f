// Package config loads the server configuration.
//
// SOURCES, IN ORDER OF PRECEDENCE:
//  1. Process environment variables
//  2. An optional .env file (loaded into the environment; never overrides
//     variables that are already set)
//  3. Defaults()
//
// Environment values are parsed with caarlos0/env into Config; fields left at
// their zero value are then filled from Defaults() with mergo. The result is
// passed into constructors. Nothing reads a global.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// MinSecretLength matches auth.MinSecretLength; it is repeated here so a bad
// secret fails at startup with a config error.
const MinSecretLength = 16

// Config is the full server configuration.
type Config struct {
	Server Server `envPrefix:"SERVER_"`
	DB     DB     `envPrefix:"DB_"`
	Auth   Auth   `envPrefix:"AUTH_"`
	GitHub GitHub `envPrefix:"GITHUB_"`
	Log    Log    `envPrefix:"LOG_"`
}

// Server holds HTTP listener settings.
type Server struct {
	// Env: SERVER_PORT
	Port int `env:"PORT"`
	// RequestTimeout bounds every request, database calls included.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// DB holds storage settings.
type DB struct {
	// Path is the SQLite file; ":memory:" gives a throwaway database.
	// Env: DB_PATH
	Path string `env:"PATH"`
}

// Auth holds token and password-hashing settings.
type Auth struct {
	// Env: AUTH_JWT_SECRET (required)
	JWTSecret string `env:"JWT_SECRET"`
	// Env: AUTH_TOKEN_TTL
	TokenTTL time.Duration `env:"TOKEN_TTL"`
	// Env: AUTH_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`
	// Env: AUTH_BCRYPT_COST
	BcryptCost int `env:"BCRYPT_COST"`
}

// GitHub holds OAuth app credentials. GitHub sign-in is enabled only when
// both the client ID and secret are set.
type GitHub struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	CallbackURL  string `env:"CALLBACK_URL"`
}

// Enabled reports whether GitHub sign-in is configured.
func (g GitHub) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// Log selects the slog handler.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LEVEL"`
	// Format is text or json.
	Format string `env:"FORMAT"`
}

// Defaults returns the values used for every setting the environment leaves
// unset. There is no default JWT secret.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:           8080,
			RequestTimeout: 10 * time.Second,
		},
		DB: DB{
			Path: "data/studio.db",
		},
		Auth: Auth{
			TokenTTL:    24 * time.Hour,
			TokenIssuer: "project-studio",
			BcryptCost:  12,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads dotenvPath (when it exists) into the process environment and
// builds a validated Config from it. An empty dotenvPath means ".env".
func Load(dotenvPath string) (*Config, error) {
	if dotenvPath == "" {
		dotenvPath = ".env"
	}
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: loading %s: %w", dotenvPath, err)
	}

	return build(env.Options{})
}

// FromMap builds a validated Config from vars instead of the process
// environment.
func FromMap(vars map[string]string) (*Config, error) {
	return build(env.Options{Environment: vars})
}

func build(opts env.Options) (*Config, error) {
	cfg := new(Config)
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}

	if err := mergo.Merge(cfg, Defaults()); err != nil {
		return nil, fmt.Errorf("config: applying defaults: %w", err)
	}

	if cfg.GitHub.Enabled() && cfg.GitHub.CallbackURL == "" {
		cfg.GitHub.CallbackURL = fmt.Sprintf("http://localhost:%d/api/auth/github/callback", cfg.Server.Port)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Auth.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("AUTH_JWT_SECRET must be at least %d characters", MinSecretLength))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_TTL must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("AUTH_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT %d is out of range", c.Server.Port))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("SERVER_REQUEST_TIMEOUT must be positive"))
	}
	if strings.TrimSpace(c.DB.Path) == "" {
		errs = append(errs, errors.New("DB_PATH must not be empty"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
