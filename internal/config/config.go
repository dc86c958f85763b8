package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/tasktrack/tasktrack-go/internal/crypto"
)

// DefaultJWTSecret is the development fallback. Production refuses to start with it.
const DefaultJWTSecret = "your-secret-key-change-in-production"

var ErrDefaultSecretInProduction = errors.New("JWT_SECRET must be set in production environment")

type Config struct {
	Port          string
	Env           string
	Storage       string
	DatabaseDSN   string
	JWTSecret     string
	JWTExpiry     time.Duration
	PasswordHash  crypto.HashScheme
	AuthRateRPS   float64
	AuthRateBurst int
}

// IsProduction reports whether secure cookies and strict checks apply.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads the configuration from the environment and exits the process
// if it is unusable.
func Load() Config {
	cfg, err := Parse()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

// Parse reads the configuration from the environment.
func Parse() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		Storage:     getEnv("STORAGE", "mysql"),
		DatabaseDSN: getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/tasktrack?parseTime=true&clientFoundRows=true"),
		JWTSecret:   getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTExpiry:   crypto.DefaultTokenTTL,
	}

	scheme, err := crypto.ParseHashScheme(getEnv("PASSWORD_HASH", string(crypto.SchemeSHA256)))
	if err != nil {
		return Config{}, err
	}
	cfg.PasswordHash = scheme

	if cfg.AuthRateRPS, err = strconv.ParseFloat(getEnv("AUTH_RATE_LIMIT_RPS", "5"), 64); err != nil {
		return Config{}, fmt.Errorf("AUTH_RATE_LIMIT_RPS: %w", err)
	}
	if cfg.AuthRateBurst, err = strconv.Atoi(getEnv("AUTH_RATE_LIMIT_BURST", "10")); err != nil {
		return Config{}, fmt.Errorf("AUTH_RATE_LIMIT_BURST: %w", err)
	}

	switch cfg.Storage {
	case "mysql", "memory":
	default:
		return Config{}, fmt.Errorf("STORAGE must be mysql or memory, got %q", cfg.Storage)
	}

	if cfg.IsProduction() && cfg.JWTSecret == DefaultJWTSecret {
		return Config{}, ErrDefaultSecretInProduction
	}
	if cfg.JWTSecret == DefaultJWTSecret {
		slog.Warn("JWT_SECRET not set, using the insecure development default")
	}

	return cfg, nil
}

// NewLogger returns a JSON logger in production and a text logger otherwise.
func NewLogger(cfg Config, w io.Writer) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
