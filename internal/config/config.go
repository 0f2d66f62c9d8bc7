// config.go

// Environment variable loading and validation.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all env configuration vars for Janus.
type Config struct {
	DatabaseURL string
	RedisURL    string
	Port        string
	LogLevel    slog.Level

	// Discord OAuth application credentials. ClientSecret is optional --
	// without it, refresh-token exchanges fail at Discord's token endpoint
	// with an invalid-credentials error.
	DiscordClientID     string
	DiscordClientSecret string

	// Credential resolution knobs for the bearer strategy.
	AccessTokenField  string   // default "access_token"
	RefreshTokenField string   // default "refresh_token"
	TokenLookups      []string // ordered carriers, default body,query,header
	BearerFallback    bool     // default true
	RefreshFallback   bool     // default true

	// Rate limit policy for login attempts per client IP.
	// Defaults: max=20, window=10m, lockout=15m.
	RateLoginMax     int
	RateLoginWindow  time.Duration
	RateLoginLockout time.Duration

	// SessionTTL. Default 24h.
	SessionTTL time.Duration
}

// LoadConfig reads environment variables and returns a validated Config.
// Returns an error if required variables (DATABASE_URL, REDIS_URL,
// DISCORD_CLIENT_ID) are missing -- misconfiguration fails at startup,
// never at request time.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	cfg.DiscordClientID = os.Getenv("DISCORD_CLIENT_ID")
	if cfg.DiscordClientID == "" {
		return nil, fmt.Errorf("DISCORD_CLIENT_ID is required")
	}
	cfg.DiscordClientSecret = os.Getenv("DISCORD_CLIENT_SECRET")

	cfg.Port = os.Getenv("PORT")
	if cfg.Port == "" {
		cfg.Port = "7865"
	}

	// Parse log level, default to info
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		cfg.LogLevel = slog.LevelInfo
	}

	// Field names searched in each carrier. Overridable for hosts that use
	// different parameter names.
	cfg.AccessTokenField = os.Getenv("ACCESS_TOKEN_FIELD")
	if cfg.AccessTokenField == "" {
		cfg.AccessTokenField = "access_token"
	}
	cfg.RefreshTokenField = os.Getenv("REFRESH_TOKEN_FIELD")
	if cfg.RefreshTokenField == "" {
		cfg.RefreshTokenField = "refresh_token"
	}

	// TOKEN_LOOKUPS is a comma-separated carrier order; each entry must be
	// body, query, or header. An invalid entry is a hard error -- silently
	// skipping a carrier would change which credential wins.
	lookups := os.Getenv("TOKEN_LOOKUPS")
	if lookups == "" {
		cfg.TokenLookups = []string{"body", "query", "header"}
	} else {
		for _, l := range strings.Split(lookups, ",") {
			l = strings.TrimSpace(l)
			switch l {
			case "body", "query", "header":
				cfg.TokenLookups = append(cfg.TokenLookups, l)
			default:
				return nil, fmt.Errorf("TOKEN_LOOKUPS: unknown carrier %q", l)
			}
		}
	}

	// Both fallbacks default on -- only explicit "false" disables.
	cfg.BearerFallback = os.Getenv("BEARER_HEADER_FALLBACK") != "false"
	cfg.RefreshFallback = os.Getenv("REFRESH_TOKEN_FALLBACK") != "false"

	cfg.RateLoginMax = envInt("RATE_LOGIN_MAX", 20)
	cfg.RateLoginWindow = envDuration("RATE_LOGIN_WINDOW", 10*time.Minute)
	cfg.RateLoginLockout = envDuration("RATE_LOGIN_LOCKOUT", 15*time.Minute)

	cfg.SessionTTL = envDuration("SESSION_TTL", 24*time.Hour)

	return cfg, nil
}

// envInt reads an env var as int, returning def if missing or unparseable.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid env var, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

// envDuration reads an env var as time.Duration, returning def if missing or unparseable.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid env var, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}
