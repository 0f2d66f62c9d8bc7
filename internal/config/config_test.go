package config

import (
	"log/slog"
	"testing"
	"time"
)

// --- LoadConfig ---

func TestLoadConfig(t *testing.T) {
	// Helper sets the minimum required env vars for a valid config
	setRequired := func(t *testing.T) {
		t.Helper()
		t.Setenv("DATABASE_URL", "postgres://localhost/janus")
		t.Setenv("REDIS_URL", "redis://localhost:6379")
		t.Setenv("DISCORD_CLIENT_ID", "1234567890")
	}

	t.Run("returns valid config with all required vars", func(t *testing.T) {
		setRequired(t)

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.DatabaseURL != "postgres://localhost/janus" {
			t.Errorf("DatabaseURL: expected %q, got %q", "postgres://localhost/janus", cfg.DatabaseURL)
		}
		if cfg.RedisURL != "redis://localhost:6379" {
			t.Errorf("RedisURL: expected %q, got %q", "redis://localhost:6379", cfg.RedisURL)
		}
		if cfg.DiscordClientID != "1234567890" {
			t.Errorf("DiscordClientID: expected %q, got %q", "1234567890", cfg.DiscordClientID)
		}
	})

	t.Run("errors when DATABASE_URL is missing", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("REDIS_URL", "redis://localhost:6379")
		t.Setenv("DISCORD_CLIENT_ID", "1234567890")

		if _, err := LoadConfig(); err == nil {
			t.Fatal("expected error for missing DATABASE_URL, got nil")
		}
	})

	t.Run("errors when REDIS_URL is missing", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/janus")
		t.Setenv("REDIS_URL", "")
		t.Setenv("DISCORD_CLIENT_ID", "1234567890")

		if _, err := LoadConfig(); err == nil {
			t.Fatal("expected error for missing REDIS_URL, got nil")
		}
	})

	t.Run("errors when DISCORD_CLIENT_ID is missing", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/janus")
		t.Setenv("REDIS_URL", "redis://localhost:6379")
		t.Setenv("DISCORD_CLIENT_ID", "")

		if _, err := LoadConfig(); err == nil {
			t.Fatal("expected error for missing DISCORD_CLIENT_ID, got nil")
		}
	})

	t.Run("client secret is optional", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DISCORD_CLIENT_SECRET", "")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.DiscordClientSecret != "" {
			t.Errorf("DiscordClientSecret: expected empty, got %q", cfg.DiscordClientSecret)
		}
	})

	t.Run("defaults PORT to 7865", func(t *testing.T) {
		setRequired(t)
		t.Setenv("PORT", "")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Port != "7865" {
			t.Errorf("Port: expected %q, got %q", "7865", cfg.Port)
		}
	})

	t.Run("log level defaults to info", func(t *testing.T) {
		setRequired(t)
		t.Setenv("LOG_LEVEL", "")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Errorf("LogLevel: expected info, got %v", cfg.LogLevel)
		}
	})

	t.Run("log level parses debug", func(t *testing.T) {
		setRequired(t)
		t.Setenv("LOG_LEVEL", "DEBUG")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.LogLevel != slog.LevelDebug {
			t.Errorf("LogLevel: expected debug, got %v", cfg.LogLevel)
		}
	})

	t.Run("token field names default", func(t *testing.T) {
		setRequired(t)

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.AccessTokenField != "access_token" || cfg.RefreshTokenField != "refresh_token" {
			t.Errorf("field names: got (%q, %q)", cfg.AccessTokenField, cfg.RefreshTokenField)
		}
	})

	t.Run("token field names override", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ACCESS_TOKEN_FIELD", "at")
		t.Setenv("REFRESH_TOKEN_FIELD", "rt")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.AccessTokenField != "at" || cfg.RefreshTokenField != "rt" {
			t.Errorf("field names: got (%q, %q)", cfg.AccessTokenField, cfg.RefreshTokenField)
		}
	})

	t.Run("token lookups default to body,query,header", func(t *testing.T) {
		setRequired(t)
		t.Setenv("TOKEN_LOOKUPS", "")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		want := []string{"body", "query", "header"}
		if len(cfg.TokenLookups) != len(want) {
			t.Fatalf("TokenLookups: expected %v, got %v", want, cfg.TokenLookups)
		}
		for i := range want {
			if cfg.TokenLookups[i] != want[i] {
				t.Errorf("TokenLookups[%d]: expected %q, got %q", i, want[i], cfg.TokenLookups[i])
			}
		}
	})

	t.Run("token lookups parse custom order with spaces", func(t *testing.T) {
		setRequired(t)
		t.Setenv("TOKEN_LOOKUPS", "header, query")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if len(cfg.TokenLookups) != 2 || cfg.TokenLookups[0] != "header" || cfg.TokenLookups[1] != "query" {
			t.Errorf("TokenLookups: expected [header query], got %v", cfg.TokenLookups)
		}
	})

	t.Run("token lookups reject unknown carrier", func(t *testing.T) {
		setRequired(t)
		t.Setenv("TOKEN_LOOKUPS", "body,cookie")

		if _, err := LoadConfig(); err == nil {
			t.Fatal("expected error for unknown carrier, got nil")
		}
	})

	t.Run("fallbacks default on", func(t *testing.T) {
		setRequired(t)

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if !cfg.BearerFallback || !cfg.RefreshFallback {
			t.Errorf("fallbacks: expected both true, got (%v, %v)", cfg.BearerFallback, cfg.RefreshFallback)
		}
	})

	t.Run("fallbacks disabled only by explicit false", func(t *testing.T) {
		setRequired(t)
		t.Setenv("BEARER_HEADER_FALLBACK", "false")
		t.Setenv("REFRESH_TOKEN_FALLBACK", "false")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.BearerFallback || cfg.RefreshFallback {
			t.Errorf("fallbacks: expected both false, got (%v, %v)", cfg.BearerFallback, cfg.RefreshFallback)
		}
	})

	t.Run("fallbacks stay on for any non-false value", func(t *testing.T) {
		setRequired(t)
		for _, val := range []string{"true", "1", "yes", "FALSE", "typo"} {
			t.Setenv("BEARER_HEADER_FALLBACK", val)

			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig failed for %q: %v", val, err)
			}
			if !cfg.BearerFallback {
				t.Errorf("BearerFallback should be true for %q", val)
			}
		}
	})

	t.Run("session ttl defaults to 24h", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SESSION_TTL", "")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Errorf("SessionTTL: expected 24h, got %v", cfg.SessionTTL)
		}
	})

	t.Run("session ttl parses durations", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SESSION_TTL", "90m")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.SessionTTL != 90*time.Minute {
			t.Errorf("SessionTTL: expected 90m, got %v", cfg.SessionTTL)
		}
	})

	t.Run("invalid durations fall back to defaults", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SESSION_TTL", "not-a-duration")
		t.Setenv("RATE_LOGIN_MAX", "-5")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Errorf("SessionTTL: expected default 24h, got %v", cfg.SessionTTL)
		}
		if cfg.RateLoginMax != 20 {
			t.Errorf("RateLoginMax: expected default 20, got %d", cfg.RateLoginMax)
		}
	})

	t.Run("rate limit knobs parse", func(t *testing.T) {
		setRequired(t)
		t.Setenv("RATE_LOGIN_MAX", "5")
		t.Setenv("RATE_LOGIN_WINDOW", "1m")
		t.Setenv("RATE_LOGIN_LOCKOUT", "30m")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.RateLoginMax != 5 || cfg.RateLoginWindow != time.Minute || cfg.RateLoginLockout != 30*time.Minute {
			t.Errorf("rate limit: got (%d, %v, %v)", cfg.RateLoginMax, cfg.RateLoginWindow, cfg.RateLoginLockout)
		}
	})
}
