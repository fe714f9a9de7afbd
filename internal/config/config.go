package config

import (
	"fmt"
	"os"
	"time"

	"duka-auth-service/internal/pkg/token"
)

type AppConfig struct {
	// Server
	HTTPAddr string

	// Storage
	DatabaseURL string
	RedisAddr   string
	RedisPass   string

	// Tokens
	Token token.Config
}

// Load reads environment variables into AppConfig. Missing signing secrets are
// a startup failure, never a per-request one.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:    getEnv("HTTP_ADDR", ":8000"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		RedisPass:   getEnv("REDIS_PASS", ""),

		Token: token.Config{
			AccessSecret:  getEnv("ACCESS_TOKEN_SECRET", ""),
			RefreshSecret: getEnv("REFRESH_TOKEN_SECRET", ""),
			Issuer:        getEnv("TOKEN_ISSUER", "duka-auth"),
			Audience:      getEnv("TOKEN_AUDIENCE", "duka-api"),
			AccessTTL:     getEnvDuration("ACCESS_TOKEN_TTL", token.DefaultAccessTTL),
			RefreshTTL:    getEnvDuration("REFRESH_TOKEN_TTL", token.DefaultRefreshTTL),
		},
	}

	if cfg.Token.AccessSecret == "" {
		return cfg, fmt.Errorf("ACCESS_TOKEN_SECRET is not set")
	}
	if cfg.Token.RefreshSecret == "" {
		return cfg, fmt.Errorf("REFRESH_TOKEN_SECRET is not set")
	}
	if cfg.Token.AccessSecret == cfg.Token.RefreshSecret {
		return cfg, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be independent")
	}

	return cfg, nil
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
