package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	ServerAddr     string
	LogLevel       slog.Level
	ESIURL         string
	SSOURL         string
	ESIClientID    string
	ESISecretKey   string
	SSORedirectURI string
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       envOrDefault("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		ServerAddr:     envOrDefault("SERVER_ADDR", ":8080"),
		LogLevel:       parseLogLevel(os.Getenv("LOG_LEVEL")),
		ESIURL:         envOrDefault("ESI_URL", "https://esi.evetech.net"),
		SSOURL:         envOrDefault("SSO_URL", "https://login.eveonline.com"),
		ESIClientID:    os.Getenv("ESI_CLIENT_ID"),
		ESISecretKey:   os.Getenv("ESI_SECRET_KEY"),
		SSORedirectURI: envOrDefault("SSO_REDIRECT_URI", "http://localhost:8080/auth/callback"),
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.ESIClientID == "" {
		missing = append(missing, "ESI_CLIENT_ID")
	}
	if cfg.ESISecretKey == "" {
		missing = append(missing, "ESI_SECRET_KEY")
	}
	if len(missing) > 0 {
		panic(fmt.Sprintf("required environment variables not set: %s", strings.Join(missing, ", ")))
	}

	return cfg
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
