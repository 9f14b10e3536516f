package config

import (
	"os"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	SessionTTL        time.Duration
	BroadcastInterval time.Duration
	ArchiveAfter      time.Duration
	ArchiveInterval   time.Duration
	ArchiveActorID    string

	EnableBroadcastTicker bool
	EnableArchiveSweeper  bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "tallyroom"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		SessionTTL:        envDuration("USSD_SESSION_TTL", 10*time.Minute),
		BroadcastInterval: envDuration("BROADCAST_INTERVAL", 30*time.Second),
		ArchiveAfter:      envDuration("ARCHIVE_AFTER", 30*24*time.Hour),
		ArchiveInterval:   envDuration("ARCHIVE_INTERVAL", 6*time.Hour),
		ArchiveActorID:    strings.TrimSpace(os.Getenv("ARCHIVE_ACTOR_ID")),

		EnableBroadcastTicker: envBool("ENABLE_BROADCAST_TICKER", true),
		EnableArchiveSweeper:  envBool("ENABLE_ARCHIVE_SWEEPER", false),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
