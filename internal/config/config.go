package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the environment-driven settings. Everything has a
// working default so a bare `go run .` starts an in-memory-only server.
type Config struct {
	// AllowedOrigins restricts WebSocket upgrades; "*" in development.
	AllowedOrigins []string

	// PersistGames toggles mirroring sessions into the games
	// collection. Off means purely in-memory sessions.
	PersistGames bool
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AllowedOrigins: []string{"*"},
		PersistGames:   os.Getenv("PERSIST_GAMES") != "false",
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = nil
		for _, part := range strings.Split(origins, ",") {
			if part = strings.TrimSpace(part); part != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, part)
			}
		}
	}
	return cfg
}
