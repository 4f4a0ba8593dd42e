// Package config loads process configuration from the environment (and an
// optional .env file), the same bootstrap pattern the rest of the stack
// uses: godotenv.Load, then plain os.Getenv with typed fallbacks.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the server's runtime settings.
type Config struct {
	// DatabasePath is the path to the single SQLite database file.
	DatabasePath string
	// StaticDir is served at "/" for the bundled frontend, if present.
	StaticDir string
	// Port is the TCP port the HTTP server listens on.
	Port string
	// MaxBodyBytes caps request bodies; raised to fit base64 file uploads.
	MaxBodyBytes int64
}

// Load reads .env if present, then the process environment, applying
// defaults sized for a small self-hosted deployment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	return Config{
		DatabasePath: getEnv("DATABASE_PATH", "data/chat.db"),
		StaticDir:    getEnv("STATIC_DIR", "frontend/dist"),
		Port:         getEnv("PORT", "8080"),
		MaxBodyBytes: parseInt64Env("MAX_BODY_BYTES", 10<<20),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt64Env(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("config: invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
