// Package config loads application settings from a .env file and
// STUDYLOOP_* environment variables.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/studyloop/internal/session"
)

// Config is the application configuration. LLM settings are resolved
// separately by llm.ResolveConfig once the environment is loaded.
type Config struct {
	DBPath     string        // empty means the XDG default
	RedisURL   string        // empty means in-memory sessions
	SessionTTL time.Duration // session lifetime
	LogMode    string        // "dev" or "prod"
	LogLevel   string
	UserID     string // default learner id
	HTTPAddr   string
	Stream     bool // stream question generation in the CLI
}

// Default values.
const (
	DefaultUserID   = "default_user"
	DefaultHTTPAddr = ":8080"
	DefaultLogMode  = "prod"
	DefaultLogLevel = "info"
)

// Load reads envFile (when it exists) into the process environment
// without overriding variables that are already set, then builds a
// Config. An empty envFile means ".env".
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the environment alone.
func FromEnv() Config {
	return Config{
		DBPath:     getEnv("STUDYLOOP_DB", ""),
		RedisURL:   getEnv("STUDYLOOP_REDIS_URL", ""),
		SessionTTL: getEnvAsDuration("STUDYLOOP_SESSION_TTL", session.DefaultTTL),
		LogMode:    getEnv("STUDYLOOP_LOG_MODE", DefaultLogMode),
		LogLevel:   getEnv("STUDYLOOP_LOG_LEVEL", DefaultLogLevel),
		UserID:     getEnv("STUDYLOOP_USER", DefaultUserID),
		HTTPAddr:   getEnv("STUDYLOOP_HTTP_ADDR", DefaultHTTPAddr),
		Stream:     getEnvAsBool("STUDYLOOP_STREAM", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
