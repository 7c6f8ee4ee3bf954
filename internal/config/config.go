// Package config centralises all environment configuration for the API.
// It should be imported only by `cmd/server` (and test code). Business-logic
// layers receive an already-built Config instance via dependency-injection.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime option the server needs.
// Keep it flat and simple—prefer primitive types over embedding structs.
type Config struct {
	// Network
	Port string

	// Data stores
	MongoURI string
	DBName   string

	// GitHub
	GitHubToken   string
	WebhookSecret string

	// LLM / embeddings. Provider is "openai" or "vertex".
	LLMProvider string
	OpenAIKey   string
	ProjectID   string
	Location    string

	// Notifications
	SlackToken   string
	SlackChannel string

	// Server tuning
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load parses the environment (and an optional .env file) into Config.
// It terminates on missing critical variables so mis-configurations fail fast.
func Load() Config {
	// godotenv.Load() is a no-op if .env doesn't exist—safe in production.
	_ = godotenv.Load()

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		MongoURI:      must("MONGODB_URI"),
		DBName:        getEnv("MONGODB_DB", "open_match"),
		GitHubToken:   must("GITHUB_TOKEN"),
		WebhookSecret: must("GITHUB_WEBHOOK_SECRET"),
		LLMProvider:   getEnv("LLM_PROVIDER", "openai"),
		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		ProjectID:     getEnv("GCP_PROJECT_ID", ""),
		Location:      getEnv("GCP_LOCATION", "us-central1"),
		SlackToken:    getEnv("SLACK_BOT_TOKEN", ""),
		SlackChannel:  getEnv("SLACK_CHANNEL", "monitor-cloud"),
		ReadTimeout:   getDuration("READ_TIMEOUT_SEC", 5),
		WriteTimeout:  getDuration("WRITE_TIMEOUT_SEC", 30),
	}

	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			log.Fatal("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	case "vertex":
		if cfg.ProjectID == "" {
			log.Fatal("GCP_PROJECT_ID is required when LLM_PROVIDER=vertex")
		}
	default:
		log.Fatalf("unknown LLM_PROVIDER %q (want openai or vertex)", cfg.LLMProvider)
	}

	return cfg
}

// must fetches a required env var or terminates the program.
func must(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("env var %s is required", key)
	}
	return val
}

// getEnv returns env[key] if set, otherwise defaultVal.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getDuration reads an integer (seconds) from env, falling back to defaultSec.
func getDuration(key string, defaultSec int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			return time.Duration(sec) * time.Second
		}
		log.Printf("invalid %s=%q; using default %ds", key, v, defaultSec)
	}
	return time.Duration(defaultSec) * time.Second
}
