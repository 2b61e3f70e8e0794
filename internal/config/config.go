package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Addr   string
	DBPath string
	WebDir string

	// Clients
	ServerURL string

	// Seed
	DataDir string

	// Responder: "static" or "llm"
	Responder  string
	ReplyDelay time.Duration

	OpenAIBaseURL string
	OpenAIToken   string
	OpenAIModel   string
}

// Load reads configuration from the environment, after loading an optional
// .env file. Missing variables fall back to defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:          envOr("QUERYCHAT_ADDR", ":8100"),
		DBPath:        envOr("QUERYCHAT_DB", "querychat.db"),
		WebDir:        envOr("QUERYCHAT_WEB_DIR", "web"),
		ServerURL:     envOr("QUERYCHAT_SERVER_URL", "http://localhost:8100"),
		DataDir:       envOr("QUERYCHAT_DATA_DIR", "data"),
		Responder:     envOr("QUERYCHAT_RESPONDER", "static"),
		ReplyDelay:    durationOr("QUERYCHAT_REPLY_DELAY", time.Second),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", "http://localhost:11434/v1/"),
		OpenAIToken:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   envOr("OPENAI_MODEL", "llama3.1:8b"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
