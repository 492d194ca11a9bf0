// Package config provides environment configuration for the bot.
package config

import (
	"os"
	"strconv"
	"time"
)

// Mode selects how updates are delivered by the chat transport.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Config holds all configuration for the application.
type Config struct {
	// Telegram settings
	TelegramToken  string
	TelegramAPIURL string
	Mode           string
	WebhookURL     string
	WebhookSecret  string
	PollTimeout    int

	// Database settings
	DatabaseFile string

	// Inference endpoint (Vertex AI dedicated endpoint)
	ProjectID            string
	Location             string
	EndpointID           string
	DedicatedEndpointDNS string
	VertexAccessToken    string
	VertexTokenFile      string

	// Alternate providers
	DefaultProvider string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Gemini (translation, transcription, suggestions)
	GeminiAPIKey string
	GeminiModel  string

	// Timeouts for outbound calls
	InferenceTimeout   time.Duration
	TranslateTimeout   time.Duration
	TranscribeTimeout  time.Duration
	SuggestionsTimeout time.Duration

	// Events
	NATSURL string

	// Ops server
	OpsPort           string
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Telegram
		TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
		TelegramAPIURL: getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		Mode:           getEnv("BOT_MODE", ModePolling),
		WebhookURL:     getEnv("WEBHOOK_URL", ""),
		WebhookSecret:  getEnv("WEBHOOK_SECRET", ""),
		PollTimeout:    getIntEnv("POLL_TIMEOUT", 30),

		// Database
		DatabaseFile: getEnv("DATABASE_FILE", "bot_data.db"),

		// Inference endpoint
		ProjectID:            getEnv("PROJECT_ID", ""),
		Location:             getEnv("LOCATION", ""),
		EndpointID:           getEnv("ENDPOINT_ID", ""),
		DedicatedEndpointDNS: getEnv("DEDICATED_ENDPOINT_DNS", ""),
		VertexAccessToken:    getEnv("VERTEX_ACCESS_TOKEN", ""),
		VertexTokenFile:      getEnv("VERTEX_TOKEN_FILE", ""),

		// Alternate providers
		DefaultProvider: getEnv("DEFAULT_LLM", "vertex"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		// Gemini
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		// Timeouts
		InferenceTimeout:   getDurationEnv("INFERENCE_TIMEOUT", 120*time.Second),
		TranslateTimeout:   getDurationEnv("TRANSLATE_TIMEOUT", 60*time.Second),
		TranscribeTimeout:  getDurationEnv("TRANSCRIBE_TIMEOUT", 60*time.Second),
		SuggestionsTimeout: getDurationEnv("SUGGESTIONS_TIMEOUT", 60*time.Second),

		// Events
		NATSURL: getEnv("NATS_URL", ""),

		// Ops server
		OpsPort:           getEnv("PORT", "8080"),
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
