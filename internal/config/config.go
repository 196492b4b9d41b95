// Package config provides configuration management for the chatbot.
package config

import (
	"fmt"
	"os"
	"time"
)

// Supported model providers
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

// Config holds the configuration for the bot
type Config struct {
	TelegramBotToken string
	TelegramAPIURL   string // Self-hosted Bot API server; empty uses api.telegram.org

	ModelProvider   string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string

	GenerationTimeout time.Duration
	PollTimeout       time.Duration

	ListenAddr    string
	WebhookURL    string
	WebhookSecret string

	TelemetryEnabled bool
	OTLPEndpoint     string
}

// Load loads configuration from environment variables
func Load() Config {
	config := Config{
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAPIURL:    os.Getenv("TELEGRAM_API_URL"),
		ModelProvider:     ProviderGemini, // Default
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       "gemini-2.0-flash",
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:    "claude-3-5-sonnet-20241022",
		GenerationTimeout: 30 * time.Second,
		PollTimeout:       50 * time.Second,
		ListenAddr:        ":8080",
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		OTLPEndpoint:      os.Getenv("OTLP_ENDPOINT"),
	}

	if provider := os.Getenv("MODEL_PROVIDER"); provider != "" {
		config.ModelProvider = provider
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.GeminiModel = model
	}
	if model := os.Getenv("ANTHROPIC_MODEL"); model != "" {
		config.AnthropicModel = model
	}
	if timeout := os.Getenv("GENERATION_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.GenerationTimeout = d
		}
	}
	if timeout := os.Getenv("POLL_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.PollTimeout = d
		}
	}
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		config.ListenAddr = addr
	}
	if enabled := os.Getenv("TELEMETRY_ENABLED"); enabled == "true" || enabled == "1" {
		config.TelemetryEnabled = true
	}

	return config
}

// Validate checks if the required configuration is present
func (c Config) Validate() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("missing required environment variable: TELEGRAM_BOT_TOKEN")
	}
	switch c.ModelProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("missing required environment variable: GEMINI_API_KEY")
		}
	case ProviderClaude:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("missing required environment variable: ANTHROPIC_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported MODEL_PROVIDER %q: expected %q or %q", c.ModelProvider, ProviderGemini, ProviderClaude)
	}
	return nil
}
