package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"google.golang.org/genai"

	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/ai"
	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/bot"
	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/config"
	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/conversation"
	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/telegram"
	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/telemetry"
	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/transport"
)

const (
	// maxConcurrentGenerations bounds in-flight model calls across all users.
	maxConcurrentGenerations = 4
	// userQueueSize bounds messages waiting per user; further ones are dropped.
	userQueueSize = 8
	// maxReplyTokens caps Claude reply length. Chat replies are short.
	maxReplyTokens = 1024
)

func setupContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		log.Println("Interrupt signal detected, shutting down gracefully...")
		cancel()
		<-interrupt
		log.Fatal("Forcing shutdown")
	}()

	return ctx
}

func createTelegramClient() *telegram.Client {
	// The client's timeout must outlast a full getUpdates long poll.
	httpClient := &http.Client{
		Transport: transport.WithRateLimiting(nil),
		Timeout:   cfg.PollTimeout + 30*time.Second,
	}
	if cfg.TelegramAPIURL != "" {
		return telegram.NewClientWithBaseURL(cfg.TelegramBotToken, httpClient, cfg.TelegramAPIURL)
	}
	return telegram.NewClient(cfg.TelegramBotToken, httpClient)
}

func createAnthropicClient(apiKey string) anthropic.Client {
	rateLimitedHTTPClient := &http.Client{
		Transport: transport.WithRateLimiting(nil),
	}
	return anthropic.NewClient(
		option.WithHTTPClient(rateLimitedHTTPClient),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(5),
	)
}

func createGenerator(ctx context.Context) (ai.Generator, error) {
	switch cfg.ModelProvider {
	case config.ProviderGemini:
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return ai.NewGeminiGenerator(client, cfg.GeminiModel), nil
	case config.ProviderClaude:
		client := createAnthropicClient(cfg.AnthropicAPIKey)
		return ai.NewClaudeGenerator(client, anthropic.Model(cfg.AnthropicModel), maxReplyTokens), nil
	default:
		return nil, fmt.Errorf("unsupported MODEL_PROVIDER %q", cfg.ModelProvider)
	}
}

func createTelemetryProvider(ctx context.Context) (*telemetry.Provider, error) {
	telemetryConfig := telemetry.Config{
		Enabled:      cfg.TelemetryEnabled,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Version:      version,
	}
	return telemetry.NewProvider(ctx, telemetryConfig)
}

func createHandler(ctx context.Context, telegramClient *telegram.Client, botInfo telegram.BotInfo, tel *telemetry.Provider) (*bot.Handler, error) {
	generator, err := createGenerator(ctx)
	if err != nil {
		return nil, err
	}

	store := conversation.NewStore()
	responder := bot.NewResponder(store, generator, cfg.GenerationTimeout, tel)
	dispatcher := bot.NewDispatcher(store, botInfo.Username)
	queue := bot.NewQueue(maxConcurrentGenerations, userQueueSize)

	return bot.NewHandler(telegramClient, responder, dispatcher, queue), nil
}
