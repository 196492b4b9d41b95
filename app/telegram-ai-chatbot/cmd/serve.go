package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a webhook server",
	Long: `Starts an HTTP server that receives Telegram updates via webhook. Use
--set-webhook to register WEBHOOK_URL with Telegram on startup.`,
	RunE: runServeMode,
}

var (
	listenAddr string
	setWebhook bool
)

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen-addr", "", "Address to listen on (overrides LISTEN_ADDR)")
	serveCmd.Flags().BoolVar(&setWebhook, "set-webhook", false, "Register WEBHOOK_URL with Telegram before serving")

	rootCmd.AddCommand(serveCmd)
}

func runServeMode(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("listen-addr") {
		cfg.ListenAddr = listenAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if setWebhook && cfg.WebhookURL == "" {
		return fmt.Errorf("missing required environment variable: WEBHOOK_URL")
	}

	ctx := setupContext()

	log.Printf("Starting Telegram AI Chatbot in SERVE mode")
	log.Printf("Model provider: %s", cfg.ModelProvider)
	log.Printf("Listen address: %s", cfg.ListenAddr)

	tel, err := createTelemetryProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Printf("Failed to shut down telemetry: %v", err)
		}
	}()

	telegramClient := createTelegramClient()

	// Get bot user info
	botInfo, err := telegramClient.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}

	if setWebhook {
		if err := telegramClient.SetWebhook(ctx, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			return fmt.Errorf("failed to set webhook: %w", err)
		}
		log.Printf("Webhook registered: %s", cfg.WebhookURL)
	}

	handler, err := createHandler(ctx, telegramClient, botInfo, tel)
	if err != nil {
		return err
	}

	log.Printf("Bot started. Serving webhook updates for @%s on %s", botInfo.Username, cfg.ListenAddr)

	server := telegram.NewWebhookServer(cfg.ListenAddr, cfg.WebhookSecret, handler)
	return server.Run(ctx)
}
