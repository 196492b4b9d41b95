package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/telegram"
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Run in long polling mode",
	Long: `Starts the bot in long-running mode where it continuously polls Telegram
for new messages and replies to them as they arrive.`,
	RunE: runPollMode,
}

var pollTimeout time.Duration

func init() {
	pollCmd.Flags().DurationVar(&pollTimeout, "poll-timeout", 0, "Long poll timeout for getUpdates (overrides POLL_TIMEOUT)")

	rootCmd.AddCommand(pollCmd)
}

func runPollMode(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("poll-timeout") {
		cfg.PollTimeout = pollTimeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := setupContext()

	log.Printf("Starting Telegram AI Chatbot in POLL mode")
	log.Printf("Model provider: %s", cfg.ModelProvider)
	log.Printf("Poll timeout: %s", cfg.PollTimeout)

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

	// Telegram refuses getUpdates while a webhook is registered, so drop any
	// leftover registration from a previous serve run.
	if err := telegramClient.DeleteWebhook(ctx); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	handler, err := createHandler(ctx, telegramClient, botInfo, tel)
	if err != nil {
		return err
	}

	log.Printf("Bot started. Listening for messages to @%s", botInfo.Username)

	// Start polling for messages asynchronously
	poller := telegram.NewPoller(telegramClient, cfg.PollTimeout)
	messages := poller.Poll(ctx)

	// Start the handler (blocking)
	return handler.Run(ctx, messages)
}
