package cmd

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "telegram-ai-chatbot",
	Short: "AI chat companion that operates via Telegram",
	Long: `Telegram AI Chatbot is a conversational bot that relays Telegram messages
to a generative AI model and sends the generated replies back to the chat.
It keeps a bounded in-memory history per user so follow-up messages have
context, and supports /start, /help, and /reset commands.`,
	PersistentPreRun: loadRootConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func loadRootConfig(_ *cobra.Command, _ []string) {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg = config.Load()
}
