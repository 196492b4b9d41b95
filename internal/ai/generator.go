// Package ai adapts third-party text-generation services behind a common
// Generator interface and owns the prompt composition applied to every
// outbound request.
package ai

import (
	"context"

	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/conversation"
)

// Generator produces reply text for user prompts. Implementations must
// surface transport failures and malformed-but-successful responses as
// errors; callers treat both the same way, as a failed generation.
type Generator interface {
	// GenerateSingle answers a prompt with no conversational context.
	GenerateSingle(ctx context.Context, prompt string) (string, error)

	// GenerateWithHistory answers a prompt in the context of prior turns,
	// oldest first.
	GenerateWithHistory(ctx context.Context, history []conversation.Turn, prompt string) (string, error)
}
