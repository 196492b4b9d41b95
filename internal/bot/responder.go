package bot

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/ai"
	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/conversation"
	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/telemetry"
)

// FallbackReply is returned to the user whenever generation fails. The
// failure itself is logged and traced; it never propagates to the transport
// layer.
const FallbackReply = "Sorry, I couldn't process that. Can you try asking again?"

// Responder orchestrates one exchange: fetch history, compose the prompt,
// call the generator, and record the exchange on success.
type Responder struct {
	store     *conversation.Store
	generator ai.Generator
	timeout   time.Duration
	telemetry *telemetry.Provider
}

// NewResponder creates a responder. timeout bounds each generation call; a
// generation that runs past it counts as failed.
func NewResponder(store *conversation.Store, generator ai.Generator, timeout time.Duration, tel *telemetry.Provider) *Responder {
	return &Responder{
		store:     store,
		generator: generator,
		timeout:   timeout,
		telemetry: tel,
	}
}

// Respond produces the reply for one user message. On success the exchange
// is appended to the user's history, storing the original message rather
// than the composed prompt, and the history is trimmed to the window bound.
// On any generation failure the history is left untouched and the fallback
// reply is returned.
func (r *Responder) Respond(ctx context.Context, userID string, rawMessage string) string {
	exchangeID := telemetry.NewExchangeID()

	history := r.store.Get(userID)
	continuation := conversation.IsContinuation(history)
	composed := ai.Compose(rawMessage)

	ctx, span := r.telemetry.StartSpan(ctx, "bot.respond",
		attribute.String("exchange.id", exchangeID),
		attribute.String("user.id", userID),
		attribute.Bool("exchange.continuation", continuation),
		attribute.Int("exchange.history_turns", len(history)),
	)
	defer span.End()

	generationCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	mode := "single"
	if continuation {
		mode = "history"
	}
	generationCtx, genSpan := r.telemetry.StartSpan(generationCtx, "ai.generate",
		attribute.String("generate.mode", mode),
	)

	var reply string
	var err error
	if continuation {
		reply, err = r.generator.GenerateWithHistory(generationCtx, history, composed)
	} else {
		reply, err = r.generator.GenerateSingle(generationCtx, composed)
	}
	if err != nil {
		genSpan.RecordError(err)
	}
	genSpan.End()

	if err != nil {
		log.Printf("Generation failed for exchange %s: %v", exchangeID, err)
		span.RecordError(err)
		return FallbackReply
	}

	r.store.Append(userID,
		conversation.Turn{Role: conversation.RoleUser, Text: rawMessage},
		conversation.Turn{Role: conversation.RoleModel, Text: reply},
	)
	r.store.Trim(userID, conversation.MaxTurns)

	return reply
}
