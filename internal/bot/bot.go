// Package bot provides the core message-handling logic: routing inbound
// chat events to the command dispatcher or the responder and sending the
// replies back through the transport.
package bot

import (
	"context"
	"log"
	"strconv"

	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/telegram"
)

// Transport delivers outbound replies to the chat platform. Send failures
// are the transport's concern; the handler logs and drops them.
type Transport interface {
	// SendText sends a text reply to a chat.
	SendText(ctx context.Context, chatID int64, text string) error

	// StartTyping shows a typing indicator in a chat until the returned stop
	// function is called. Fire-and-forget; failures are ignored.
	StartTyping(ctx context.Context, chatID int64) func()
}

// Handler consumes inbound messages and produces replies.
type Handler struct {
	transport  Transport
	responder  *Responder
	dispatcher *Dispatcher
	queue      *Queue
}

// NewHandler creates a Handler
func NewHandler(transport Transport, responder *Responder, dispatcher *Dispatcher, queue *Queue) *Handler {
	return &Handler{
		transport:  transport,
		responder:  responder,
		dispatcher: dispatcher,
		queue:      queue,
	}
}

// Run consumes inbound messages until the context is cancelled or the
// channel closes.
func (h *Handler) Run(ctx context.Context, messages <-chan telegram.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil // Channel closed
			}
			h.Handle(ctx, msg)
		}
	}
}

// Handle enqueues one inbound message on its user's queue and returns
// immediately; the reply is produced and sent asynchronously. Messages for
// one user are processed strictly in arrival order, so a reset cannot
// interleave with an exchange that is still generating.
func (h *Handler) Handle(ctx context.Context, msg telegram.Message) {
	userID := strconv.FormatInt(msg.FromID, 10)

	accepted := h.queue.Submit(ctx, userID, func(ctx context.Context) {
		h.process(ctx, userID, msg)
	})
	if !accepted {
		log.Printf("Dropping message from user %s: queue full", userID)
	}
}

func (h *Handler) process(ctx context.Context, userID string, msg telegram.Message) {
	var reply string
	if IsCommand(msg.Text) {
		reply = h.dispatcher.Dispatch(userID, msg.Text)
	} else {
		stopTyping := h.transport.StartTyping(ctx, msg.ChatID)
		reply = h.responder.Respond(ctx, userID, msg.Text)
		stopTyping()
	}

	if err := h.transport.SendText(ctx, msg.ChatID, reply); err != nil {
		log.Printf("Failed to send reply to chat %d: %v", msg.ChatID, err)
	}
}
