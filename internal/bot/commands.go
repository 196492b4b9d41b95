package bot

import (
	"strings"

	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/conversation"
)

// Canned command replies.
const (
	startReply = "Hey! I'm ready to chat. Send me a message and I'll answer. " +
		"Use /reset any time to make me forget our conversation, or /help to see what I can do."
	helpReply = "Just send me any message and I'll reply. I remember the last few exchanges for context.\n" +
		"/start - say hello\n" +
		"/reset - forget our conversation and start fresh\n" +
		"/help - show this message"
	resetReply   = "Done, I've forgotten our conversation. What's next?"
	unknownReply = "I don't know that command. Try /help."
)

// IsCommand reports whether an inbound message is a slash command.
func IsCommand(text string) bool {
	return strings.HasPrefix(text, "/")
}

// Dispatcher maps slash commands to canned replies and history eviction.
// Aside from the Responder, the reset handler here is the only code that
// mutates the conversation store.
type Dispatcher struct {
	store   *conversation.Store
	botName string
}

// NewDispatcher creates a dispatcher. botName is the bot's Telegram
// username, used to recognize the /command@BotName form sent in group chats.
func NewDispatcher(store *conversation.Store, botName string) *Dispatcher {
	return &Dispatcher{
		store:   store,
		botName: botName,
	}
}

// Dispatch handles one command and returns the reply text.
func (d *Dispatcher) Dispatch(userID string, text string) string {
	switch normalizeCommand(text, d.botName) {
	case "/start":
		return startReply
	case "/help":
		return helpReply
	case "/reset":
		d.store.Clear(userID)
		return resetReply
	default:
		return unknownReply
	}
}

// normalizeCommand extracts the command token, strips the bot's own
// "@BotName" suffix, and lowercases the result.
func normalizeCommand(text string, botName string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd := strings.ToLower(fields[0])
	if botName != "" {
		cmd = strings.TrimSuffix(cmd, "@"+strings.ToLower(botName))
	}
	return cmd
}
