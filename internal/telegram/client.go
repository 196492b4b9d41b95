// Package telegram is a minimal client for the Telegram Bot API, covering
// only the surface the bot needs: update polling, message sending, chat
// actions, and webhook management.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// maxMessageLen is the chunk size for outbound messages, kept under
// Telegram's hard limit of 4096 characters per message.
const maxMessageLen = 4000

// typingInterval is how often the typing indicator is refreshed. Telegram
// expires the indicator after roughly five seconds.
const typingInterval = 4 * time.Second

// Client talks to the Telegram Bot API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a client for the bot identified by token. A nil
// httpClient falls back to a default with a generous timeout to accommodate
// long polling.
func NewClient(token string, httpClient *http.Client) *Client {
	return NewClientWithBaseURL(token, httpClient, defaultBaseURL)
}

// NewClientWithBaseURL creates a client that talks to a self-hosted Bot API
// server instead of api.telegram.org.
func NewClientWithBaseURL(token string, httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
	}
}

// BotInfo describes the bot's own Telegram account.
type BotInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Update is one entry from getUpdates or a webhook delivery.
type Update struct {
	UpdateID int64        `json:"update_id"`
	Message  *chatMessage `json:"message"`
}

type chatMessage struct {
	MessageID int64  `json:"message_id"`
	From      *user  `json:"from"`
	Chat      chat   `json:"chat"`
	Text      string `json:"text"`
}

type user struct {
	ID    int64 `json:"id"`
	IsBot bool  `json:"is_bot"`
}

type chat struct {
	ID int64 `json:"id"`
}

// Message is one inbound text message, reduced to what the bot consumes.
type Message struct {
	UpdateID int64
	FromID   int64
	ChatID   int64
	Text     string
}

// FromUpdate extracts a Message from an update. ok is false for updates the
// bot does not handle: edits, joins, media without text, and messages from
// other bots. Such updates must never reach the message-handling core.
func FromUpdate(u Update) (Message, bool) {
	if u.Message == nil || u.Message.From == nil || u.Message.From.IsBot || u.Message.Text == "" {
		return Message{}, false
	}
	return Message{
		UpdateID: u.UpdateID,
		FromID:   u.Message.From.ID,
		ChatID:   u.Message.Chat.ID,
		Text:     u.Message.Text,
	}, true
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// call invokes one Bot API method, unmarshalling the result field into
// result when it is non-nil.
func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal %s params: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("%s failed: %s", method, apiResp.Description)
	}
	if result != nil {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
		}
	}
	return nil
}

// GetMe returns the bot's own account info. Called at startup to learn the
// bot's username for command normalization.
func (c *Client) GetMe(ctx context.Context) (BotInfo, error) {
	var info BotInfo
	err := c.call(ctx, "getMe", struct{}{}, &info)
	return info, err
}

// GetUpdates long-polls for new updates. offset must be one past the highest
// update id already seen so Telegram discards acknowledged updates.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	params := map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message"},
	}
	var updates []Update
	err := c.call(ctx, "getUpdates", params, &updates)
	return updates, err
}

// SendText sends a plain-text message to a chat, splitting text that exceeds
// Telegram's length limit into consecutive messages.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		params := map[string]any{
			"chat_id": chatID,
			"text":    chunk,
		}
		if err := c.call(ctx, "sendMessage", params, nil); err != nil {
			return err
		}
	}
	return nil
}

// StartTyping shows the "typing..." indicator in a chat until the returned
// stop function is called, refreshing it on a ticker. Fire-and-forget:
// failures are logged and ignored.
func (c *Client) StartTyping(ctx context.Context, chatID int64) func() {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()

		c.sendChatAction(ctx, chatID)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sendChatAction(ctx, chatID)
			}
		}
	}()
	return cancel
}

func (c *Client) sendChatAction(ctx context.Context, chatID int64) {
	params := map[string]any{
		"chat_id": chatID,
		"action":  "typing",
	}
	if err := c.call(ctx, "sendChatAction", params, nil); err != nil && ctx.Err() == nil {
		log.Printf("Failed to send chat action: %v", err)
	}
}

// SetWebhook registers url to receive updates. When secret is non-empty,
// Telegram echoes it in the X-Telegram-Bot-Api-Secret-Token header on every
// delivery so the receiving server can authenticate requests.
func (c *Client) SetWebhook(ctx context.Context, url string, secret string) error {
	params := map[string]any{
		"url":             url,
		"allowed_updates": []string{"message"},
	}
	if secret != "" {
		params["secret_token"] = secret
	}
	return c.call(ctx, "setWebhook", params, nil)
}

// DeleteWebhook unregisters webhook delivery so getUpdates polling works.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", struct{}{}, nil)
}

// splitMessage splits text into chunks of at most max bytes, preferring to
// cut at a newline so sentences stay intact.
func splitMessage(text string, max int) []string {
	if len(text) <= max {
		return []string{text}
	}

	var chunks []string
	for len(text) > max {
		cut := strings.LastIndex(text[:max], "\n")
		if cut <= 0 {
			cut = max
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
