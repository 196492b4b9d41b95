//go:build e2e

// Package testutil provides shared helpers for end-to-end tests: a fake
// Telegram Bot API server for hermetic pipeline tests, a scripted generator,
// and live-API configuration loaded from the environment.
package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/ai"
	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/bot"
	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/conversation"
	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/telegram"
	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/telemetry"
)

// TestConfig holds configuration for end-to-end tests
type TestConfig struct {
	GeminiModel    string
	AnthropicModel string
	MaxTokens      int64
	Timeout        time.Duration
	GeminiKey      string
	AnthropicKey   string
}

// LoadTestConfig loads test configuration from environment variables
func LoadTestConfig() TestConfig {
	config := TestConfig{
		GeminiModel:    "gemini-2.0-flash",
		AnthropicModel: "claude-3-5-sonnet-20241022",
		MaxTokens:      1024,
		Timeout:        60 * time.Second,
	}

	if model := os.Getenv("E2E_GEMINI_MODEL"); model != "" {
		config.GeminiModel = model
	}
	if model := os.Getenv("E2E_ANTHROPIC_MODEL"); model != "" {
		config.AnthropicModel = model
	}
	if tokens := os.Getenv("E2E_MAX_TOKENS"); tokens != "" {
		if val, err := strconv.ParseInt(tokens, 10, 64); err == nil {
			config.MaxTokens = val
		}
	}
	if timeout := os.Getenv("E2E_TIMEOUT"); timeout != "" {
		if val, err := strconv.Atoi(timeout); err == nil {
			config.Timeout = time.Duration(val) * time.Second
		}
	}

	config.GeminiKey = os.Getenv("GEMINI_API_KEY")
	config.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")

	return config
}

// TestHarness provides utilities for end-to-end testing
type TestHarness struct {
	t      *testing.T
	config TestConfig
}

// NewTestHarness creates a new test harness
func NewTestHarness(t *testing.T) *TestHarness {
	return &TestHarness{
		t:      t,
		config: LoadTestConfig(),
	}
}

// WithTimeout runs fn under the configured test timeout.
func (h *TestHarness) WithTimeout(fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	return fn(ctx)
}

// CreateGeminiGenerator returns a generator backed by the live Gemini API,
// skipping the test when GEMINI_API_KEY is not set.
func (h *TestHarness) CreateGeminiGenerator(ctx context.Context) *ai.GeminiGenerator {
	if h.config.GeminiKey == "" {
		h.t.Skip("GEMINI_API_KEY not set, skipping live Gemini test")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  h.config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	require.NoError(h.t, err)
	return ai.NewGeminiGenerator(client, h.config.GeminiModel)
}

// CreateClaudeGenerator returns a generator backed by the live Anthropic API,
// skipping the test when ANTHROPIC_API_KEY is not set.
func (h *TestHarness) CreateClaudeGenerator() *ai.ClaudeGenerator {
	if h.config.AnthropicKey == "" {
		h.t.Skip("ANTHROPIC_API_KEY not set, skipping live Claude test")
	}
	client := anthropic.NewClient(option.WithAPIKey(h.config.AnthropicKey))
	return ai.NewClaudeGenerator(client, anthropic.Model(h.config.AnthropicModel), h.config.MaxTokens)
}

// StartBot wires a full pipeline against the fake Telegram server and starts
// it polling in the background. The returned store is the live conversation
// state, useful for asserting on history.
func (h *TestHarness) StartBot(ctx context.Context, fake *FakeTelegram, generator ai.Generator) *conversation.Store {
	tel, err := telemetry.NewProvider(ctx, telemetry.Config{})
	require.NoError(h.t, err)

	client := fake.Client()
	store := conversation.NewStore()
	responder := bot.NewResponder(store, generator, 10*time.Second, tel)
	dispatcher := bot.NewDispatcher(store, fakeBotUsername)
	queue := bot.NewQueue(4, 8)
	handler := bot.NewHandler(client, responder, dispatcher, queue)

	poller := telegram.NewPoller(client, 0)
	go func() {
		_ = handler.Run(ctx, poller.Poll(ctx))
	}()
	return store
}

// HistoryCall records one GenerateWithHistory invocation.
type HistoryCall struct {
	History []conversation.Turn
	Prompt  string
}

// ScriptedGenerator returns a canned reply and records every call. Safe for
// concurrent use.
type ScriptedGenerator struct {
	mu        sync.Mutex
	Reply     string
	singles   []string
	histories []HistoryCall
}

func (g *ScriptedGenerator) GenerateSingle(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.singles = append(g.singles, prompt)
	return g.Reply, nil
}

func (g *ScriptedGenerator) GenerateWithHistory(_ context.Context, history []conversation.Turn, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.histories = append(g.histories, HistoryCall{History: history, Prompt: prompt})
	return g.Reply, nil
}

// SetReply changes the canned reply for subsequent calls.
func (g *ScriptedGenerator) SetReply(reply string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Reply = reply
}

// SingleCalls returns the prompts passed to GenerateSingle so far.
func (g *ScriptedGenerator) SingleCalls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.singles...)
}

// HistoryCalls returns the GenerateWithHistory invocations so far.
func (g *ScriptedGenerator) HistoryCalls() []HistoryCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]HistoryCall(nil), g.histories...)
}

const (
	fakeBotToken    = "12345:E2ETOKEN"
	fakeBotUsername = "E2EBot"
)

// SentMessage is one sendMessage call recorded by the fake server.
type SentMessage struct {
	ChatID int64
	Text   string
}

// FakeTelegram is an in-process Bot API server for hermetic end-to-end tests.
type FakeTelegram struct {
	mu      sync.Mutex
	updates []map[string]any
	nextID  int64

	sent   chan SentMessage
	server *httptest.Server
}

// NewFakeTelegram starts a fake Bot API server that is shut down with the
// test.
func NewFakeTelegram(t *testing.T) *FakeTelegram {
	f := &FakeTelegram{
		nextID: 1,
		sent:   make(chan SentMessage, 32),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.dispatch))
	t.Cleanup(f.server.Close)
	return f
}

// Client returns a telegram client pointed at this fake server.
func (f *FakeTelegram) Client() *telegram.Client {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	return telegram.NewClientWithBaseURL(fakeBotToken, httpClient, f.server.URL)
}

// QueueText enqueues an inbound text message to be returned by getUpdates.
func (f *FakeTelegram) QueueText(fromID, chatID int64, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, map[string]any{
		"update_id": f.nextID,
		"message": map[string]any{
			"message_id": f.nextID,
			"from":       map[string]any{"id": fromID, "is_bot": false},
			"chat":       map[string]any{"id": chatID},
			"text":       text,
		},
	})
	f.nextID++
}

// WaitForReply blocks until the bot sends a message or the deadline passes.
func (f *FakeTelegram) WaitForReply(timeout time.Duration) (SentMessage, bool) {
	select {
	case msg := <-f.sent:
		return msg, true
	case <-time.After(timeout):
		return SentMessage{}, false
	}
}

func (f *FakeTelegram) dispatch(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimPrefix(r.URL.Path, "/bot"+fakeBotToken+"/")
	switch method {
	case "getMe":
		writeResult(w, map[string]any{"id": 99, "is_bot": true, "username": fakeBotUsername})
	case "getUpdates":
		f.handleGetUpdates(w, r)
	case "sendMessage":
		f.handleSendMessage(w, r)
	case "sendChatAction", "setWebhook", "deleteWebhook":
		writeResult(w, true)
	default:
		http.NotFound(w, r)
	}
}

func (f *FakeTelegram) handleGetUpdates(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Offset int64 `json:"offset"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	pending := []map[string]any{}
	for _, u := range f.updates {
		if u["update_id"].(int64) >= req.Offset {
			pending = append(pending, u)
		}
	}
	f.mu.Unlock()

	if len(pending) == 0 {
		// Brief pause so an empty poll loop does not spin hot.
		time.Sleep(25 * time.Millisecond)
	}
	writeResult(w, pending)
}

func (f *FakeTelegram) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatID int64  `json:"chat_id"`
		Text   string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.sent <- SentMessage{ChatID: req.ChatID, Text: req.Text}
	writeResult(w, map[string]any{"message_id": 1})
}

func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}
