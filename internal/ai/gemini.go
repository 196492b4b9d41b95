package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/conversation"
)

// GeminiGenerator generates replies using Google's Gemini models.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator backed by the given client and model
func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	return &GeminiGenerator{
		client: client,
		model:  model,
	}
}

// GenerateSingle sends a one-shot generation request with no history.
func (g *GeminiGenerator) GenerateSingle(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return replyText(resp)
}

// GenerateWithHistory starts a chat seeded with prior turns and sends the
// prompt as the newest user message.
func (g *GeminiGenerator) GenerateWithHistory(ctx context.Context, history []conversation.Turn, prompt string) (string, error) {
	chat, err := g.client.Chats.Create(ctx, g.model, nil, toGenaiContents(history))
	if err != nil {
		return "", fmt.Errorf("failed to create chat: %w", err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to send chat message: %w", err)
	}

	return replyText(resp)
}

// toGenaiContents converts stored turns to the SDK's content type, oldest
// first. Stored roles use the SDK's role vocabulary directly.
func toGenaiContents(turns []conversation.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		contents = append(contents, genai.NewContentFromText(t.Text, genai.Role(t.Role)))
	}
	return contents
}

// replyText extracts the reply from a generation response. Responses with no
// candidates, no candidate content, or no text parts are malformed even when
// the API call itself succeeded, and are reported as errors.
func replyText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("response has no candidate content")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("response candidate contains no text")
	}
	return sb.String(), nil
}
