package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/conversation"
)

// ClaudeGenerator generates replies using Anthropic's Claude models.
type ClaudeGenerator struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewClaudeGenerator creates a generator backed by the given client and model
func NewClaudeGenerator(client anthropic.Client, model anthropic.Model, maxTokens int64) *ClaudeGenerator {
	return &ClaudeGenerator{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}
}

// GenerateSingle sends a one-shot generation request with no history.
func (g *ClaudeGenerator) GenerateSingle(ctx context.Context, prompt string) (string, error) {
	turns := []conversation.Turn{{Role: conversation.RoleUser, Text: prompt}}
	return g.generate(ctx, toMessageParams(turns))
}

// GenerateWithHistory answers the prompt in the context of prior turns.
func (g *ClaudeGenerator) GenerateWithHistory(ctx context.Context, history []conversation.Turn, prompt string) (string, error) {
	turns := make([]conversation.Turn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, conversation.Turn{Role: conversation.RoleUser, Text: prompt})
	return g.generate(ctx, toMessageParams(turns))
}

func (g *ClaudeGenerator) generate(ctx context.Context, messages []anthropic.MessageParam) (string, error) {
	response, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create message: %w", err)
	}

	var sb strings.Builder
	for _, block := range response.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(textBlock.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("response contains no text content")
	}
	return sb.String(), nil
}

// toMessageParams converts stored turns to API message params. The API
// requires the conversation to open with a user message and rejects
// consecutive messages with the same role, so leading model turns are
// dropped and adjacent same-role turns are merged into a single message.
func toMessageParams(turns []conversation.Turn) []anthropic.MessageParam {
	params := []anthropic.MessageParam{}
	for _, t := range turns {
		if len(params) == 0 && t.Role == conversation.RoleModel {
			continue
		}

		block := anthropic.NewTextBlock(t.Text)
		if len(params) > 0 && paramRole(t.Role) == params[len(params)-1].Role {
			last := &params[len(params)-1]
			last.Content = append(last.Content, block)
			continue
		}

		if t.Role == conversation.RoleModel {
			params = append(params, anthropic.NewAssistantMessage(block))
		} else {
			params = append(params, anthropic.NewUserMessage(block))
		}
	}
	return params
}

func paramRole(role conversation.Role) anthropic.MessageParamRole {
	if role == conversation.RoleModel {
		return anthropic.MessageParamRoleAssistant
	}
	return anthropic.MessageParamRoleUser
}
