package ai

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/require"

	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/conversation"
)

func TestToMessageParams_MapsRoles(t *testing.T) {
	turns := []conversation.Turn{
		{Role: conversation.RoleUser, Text: "Hello"},
		{Role: conversation.RoleModel, Text: "Hi there!"},
		{Role: conversation.RoleUser, Text: "How are you?"},
	}

	params := toMessageParams(turns)

	require.Len(t, params, 3)
	require.Equal(t, anthropic.MessageParamRoleUser, params[0].Role)
	require.Equal(t, anthropic.MessageParamRoleAssistant, params[1].Role)
	require.Equal(t, anthropic.MessageParamRoleUser, params[2].Role)
	require.Equal(t, "Hello", params[0].Content[0].OfText.Text)
	require.Equal(t, "Hi there!", params[1].Content[0].OfText.Text)
}

func TestToMessageParams_MergesConsecutiveSameRoleTurns(t *testing.T) {
	turns := []conversation.Turn{
		{Role: conversation.RoleUser, Text: "first"},
		{Role: conversation.RoleUser, Text: "second"},
		{Role: conversation.RoleModel, Text: "reply"},
	}

	params := toMessageParams(turns)

	require.Len(t, params, 2)
	require.Equal(t, anthropic.MessageParamRoleUser, params[0].Role)
	require.Len(t, params[0].Content, 2)
	require.Equal(t, "first", params[0].Content[0].OfText.Text)
	require.Equal(t, "second", params[0].Content[1].OfText.Text)
}

func TestToMessageParams_DropsLeadingModelTurns(t *testing.T) {
	turns := []conversation.Turn{
		{Role: conversation.RoleModel, Text: "orphaned reply"},
		{Role: conversation.RoleUser, Text: "Hello"},
		{Role: conversation.RoleModel, Text: "Hi there!"},
	}

	params := toMessageParams(turns)

	require.Len(t, params, 2)
	require.Equal(t, anthropic.MessageParamRoleUser, params[0].Role)
	require.Equal(t, "Hello", params[0].Content[0].OfText.Text)
}

func TestToMessageParams_EmptyHistory(t *testing.T) {
	require.Empty(t, toMessageParams(nil))
}
