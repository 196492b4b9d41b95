package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/fahmizainal17/Telegram-AI-Chatbot/internal/conversation"
)

func TestToGenaiContents_MapsRolesAndText(t *testing.T) {
	turns := []conversation.Turn{
		{Role: conversation.RoleUser, Text: "Hello"},
		{Role: conversation.RoleModel, Text: "Hi there!"},
	}

	contents := toGenaiContents(turns)

	require.Len(t, contents, 2)
	require.Equal(t, genai.RoleUser, contents[0].Role)
	require.Equal(t, "Hello", contents[0].Parts[0].Text)
	require.Equal(t, genai.RoleModel, contents[1].Role)
	require.Equal(t, "Hi there!", contents[1].Parts[0].Text)
}

func TestReplyText_ConcatenatesTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Role: string(genai.RoleModel),
					Parts: []*genai.Part{
						{Text: "Hi "},
						{Text: "there!"},
					},
				},
			},
		},
	}

	text, err := replyText(resp)

	require.NoError(t, err)
	require.Equal(t, "Hi there!", text)
}

func TestReplyText_NoCandidatesIsError(t *testing.T) {
	resp := &genai.GenerateContentResponse{}

	_, err := replyText(resp)

	require.Error(t, err)
}

func TestReplyText_NilCandidateContentIsError(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{}},
	}

	_, err := replyText(resp)

	require.Error(t, err)
}

func TestReplyText_EmptyTextIsError(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Role:  string(genai.RoleModel),
					Parts: []*genai.Part{{Text: ""}},
				},
			},
		},
	}

	_, err := replyText(resp)

	require.Error(t, err)
}
