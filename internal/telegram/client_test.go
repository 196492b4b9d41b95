package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestClient points a Client at a fake Bot API server.
func newTestClient(serverURL string) *Client {
	return NewClientWithBaseURL("12345:TESTTOKEN", &http.Client{Timeout: 5 * time.Second}, serverURL)
}

func TestClient_GetUpdates_SendsOffsetAndParsesResult(t *testing.T) {
	var gotPath string
	var gotParams map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotParams))
		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":10,"message":{"message_id":1,"from":{"id":42},"chat":{"id":42},"text":"Hello"}}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	updates, err := client.GetUpdates(context.Background(), 10, 30*time.Second)
	require.NoError(t, err)

	require.Equal(t, "/bot12345:TESTTOKEN/getUpdates", gotPath)
	require.Equal(t, float64(10), gotParams["offset"])
	require.Equal(t, float64(30), gotParams["timeout"])

	require.Len(t, updates, 1)
	msg, ok := FromUpdate(updates[0])
	require.True(t, ok)
	require.Equal(t, int64(42), msg.FromID)
	require.Equal(t, "Hello", msg.Text)
}

func TestClient_SendText_SingleMessage(t *testing.T) {
	var texts []string
	server := httptest.NewServer(recordSendMessage(t, &texts))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.SendText(context.Background(), 42, "Hi there!")
	require.NoError(t, err)

	require.Equal(t, []string{"Hi there!"}, texts)
}

func TestClient_SendText_SplitsLongMessages(t *testing.T) {
	var texts []string
	server := httptest.NewServer(recordSendMessage(t, &texts))
	defer server.Close()

	client := newTestClient(server.URL)

	long := strings.Repeat("a", maxMessageLen) + "\n" + strings.Repeat("b", maxMessageLen) + "\ntail"
	err := client.SendText(context.Background(), 42, long)
	require.NoError(t, err)

	require.Len(t, texts, 3)
	for _, text := range texts {
		require.LessOrEqual(t, len(text), maxMessageLen)
	}
	require.Equal(t, "tail", texts[2])
}

func TestClient_APIErrorIncludesDescription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetMe(context.Background())
	require.ErrorContains(t, err, "Unauthorized")
}

func TestClient_SetWebhook_IncludesSecretToken(t *testing.T) {
	var gotParams map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotParams))
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.SetWebhook(context.Background(), "https://bot.example.com/telegram/webhook", "s3cret")
	require.NoError(t, err)

	require.Equal(t, "https://bot.example.com/telegram/webhook", gotParams["url"])
	require.Equal(t, "s3cret", gotParams["secret_token"])
}

func TestFromUpdate_DiscardsUnusableUpdates(t *testing.T) {
	valid := Update{
		UpdateID: 1,
		Message:  &chatMessage{From: &user{ID: 42}, Chat: chat{ID: 42}, Text: "hi"},
	}
	_, ok := FromUpdate(valid)
	require.True(t, ok)

	noMessage := Update{UpdateID: 2}
	_, ok = FromUpdate(noMessage)
	require.False(t, ok)

	noSender := Update{UpdateID: 3, Message: &chatMessage{Chat: chat{ID: 42}, Text: "hi"}}
	_, ok = FromUpdate(noSender)
	require.False(t, ok)

	noText := Update{UpdateID: 4, Message: &chatMessage{From: &user{ID: 42}, Chat: chat{ID: 42}}}
	_, ok = FromUpdate(noText)
	require.False(t, ok)

	fromBot := Update{UpdateID: 5, Message: &chatMessage{From: &user{ID: 43, IsBot: true}, Chat: chat{ID: 42}, Text: "hi"}}
	_, ok = FromUpdate(fromBot)
	require.False(t, ok)
}

func TestSplitMessage_PrefersNewlineBoundary(t *testing.T) {
	text := strings.Repeat("x", 3990) + "\n" + strings.Repeat("y", 50)

	chunks := splitMessage(text, 4000)

	require.Len(t, chunks, 2)
	require.Equal(t, strings.Repeat("x", 3990), chunks[0])
	require.Equal(t, strings.Repeat("y", 50), chunks[1])
}

func TestSplitMessage_ShortTextIsUnchanged(t *testing.T) {
	require.Equal(t, []string{"Hi there!"}, splitMessage("Hi there!", 4000))
}

// recordSendMessage appends the text of each sendMessage call to texts.
func recordSendMessage(t *testing.T, texts *[]string) http.HandlerFunc {
	var mu sync.Mutex
	return func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/sendMessage"))
		var params map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))

		mu.Lock()
		*texts = append(*texts, params["text"].(string))
		mu.Unlock()

		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}
}
