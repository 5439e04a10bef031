package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSendsModelAndAuth(t *testing.T) {
	var gotAuth string
	var gotReq ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(ChatResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: "hello"}}},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient(Config{
		Model:   "gpt-4o-mini",
		APIKey:  "sk-test",
		BaseURL: server.URL,
	}, nil)

	resp, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	msg, ok := resp.FirstChoice()
	require.True(t, ok)
	assert.Equal(t, "hello", msg.Content)
}

func TestChatRetriesOnServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(ChatResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: "recovered"}}},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient(Config{Model: "m", BaseURL: server.URL, MaxRetries: 2}, nil)
	resp, err := client.Chat(context.Background(), &ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "recovered", resp.Choices[0].Message.Content)
}

func TestChatDoesNotRetryClientError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewOpenAIClient(Config{Model: "m", BaseURL: server.URL, MaxRetries: 3}, nil)
	_, err := client.Chat(context.Background(), &ChatRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestParseToolArguments(t *testing.T) {
	args, err := ParseToolArguments(`{"recipientName":"Jane","subject":"Hi"}`)
	require.NoError(t, err)
	assert.Equal(t, "Jane", args["recipientName"])
}

func TestParseToolArgumentsRepairsBrokenJSON(t *testing.T) {
	// Trailing comma, a classic model emission.
	args, err := ParseToolArguments(`{"subject": "Hi", }`)
	require.NoError(t, err)
	assert.Equal(t, "Hi", args["subject"])
}

func TestParseToolArgumentsEmpty(t *testing.T) {
	args, err := ParseToolArguments("")
	require.NoError(t, err)
	assert.Empty(t, args)
}
