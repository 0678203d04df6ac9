package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatReturnsAssistantContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		resp := chatResponse{
			Choices: []choice{
				{Message: message{Role: "assistant", Content: `{"ticker":"BTCUSD"}`}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewOpenAICompatibleClient(server.URL, "test-key", "test-model", 1000, 0.1, 5*time.Second)

	content, err := client.Chat(context.Background(), "extract trades", "ocr text here")
	require.NoError(t, err)
	assert.Equal(t, `{"ticker":"BTCUSD"}`, content)
}

func TestChatRetriesOnServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		resp := chatResponse{
			Choices: []choice{{Message: message{Content: "ok"}}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewOpenAICompatibleClient(server.URL, "test-key", "test-model", 0, 0, 5*time.Second)
	client.retryDelay = 10 * time.Millisecond

	content, err := client.Chat(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "ok", content)
	assert.Equal(t, 3, calls)
}

func TestChatFailsAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewOpenAICompatibleClient(server.URL, "test-key", "test-model", 0, 0, 5*time.Second)
	client.retryDelay = 10 * time.Millisecond

	_, err := client.Chat(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 retries")
}

func TestChatRejectsEmptyAPIKey(t *testing.T) {
	client := NewOpenAICompatibleClient("http://localhost", "", "model", 0, 0, time.Second)

	_, err := client.Chat(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is empty")
}

func TestChatSurfacesAPIErrorObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := chatResponse{
			Error: &apiError{Message: "rate limited", Type: "rate_limit_error", Code: "429"},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewOpenAICompatibleClient(server.URL, "test-key", "test-model", 0, 0, 5*time.Second)
	client.retryDelay = 10 * time.Millisecond

	_, err := client.Chat(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
