package assist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChatRelaysConversation(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Turn it off from the Devices tab."}},
			},
		})
	}))
	defer srv.Close()

	svc := NewService(srv.URL, "test-key", "gpt-4o-mini", zap.NewNop())
	reply, err := svc.Chat(context.Background(), []Message{{Role: "user", Content: "How do I turn off my lamp?"}})
	require.NoError(t, err)
	assert.Equal(t, "Turn it off from the Devices tab.", reply)

	require.Len(t, got.Messages, 2, "system prompt is prepended")
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "gpt-4o-mini", got.Model)
}

func TestChatSurfacesUpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "rate limited"}})
	}))
	defer srv.Close()

	svc := NewService(srv.URL, "", "gpt-4o-mini", zap.NewNop())
	_, err := svc.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestChatRequiresConfiguration(t *testing.T) {
	svc := NewService("", "", "", zap.NewNop())
	assert.False(t, svc.Enabled())
	_, err := svc.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}

func TestChatRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	svc := NewService(srv.URL, "", "gpt-4o-mini", zap.NewNop())
	_, err := svc.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
