package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"onechart-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	var got ollamaChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"ok"},"done":true}`))
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3", time.Second)
	reply, err := provider.Generate(context.Background(), "hi", llm.WithSystemPrompt("sys"), llm.WithJSONResponse(), llm.WithMaxTokens(50))
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "json", got.Format)
	assert.Equal(t, 50, got.Options.NumPredict)
	assert.False(t, got.Stream)
}

func TestChatStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewOllamaProvider(server.URL, "llama3", time.Second).Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "status 500")
}
