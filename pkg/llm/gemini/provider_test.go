package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"onechart-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWithMediaSendsInlineAudio(t *testing.T) {
	var got geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello "},{"text":"doctor"}]}}]}`))
	}))
	defer server.Close()

	provider := NewGeminiProvider(server.URL, "key", "gemini-test", time.Second)
	text, err := provider.GenerateWithMedia(context.Background(), "Transcribe", llm.Media{MimeType: "audio/webm", Data: []byte("abc")})
	require.NoError(t, err)
	assert.Equal(t, "Hello doctor", text)

	require.Len(t, got.Contents, 1)
	require.Len(t, got.Contents[0].Parts, 2)
	assert.Equal(t, "audio/webm", got.Contents[0].Parts[0].InlineData.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("abc")), got.Contents[0].Parts[0].InlineData.Data)
	assert.Equal(t, "Transcribe", got.Contents[0].Parts[1].Text)
}

func TestChatMapsRolesAndSystemPrompt(t *testing.T) {
	var got geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"[]"}]}}]}`))
	}))
	defer server.Close()

	provider := NewGeminiProvider(server.URL, "key", "gemini-test", time.Second)
	_, err := provider.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be brief"},
		{Role: llm.RoleUser, Content: "hi"},
		{Role: llm.RoleAssistant, Content: "hello"},
	}, llm.WithJSONResponse())
	require.NoError(t, err)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be brief", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 2)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
}

func TestGenerateErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models/empty:generateContent" {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`quota`))
	}))
	defer server.Close()

	provider := NewGeminiProvider(server.URL, "key", "gemini-test", time.Second)
	_, err := provider.Generate(context.Background(), "x")
	assert.ErrorContains(t, err, "status 429")

	_, err = provider.Generate(context.Background(), "x", llm.WithModel("empty"))
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}
