package factory

import (
	"testing"

	"onechart-be/pkg/llm/anthropic"
	"onechart-be/pkg/llm/gemini"
	"onechart-be/pkg/llm/ollama"
	"onechart-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	cfg := Config{Model: "m", GeminiAPIKey: "g", OpenAIAPIKey: "o", AnthropicAPIKey: "a"}

	cases := map[string]interface{}{
		"gemini":    &gemini.GeminiProvider{},
		"ollama":    &ollama.OllamaProvider{},
		"openai":    &openai.OpenAIProvider{},
		"anthropic": &anthropic.AnthropicProvider{},
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			cfg.Provider = name
			p, err := NewLLMProvider(cfg)
			require.NoError(t, err)
			assert.IsType(t, want, p)
		})
	}

	_, err := NewLLMProvider(Config{Provider: "bard"})
	assert.Error(t, err)

	_, err = NewLLMProvider(Config{Provider: "anthropic"})
	assert.Error(t, err)
}

func TestNewMediaProviderUsesTranscriptionModel(t *testing.T) {
	p, err := NewMediaProvider(Config{GeminiAPIKey: "g", Model: "text", TranscriptionModel: "audio"})
	require.NoError(t, err)
	assert.Equal(t, "audio", p.(*gemini.GeminiProvider).ModelName)

	_, err = NewMediaProvider(Config{})
	assert.Error(t, err)
}
