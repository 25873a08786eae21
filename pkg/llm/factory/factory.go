package factory

import (
	"fmt"
	"time"

	"onechart-be/pkg/llm"
	"onechart-be/pkg/llm/anthropic"
	"onechart-be/pkg/llm/gemini"
	"onechart-be/pkg/llm/ollama"
	"onechart-be/pkg/llm/openai"
)

type Config struct {
	Provider           string
	Model              string
	TranscriptionModel string
	GeminiAPIKey       string
	GeminiBaseURL      string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	AnthropicAPIKey    string
	OllamaBaseURL      string
	Timeout            time.Duration
}

// NewLLMProvider builds the text provider named by cfg.Provider.
func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini", "":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires GOOGLE_GEMINI_API_KEY")
		}
		return gemini.NewGeminiProvider(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.Model, cfg.Timeout), nil
	case "ollama":
		return ollama.NewOllamaProvider(cfg.OllamaBaseURL, cfg.Model, cfg.Timeout), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
		return openai.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.Model, cfg.OpenAIBaseURL), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY")
		}
		return anthropic.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// NewMediaProvider returns the audio-capable backend. Only Gemini accepts inline audio.
func NewMediaProvider(cfg Config) (llm.MediaProvider, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("transcription requires GOOGLE_GEMINI_API_KEY")
	}
	model := cfg.TranscriptionModel
	if model == "" {
		model = cfg.Model
	}
	return gemini.NewGeminiProvider(cfg.GeminiBaseURL, cfg.GeminiAPIKey, model, cfg.Timeout), nil
}
