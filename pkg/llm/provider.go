package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var ErrEmptyResponse = errors.New("llm returned an empty response")

// Message is a chat turn in a provider-agnostic format.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Media is an inline binary attachment such as recorded audio.
type Media struct {
	MimeType string
	Data     []byte
}

type Option func(*Options)

type Options struct {
	Temperature  float64
	MaxTokens    int
	Model        string // overrides the provider default
	SystemPrompt string
	JSON         bool // ask for a JSON-only reply where the backend supports it
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

func WithJSONResponse() Option {
	return func(o *Options) {
		o.JSON = true
	}
}

// ApplyOptions resolves opts over the given defaults.
func ApplyOptions(defaults Options, opts ...Option) Options {
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}

// LLMProvider is any text generation backend.
type LLMProvider interface {
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// MediaProvider is a backend that can read binary input alongside a prompt.
type MediaProvider interface {
	GenerateWithMedia(ctx context.Context, prompt string, media Media, options ...Option) (string, error)
}
