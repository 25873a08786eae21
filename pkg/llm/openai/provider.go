package openai

import (
	"context"
	"fmt"

	"onechart-be/pkg/llm"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

type OpenAIProvider struct {
	client    *openai.Client
	ModelName string
}

var _ llm.LLMProvider = &OpenAIProvider{}

// NewOpenAIProvider also serves OpenAI-compatible gateways when baseURL is set.
func NewOpenAIProvider(apiKey, modelName, baseURL string) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(config),
		ModelName: modelName,
	}
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: 0.4}, opts...)

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if options.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: options.SystemPrompt})
	}
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case llm.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case llm.RoleAssistant, "model":
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}

	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	temperature := float32(options.Temperature)
	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: &temperature,
	}
	if options.MaxTokens > 0 {
		req.MaxTokens = options.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
