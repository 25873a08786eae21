package anthropic

import (
	"context"
	"fmt"
	"strings"

	"onechart-be/pkg/llm"

	"github.com/liushuangls/go-anthropic/v2"
)

const defaultMaxTokens = 4096

type AnthropicProvider struct {
	client    *anthropic.Client
	ModelName string
}

var _ llm.LLMProvider = &AnthropicProvider{}

func NewAnthropicProvider(apiKey, modelName string) *AnthropicProvider {
	return &AnthropicProvider{
		client:    anthropic.NewClient(apiKey),
		ModelName: modelName,
	}
}

func (p *AnthropicProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: 0.4, MaxTokens: defaultMaxTokens}, opts...)

	var systemParts []anthropic.MessageSystemPart
	if options.SystemPrompt != "" {
		systemParts = append(systemParts, anthropic.MessageSystemPart{Type: "text", Text: options.SystemPrompt})
	}

	messages := make([]anthropic.Message, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			systemParts = append(systemParts, anthropic.MessageSystemPart{Type: "text", Text: msg.Content})
		case llm.RoleAssistant, "model":
			messages = append(messages, anthropic.Message{
				Role:    anthropic.RoleAssistant,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(msg.Content)},
			})
		default:
			messages = append(messages, anthropic.Message{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(msg.Content)},
			})
		}
	}

	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	temperature := float32(options.Temperature)
	req := anthropic.MessagesRequest{
		Model:       anthropic.Model(model),
		Messages:    messages,
		MaxTokens:   options.MaxTokens,
		Temperature: &temperature,
	}
	if len(systemParts) > 0 {
		req.MultiSystem = systemParts
	}

	resp, err := p.client.CreateMessages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			sb.WriteString(*block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", llm.ErrEmptyResponse
	}
	return sb.String(), nil
}

func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
