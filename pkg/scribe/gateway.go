// Package scribe turns audio and clinical text into transcripts, drafted documents,
// titles, task lists and assistant replies on top of an llm backend.
package scribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"onechart-be/internal/constant"
	"onechart-be/pkg/llm"

	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrMalformedTasks = errors.New("task extraction returned malformed output")
	ErrEmptyTitle     = errors.New("title inference returned nothing")
	ErrNoAudio        = errors.New("audio payload is empty")
)

type DraftRequest struct {
	Transcript   string
	Context      string
	Instructions string
	PatientInfo  string
	PracticeInfo string
}

type ExtractedTask struct {
	Content string `json:"content"`
	Tag     string `json:"tag"`
}

type ChatTurn struct {
	Role    string `json:"role"` // "user" or "model"
	Content string `json:"content"`
}

// Gateway is the set of AI calls the session flows depend on.
type Gateway interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
	DraftDocument(ctx context.Context, req DraftRequest) (string, error)
	ExtractTasks(ctx context.Context, document string) ([]ExtractedTask, error)
	InferTitle(ctx context.Context, transcript string) (string, error)
	Chat(ctx context.Context, history []ChatTurn, note, transcript string) (string, error)
}

type gateway struct {
	text       llm.LLMProvider
	media      llm.MediaProvider
	taskSchema gojsonschema.JSONLoader
}

func NewGateway(text llm.LLMProvider, media llm.MediaProvider) Gateway {
	return &gateway{
		text:       text,
		media:      media,
		taskSchema: gojsonschema.NewStringLoader(constant.ExtractedTasksSchema),
	}
}

func (g *gateway) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", ErrNoAudio
	}
	text, err := g.media.GenerateWithMedia(ctx, constant.TranscribePromptV1, llm.Media{MimeType: mimeType, Data: audio}, llm.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (g *gateway) DraftDocument(ctx context.Context, req DraftRequest) (string, error) {
	prompt := fmt.Sprintf(constant.DraftDocumentPromptV1,
		req.PracticeInfo, req.PatientInfo, req.Context, req.Transcript, req.Instructions)
	text, err := g.text.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("draft document: %w", err)
	}
	return strings.TrimSpace(text), nil
}

var quotes = regexp.MustCompile(`['"]+`)

func (g *gateway) InferTitle(ctx context.Context, transcript string) (string, error) {
	text, err := g.text.Generate(ctx, fmt.Sprintf(constant.InferTitlePromptV1, transcript), llm.WithMaxTokens(32))
	if err != nil {
		return "", fmt.Errorf("infer title: %w", err)
	}
	title := strings.TrimSpace(quotes.ReplaceAllString(text, ""))
	if title == "" {
		return "", ErrEmptyTitle
	}
	return title, nil
}

func (g *gateway) ExtractTasks(ctx context.Context, document string) ([]ExtractedTask, error) {
	text, err := g.text.Generate(ctx, fmt.Sprintf(constant.ExtractTasksPromptV1, document), llm.WithJSONResponse(), llm.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("extract tasks: %w", err)
	}
	return ParseTasks(g.taskSchema, text)
}

func (g *gateway) Chat(ctx context.Context, history []ChatTurn, note, transcript string) (string, error) {
	messages := make([]llm.Message, 0, len(history))
	for _, turn := range history {
		role := llm.RoleUser
		if turn.Role == constant.ChatMessageRoleModel || turn.Role == llm.RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}

	text, err := g.text.Chat(ctx, messages, llm.WithSystemPrompt(fmt.Sprintf(constant.OpalSystemPromptV1, note, transcript)))
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return constant.OpalEmptyReply, nil
	}
	return text, nil
}

// ParseTasks strips markdown fences, checks the reply against schema and decodes it.
func ParseTasks(schema gojsonschema.JSONLoader, raw string) ([]ExtractedTask, error) {
	data := bytes.TrimSpace([]byte(raw))
	data = bytes.TrimPrefix(data, []byte("```json"))
	data = bytes.TrimPrefix(data, []byte("```"))
	data = bytes.TrimSuffix(data, []byte("```"))
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []ExtractedTask{}, nil
	}

	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTasks, err)
	}
	if !result.Valid() {
		reasons := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			reasons = append(reasons, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedTasks, strings.Join(reasons, "; "))
	}

	var tasks []ExtractedTask
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTasks, err)
	}
	if tasks == nil {
		tasks = []ExtractedTask{}
	}
	return tasks, nil
}
