package scribe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"onechart-be/internal/constant"
	"onechart-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

type stubProvider struct {
	reply   string
	err     error
	prompts []string
	history []llm.Message
	options llm.Options
	media   llm.Media
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	s.history = history
	s.options = llm.ApplyOptions(llm.Options{}, opts...)
	for _, m := range history {
		s.prompts = append(s.prompts, m.Content)
	}
	return s.reply, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (s *stubProvider) GenerateWithMedia(ctx context.Context, prompt string, media llm.Media, opts ...llm.Option) (string, error) {
	s.media = media
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func TestTranscribe(t *testing.T) {
	p := &stubProvider{reply: "  Patient reports chest pain.\n"}
	g := NewGateway(p, p)

	text, err := g.Transcribe(context.Background(), []byte{1, 2}, "audio/webm")
	require.NoError(t, err)
	assert.Equal(t, "Patient reports chest pain.", text)
	assert.Equal(t, "audio/webm", p.media.MimeType)

	_, err = g.Transcribe(context.Background(), nil, "audio/webm")
	assert.ErrorIs(t, err, ErrNoAudio)

	p.err = errors.New("quota")
	_, err = g.Transcribe(context.Background(), []byte{1}, "audio/webm")
	assert.ErrorContains(t, err, "quota")
}

func TestDraftDocumentComposesPrompt(t *testing.T) {
	p := &stubProvider{reply: "# SOAP"}
	g := NewGateway(p, p)

	doc, err := g.DraftDocument(context.Background(), DraftRequest{
		Transcript:   "T-TEXT",
		Context:      "C-TEXT",
		Instructions: "I-TEXT",
		PatientInfo:  "Jane (Female)",
		PracticeInfo: "City Cardiology Clinic",
	})
	require.NoError(t, err)
	assert.Equal(t, "# SOAP", doc)

	prompt := p.prompts[0]
	for _, part := range []string{"T-TEXT", "C-TEXT", "I-TEXT", "Jane (Female)", "City Cardiology Clinic"} {
		assert.Contains(t, prompt, part)
	}
}

func TestInferTitleStripsQuotes(t *testing.T) {
	p := &stubProvider{reply: `"Hypertension Consult"`}
	g := NewGateway(p, p)

	title, err := g.InferTitle(context.Background(), "bp high")
	require.NoError(t, err)
	assert.Equal(t, "Hypertension Consult", title)

	p.reply = `""`
	_, err = g.InferTitle(context.Background(), "bp high")
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestExtractTasks(t *testing.T) {
	p := &stubProvider{reply: "```json\n[{\"content\":\"Order chest X-ray\",\"tag\":\"Lab/Imaging\"}]\n```"}
	g := NewGateway(p, p)

	tasks, err := g.ExtractTasks(context.Background(), "Assessment: Hypertension")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Order chest X-ray", tasks[0].Content)
	assert.Equal(t, "Lab/Imaging", tasks[0].Tag)
	assert.True(t, p.options.JSON)
}

func TestParseTasksRejectsMalformed(t *testing.T) {
	schema := gojsonschema.NewStringLoader(constant.ExtractedTasksSchema)

	cases := map[string]string{
		"object":     `{"content":"x"}`,
		"not json":   `Sure! Here are the tasks`,
		"bad fields": `[{"content": 42}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTasks(schema, raw)
			assert.ErrorIs(t, err, ErrMalformedTasks)
		})
	}

	tasks, err := ParseTasks(schema, "")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = ParseTasks(schema, "[]")
	require.NoError(t, err)
	assert.NotNil(t, tasks)
}

func TestChat(t *testing.T) {
	p := &stubProvider{reply: "Referral letter body"}
	g := NewGateway(p, p)

	reply, err := g.Chat(context.Background(), []ChatTurn{
		{Role: "user", Content: "hi"},
		{Role: "model", Content: "hello"},
		{Role: "user", Content: "Create a referral letter"},
	}, "NOTE", "TRANSCRIPT")
	require.NoError(t, err)
	assert.Equal(t, "Referral letter body", reply)
	require.Len(t, p.history, 3)
	assert.Equal(t, llm.RoleAssistant, p.history[1].Role)
	assert.True(t, strings.Contains(p.options.SystemPrompt, "NOTE"))
	assert.True(t, strings.Contains(p.options.SystemPrompt, "TRANSCRIPT"))

	p.reply = " "
	reply, err = g.Chat(context.Background(), nil, "", "")
	require.NoError(t, err)
	assert.Equal(t, constant.OpalEmptyReply, reply)
}
