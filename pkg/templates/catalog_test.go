package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	list := Defaults()
	require.Len(t, list, 4)
	assert.Equal(t, "t1", list[0].Id)
	assert.Equal(t, "SOAP Note", list[0].Name)
	assert.Equal(t, "Create a standard SOAP note. Structure: Subjective, Objective, Assessment, Plan.", list[0].SystemPrompt)
	assert.Equal(t, "Psychiatric Evaluation", list[3].Name)

	list[0].Name = "changed"
	assert.Equal(t, "SOAP Note", Defaults()[0].Name)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	_, err := Parse([]byte("templates:\n  - id: a\n    name: A\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("templates:\n  - {id: a, name: A, system_prompt: x}\n  - {id: a, name: B, system_prompt: y}\n"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = Parse([]byte("templates: ["))
	assert.Error(t, err)
}
