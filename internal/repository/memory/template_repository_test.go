package memory

import (
	"testing"

	"onechart-be/internal/entity"
	"onechart-be/pkg/templates"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRepositorySeedsDefaultsPerUser(t *testing.T) {
	repo := NewTemplateRepository(templates.Defaults())
	alice, bob := uuid.New(), uuid.New()

	require.Len(t, repo.List(alice), 4)

	created := repo.Create(alice, entity.Template{Name: "Referral", SystemPrompt: "Write a referral."})
	assert.NotEmpty(t, created.Id)
	assert.Len(t, repo.List(alice), 5)
	assert.Len(t, repo.List(bob), 4)

	found, ok := repo.Find(alice, created.Id)
	require.True(t, ok)
	assert.Equal(t, "Referral", found.Name)

	assert.True(t, repo.Delete(alice, "t1"))
	assert.False(t, repo.Delete(alice, "t1"))
	_, ok = repo.Find(alice, "t1")
	assert.False(t, ok)
	_, ok = repo.Find(bob, "t1")
	assert.True(t, ok)
}
