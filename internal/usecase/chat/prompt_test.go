package chat

import (
	"strings"
	"testing"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt_Order(t *testing.T) {
	company := "Analytical Engines"
	user := &entity.User{
		Name:        "Ada",
		Email:       "ada@x.com",
		Company:     &company,
		Preferences: map[string]any{"language": "en", "contact": map[string]any{"channel": "email"}},
	}

	prompt := BuildPrompt(PromptInput{
		User:      user,
		Documents: &DocumentContext{Text: "[Source: prices.txt]\nWidget Pro costs $36.99", Found: true},
		History: []*entity.Message{
			{Role: entity.RoleUser, Content: "hi"},
			{Role: entity.RoleAssistant, Content: "hello Ada"},
		},
		Message: "price?",
	})

	require.Len(t, prompt, 4)
	assert.Equal(t, entity.LLMRoleSystem, prompt[0].Role)
	assert.Equal(t, entity.LLMMessage{Role: entity.LLMRoleUser, Content: "hi"}, prompt[1])
	assert.Equal(t, entity.LLMMessage{Role: entity.LLMRoleAssistant, Content: "hello Ada"}, prompt[2])
	assert.Equal(t, entity.LLMMessage{Role: entity.LLMRoleUser, Content: "price?"}, prompt[3])

	system := prompt[0].Content
	profile := strings.Index(system, "What you know about the user:")
	docs := strings.Index(system, entity.PromptDocumentsHeader)
	guidelines := strings.Index(system, "Guidelines:")
	assert.True(t, 0 < profile && profile < docs && docs < guidelines)

	assert.Contains(t, system, "- Company: Analytical Engines")
	assert.NotContains(t, system, "- Phone:")
	assert.Contains(t, system, "- Preference contact: {\"channel\":\"email\"}\n- Preference language: en")
}

func TestBuildPrompt_OptionalSections(t *testing.T) {
	prompt := BuildPrompt(PromptInput{Message: "hello"})

	require.Len(t, prompt, 2)
	assert.NotContains(t, prompt[0].Content, "What you know about the user:")
	assert.NotContains(t, prompt[0].Content, entity.PromptDocumentsHeader)
	assert.Equal(t, "hello", prompt[1].Content)
}

func TestFormatChunks(t *testing.T) {
	got := formatChunks([]entity.RetrievedChunk{
		{Text: "one", Source: "a.txt"},
		{Text: "two", Source: "b.pdf"},
	})
	assert.Equal(t, "[Source: a.txt]\none\n\n[Source: b.pdf]\ntwo", got)
}

func TestSessionTitle(t *testing.T) {
	assert.Nil(t, sessionTitle("   "))
	assert.Equal(t, "need help", *sessionTitle("need\n help"))

	long := strings.Repeat("я", 80)
	title := *sessionTitle(long)
	assert.Equal(t, strings.Repeat("я", 60)+"...", title)
}
