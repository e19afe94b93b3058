package chat

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/futig/crm-assistant/internal/entity"
)

const personaInstruction = `You are a helpful customer relationship assistant. You answer questions about products, services, orders and support, and you keep a friendly, professional tone.`

const behaviourGuidelines = `Guidelines:
- Be conversational and concise.
- Address the user by name when you know it.
- Refer back to earlier messages in this conversation when it helps.
- When the user shares new facts about themselves, acknowledge them.
- Answer questions about the user's documents from the information above and say so when it does not contain the answer.`

// DocumentContext is the retrieved-document block of a prompt.
// Found is false when Text is the no-documents marker.
type DocumentContext struct {
	Text  string
	Found bool
}

type PromptInput struct {
	User      *entity.User
	Documents *DocumentContext
	History   []*entity.Message
	Message   string
}

// BuildPrompt assembles the message list for one chat turn: a system message with
// persona, profile facts, documents and guidelines, then history oldest first,
// then the new user message.
func BuildPrompt(in PromptInput) []entity.LLMMessage {
	sections := []string{personaInstruction}

	if in.User != nil {
		sections = append(sections, profileSection(in.User))
	}
	if in.Documents != nil {
		sections = append(sections, entity.PromptDocumentsHeader+"\n"+in.Documents.Text)
	}
	sections = append(sections, behaviourGuidelines)

	messages := make([]entity.LLMMessage, 0, len(in.History)+2)
	messages = append(messages, entity.LLMMessage{
		Role:    entity.LLMRoleSystem,
		Content: strings.Join(sections, "\n\n"),
	})

	for _, msg := range in.History {
		role := entity.LLMRoleUser
		if msg.Role == entity.RoleAssistant {
			role = entity.LLMRoleAssistant
		}
		messages = append(messages, entity.LLMMessage{Role: role, Content: msg.Content})
	}

	return append(messages, entity.LLMMessage{Role: entity.LLMRoleUser, Content: in.Message})
}

func profileSection(user *entity.User) string {
	var b strings.Builder
	b.WriteString("What you know about the user:")
	fmt.Fprintf(&b, "\n- Name: %s", user.Name)
	fmt.Fprintf(&b, "\n- Email: %s", user.Email)
	if user.Company != nil && *user.Company != "" {
		fmt.Fprintf(&b, "\n- Company: %s", *user.Company)
	}
	if user.Phone != nil && *user.Phone != "" {
		fmt.Fprintf(&b, "\n- Phone: %s", *user.Phone)
	}
	for _, key := range slices.Sorted(maps.Keys(user.Preferences)) {
		fmt.Fprintf(&b, "\n- Preference %s: %s", key, preferenceValue(user.Preferences[key]))
	}
	return b.String()
}

func preferenceValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(encoded)
}

// formatChunks labels each chunk with its source file
func formatChunks(chunks []entity.RetrievedChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, fmt.Sprintf("[Source: %s]\n%s", c.Source, c.Text))
	}
	return strings.Join(parts, "\n\n")
}
