package entity

// LLMMessage is one entry of the prompt passed to the LLM capability
type LLMMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	LLMRoleSystem    = "system"
	LLMRoleUser      = "user"
	LLMRoleAssistant = "assistant"
)

type LLMCompletionRequest struct {
	Messages    []LLMMessage
	Temperature float32
}

type LLMCompletion struct {
	Content    string
	Model      string
	TokensUsed *int
}

// ExtractedUserInfo is the best-effort result of reading contact details out of free text
type ExtractedUserInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
}

// Complete reports whether enough was recovered to create a user record
func (e *ExtractedUserInfo) Complete() bool {
	return e != nil && e.Name != "" && e.Email != ""
}

// PromptDocumentsHeader introduces the retrieved-document block inside the system prompt
const PromptDocumentsHeader = "Relevant information from the user's uploaded documents:"

// NoDocumentsMarker replaces the document block when retrieval found nothing
const NoDocumentsMarker = "No relevant documents found in your uploaded files."
