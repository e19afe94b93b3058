package chat

import (
	"context"

	"github.com/futig/crm-assistant/internal/entity"
)

type LLMConnector interface {
	ModelName() string
	Complete(ctx context.Context, req *entity.LLMCompletionRequest) (*entity.LLMCompletion, error)
	ExtractUserInfo(ctx context.Context, text string) (*entity.ExtractedUserInfo, error)
	Categorize(ctx context.Context, text string) (entity.ConversationCategory, error)
}

// VectorSearcher queries a single file's index by its stored path
type VectorSearcher interface {
	Search(ctx context.Context, path, query string, n int) ([]entity.RetrievedChunk, error)
}

type EmailValidator interface {
	ValidEmail(s string) bool
}
