package chat

import (
	"context"

	"github.com/futig/crm-assistant/internal/entity"
)

type ChatUsecase interface {
	Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error)
	CreateSession(ctx context.Context, userID string, category entity.ConversationCategory) (*entity.Session, error)
	Reset(ctx context.Context, userID string, sessionID *string) (int, error)
	ListSessions(ctx context.Context, userID string) ([]*entity.SessionWithCount, error)
}
