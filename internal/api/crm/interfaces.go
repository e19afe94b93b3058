package crm

import (
	"context"

	"github.com/futig/crm-assistant/internal/entity"
)

type CRMUsecase interface {
	CreateUser(ctx context.Context, req *entity.UserCreateRequest) (*entity.User, error)
	UpdateUser(ctx context.Context, id string, req *entity.UserUpdateRequest) (*entity.User, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
	ListConversations(ctx context.Context, req *entity.ListConversationsRequest) ([]*entity.SessionWithCount, error)
	GetSessionMessages(ctx context.Context, sessionID string) ([]*entity.Message, error)
	UpdateCategory(ctx context.Context, sessionID, category string) (*entity.Session, error)
	CloseSession(ctx context.Context, sessionID string) error
	Categories() []entity.CategoryInfo
	DocumentSummary(ctx context.Context, userID string) (*entity.DocumentSummary, error)
	ExportConversation(ctx context.Context, sessionID string, format entity.ExportFormat) (*entity.ExportedFile, error)
}
