package chat

import (
	"context"
	"fmt"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CreateSession opens an empty session for the user with an explicit category
func (uc *ChatUsecase) CreateSession(ctx context.Context, userID string, category entity.ConversationCategory) (
	*entity.Session, error,
) {
	if err := category.Validate(); err != nil {
		return nil, err
	}

	session, err := uc.sessionRepo.CreateSession(ctx, &entity.Session{
		ID:       uuid.New().String(),
		UserID:   userID,
		Category: category,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	ctxzap.Info(ctx, "session created", zap.String("session_id", session.ID), zap.String("category", string(category)))
	return session, nil
}

// Reset deactivates one session of the user, or all of them when sessionID is nil
func (uc *ChatUsecase) Reset(ctx context.Context, userID string, sessionID *string) (int, error) {
	if sessionID == nil {
		count, err := uc.sessionRepo.DeactivateUserSessions(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("reset sessions: %w", err)
		}
		ctxzap.Info(ctx, "user sessions reset", zap.Int("count", count))
		return count, nil
	}

	session, err := uc.sessionRepo.GetSessionByID(ctx, *sessionID)
	if err != nil {
		return 0, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != userID {
		return 0, fmt.Errorf("%w: session %s", entity.ErrForbidden, session.ID)
	}

	if err := uc.sessionRepo.DeactivateSession(ctx, session.ID); err != nil {
		return 0, fmt.Errorf("reset session: %w", err)
	}

	ctxzap.Info(ctx, "session reset", zap.String("session_id", session.ID))
	return 1, nil
}

func (uc *ChatUsecase) ListSessions(ctx context.Context, userID string) ([]*entity.SessionWithCount, error) {
	sessions, err := uc.sessionRepo.ListSessionsByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
