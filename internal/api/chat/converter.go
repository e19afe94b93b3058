package chat

import "github.com/futig/crm-assistant/internal/entity"

func toSessionResponse(s *entity.Session) *entity.SessionResponse {
	return &entity.SessionResponse{
		SessionID: s.ID,
		UserID:    s.UserID,
		Category:  s.Category,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		IsActive:  s.IsActive,
	}
}
