package crm

import "github.com/futig/crm-assistant/internal/entity"

func toConversationResponse(s *entity.SessionWithCount) *entity.ConversationResponse {
	return &entity.ConversationResponse{
		SessionID:    s.ID,
		UserID:       s.UserID,
		Category:     s.Category,
		Title:        s.Title,
		MessageCount: s.MessageCount,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		IsActive:     s.IsActive,
	}
}
