package validator

import (
	"fmt"
	"strings"

	"github.com/futig/crm-assistant/internal/entity"
)

// ValidateChat validates ChatRequest
func (v *Validator) ValidateChat(req *entity.ChatRequest) error {
	req.UserID = strings.TrimSpace(req.UserID)
	if strings.TrimSpace(req.Message) == "" {
		req.Message = ""
	}
	if req.SessionID != nil && strings.TrimSpace(*req.SessionID) == "" {
		req.SessionID = nil
	}

	return v.validateStruct(req)
}

// ValidateSessionCreate validates SessionCreateRequest and resolves its category, defaulting to general
func (v *Validator) ValidateSessionCreate(req *entity.SessionCreateRequest) (entity.ConversationCategory, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if err := v.validateStruct(req); err != nil {
		return "", err
	}

	if req.Category == "" {
		return entity.CategoryGeneral, nil
	}

	return entity.ParseCategory(strings.ToLower(strings.TrimSpace(req.Category)))
}

func (v *Validator) ValidateReset(req *entity.ResetRequest) error {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.SessionID != nil && strings.TrimSpace(*req.SessionID) == "" {
		req.SessionID = nil
	}

	return v.validateStruct(req)
}

// ValidateUserID rejects blank path identifiers
func (v *Validator) ValidateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user_id", entity.ErrMissingField)
	}
	return nil
}
