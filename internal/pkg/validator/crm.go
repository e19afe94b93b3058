package validator

import (
	"strings"

	"github.com/futig/crm-assistant/internal/entity"
)

func (v *Validator) ValidateCreateUser(req *entity.UserCreateRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	return v.validateStruct(req)
}

func (v *Validator) ValidateUpdateUser(req *entity.UserUpdateRequest) error {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if req.Email != nil {
		trimmed := strings.TrimSpace(*req.Email)
		req.Email = &trimmed
	}

	return v.validateStruct(req)
}
