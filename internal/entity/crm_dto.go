package entity

import "time"

type UserCreateRequest struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Email       string         `json:"email" validate:"required,email"`
	Company     *string        `json:"company,omitempty" validate:"omitempty,max=200"`
	Phone       *string        `json:"phone,omitempty" validate:"omitempty,max=50"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// UserUpdateRequest holds a partial update; nil fields are left untouched
type UserUpdateRequest struct {
	Name        *string        `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email       *string        `json:"email,omitempty" validate:"omitempty,email"`
	Company     *string        `json:"company,omitempty" validate:"omitempty,max=200"`
	Phone       *string        `json:"phone,omitempty" validate:"omitempty,max=50"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// IsEmpty reports whether the update carries no field at all
func (r *UserUpdateRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Company == nil && r.Phone == nil && r.Preferences == nil
}

type ListConversationsRequest struct {
	UserID string
	Limit  int
}

func (lc *ListConversationsRequest) Normalize() {
	if lc.Limit <= 0 {
		lc.Limit = 50
	}

	lc.Limit = min(lc.Limit, 100)
}

type ConversationResponse struct {
	SessionID    string               `json:"session_id"`
	UserID       string               `json:"user_id"`
	Category     ConversationCategory `json:"category"`
	Title        *string              `json:"title,omitempty"`
	MessageCount int                  `json:"message_count"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	IsActive     bool                 `json:"is_active"`
}

type SessionMessagesResponse struct {
	SessionID    string     `json:"session_id"`
	Messages     []*Message `json:"messages"`
	MessageCount int        `json:"message_count"`
}

type UpdateCategoryRequest struct {
	Category string `json:"category"`
}

type CategoryInfo struct {
	Value       ConversationCategory `json:"value"`
	Description string               `json:"description"`
}

type CategoriesResponse struct {
	Categories []CategoryInfo `json:"categories"`
}

// ExportFormat is the output format of a conversation transcript
type ExportFormat string

const (
	FormatMarkdown ExportFormat = "markdown"
	FormatDOCX     ExportFormat = "docx"
	FormatPDF      ExportFormat = "pdf"
)

func (f ExportFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return true
	default:
		return false
	}
}
