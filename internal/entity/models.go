package entity

import (
	"fmt"
	"time"
)

// ConversationCategory tags a session with the kind of conversation it holds
type ConversationCategory string

const (
	CategoryGeneral    ConversationCategory = "general"
	CategorySupport    ConversationCategory = "support"
	CategorySales      ConversationCategory = "sales"
	CategoryInquiring  ConversationCategory = "inquiring"
	CategoryResolved   ConversationCategory = "resolved"
	CategoryUnresolved ConversationCategory = "unresolved"
)

// Categories lists every known category in a stable order
var Categories = []ConversationCategory{
	CategoryGeneral,
	CategorySupport,
	CategorySales,
	CategoryInquiring,
	CategoryResolved,
	CategoryUnresolved,
}

func (c ConversationCategory) Validate() error {
	switch c {
	case CategoryGeneral, CategorySupport, CategorySales,
		CategoryInquiring, CategoryResolved, CategoryUnresolved:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCategory, string(c))
	}
}

// ParseCategory converts a raw value into a known category.
func ParseCategory(raw string) (ConversationCategory, error) {
	c := ConversationCategory(raw)
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

func (r MessageRole) Validate() error {
	switch r {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return fmt.Errorf("%w: unknown message role %q", ErrInvalidParameter, string(r))
	}
}

// FileType is the declared format of an uploaded document
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeTXT  FileType = "txt"
	FileTypeCSV  FileType = "csv"
	FileTypeJSON FileType = "json"
)

func (ft FileType) Validate() error {
	switch ft {
	case FileTypePDF, FileTypeTXT, FileTypeCSV, FileTypeJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q (allowed: pdf, txt, csv, json)", ErrUnsupportedFileType, string(ft))
	}
}

type User struct {
	ID          string         `json:"user_id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Company     *string        `json:"company,omitempty"`
	Phone       *string        `json:"phone,omitempty"`
	Preferences map[string]any `json:"preferences"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Session struct {
	ID        string               `json:"session_id"`
	UserID    string               `json:"user_id"`
	Category  ConversationCategory `json:"category"`
	Title     *string              `json:"title,omitempty"`
	IsActive  bool                 `json:"is_active"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// SessionWithCount is a session joined with the number of its messages
type SessionWithCount struct {
	Session
	MessageCount int `json:"message_count"`
}

// MessageMetadata carries per-message processing details.
// Only assistant messages produced by the chat pipeline fill it.
type MessageMetadata struct {
	ProcessingTime *float64 `json:"processing_time,omitempty"`
	TokensUsed     *int     `json:"tokens_used,omitempty"`
	Model          string   `json:"model,omitempty"`
	Error          bool     `json:"error,omitempty"`
}

type Message struct {
	ID        string          `json:"message_id"`
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id"`
	Role      MessageRole     `json:"role"`
	Content   string          `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
	Metadata  MessageMetadata `json:"metadata"`
}

type FileRecord struct {
	ID              string    `json:"file_id"`
	UserID          string    `json:"user_id"`
	Filename        string    `json:"filename"`
	FileType        FileType  `json:"file_type"`
	Size            int64     `json:"file_size"`
	VectorStorePath string    `json:"vector_store_path"`
	IsActive        bool      `json:"is_active"`
	UploadedAt      time.Time `json:"uploaded_at"`
}
