package entity

import "time"

// Transcript is a conversation prepared for export
type Transcript struct {
	SessionID string
	UserName  string
	UserEmail string
	Category  ConversationCategory
	Title     string
	CreatedAt time.Time
	Messages  []*Message
}

// ExportedFile is a rendered transcript ready to be served as a download
type ExportedFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
