package entity

import "time"

type ChatRequest struct {
	UserID     string  `json:"user_id" validate:"required"`
	Message    string  `json:"message" validate:"required"`
	SessionID  *string `json:"session_id,omitempty"`
	UseRAG     *bool   `json:"use_rag,omitempty"`
	RAGContext *string `json:"rag_context,omitempty"`
}

// RAGEnabled reports whether retrieval was requested; it is on unless explicitly disabled.
func (r *ChatRequest) RAGEnabled() bool {
	return r.UseRAG == nil || *r.UseRAG
}

type ChatResponse struct {
	Response                string  `json:"response"`
	ModelUsed               string  `json:"model_used"`
	ProcessingTime          float64 `json:"processing_time"`
	RAGUsed                 bool    `json:"rag_used"`
	UserContextUsed         bool    `json:"user_context_used"`
	ConversationHistoryUsed bool    `json:"conversation_history_used"`
	TokensUsed              *int    `json:"tokens_used,omitempty"`
	SessionID               *string `json:"session_id,omitempty"`
	Error                   bool    `json:"error"`
}

type SessionCreateRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Category string `json:"category,omitempty"`
}

type SessionResponse struct {
	SessionID string               `json:"session_id"`
	UserID    string               `json:"user_id"`
	Category  ConversationCategory `json:"category"`
	Title     *string              `json:"title,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	IsActive  bool                 `json:"is_active"`
}

// ResetRequest deactivates a single session, or all sessions of the user when SessionID is empty
type ResetRequest struct {
	UserID    string  `json:"user_id" validate:"required"`
	SessionID *string `json:"session_id,omitempty"`
}

type ResetResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	SessionsReset int    `json:"sessions_reset"`
}

type ListSessionsResponse struct {
	UserID   string             `json:"user_id"`
	Sessions []*SessionResponse `json:"sessions"`
	Total    int                `json:"total"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
