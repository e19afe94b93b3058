package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat and session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/chat", h.Chat)
	r.Post("/session", h.CreateSession)
	r.Post("/reset", h.Reset)
	r.Get("/sessions/{user_id}", h.ListSessions)
}
