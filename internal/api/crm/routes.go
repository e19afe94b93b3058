package crm

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers CRM routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/crm", func(r chi.Router) {
		r.Post("/create_user", h.CreateUser)
		r.Put("/update_user/{user_id}", h.UpdateUser)
		r.Get("/user/{user_id}", h.GetUser)
		r.Get("/conversations/{user_id}", h.ListConversations)
		r.Get("/categories", h.Categories)
		r.Get("/documents/{user_id}", h.DocumentSummary)

		r.Route("/conversation/{session_id}", func(r chi.Router) {
			r.Get("/messages", h.GetSessionMessages)
			r.Put("/category", h.UpdateCategory)
			r.Get("/export", h.ExportConversation)
			r.Delete("/", h.CloseSession)
		})
	})
}
