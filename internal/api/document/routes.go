package document

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers document upload and file routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/upload_docs", h.Upload)
	r.Get("/files/{user_id}", h.ListFiles)
	r.Delete("/files/{file_id}", h.DeleteFile)
}
