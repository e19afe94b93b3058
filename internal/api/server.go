package api

import (
	"net/http"
	"time"

	chatapi "github.com/futig/crm-assistant/internal/api/chat"
	crmapi "github.com/futig/crm-assistant/internal/api/crm"
	"github.com/futig/crm-assistant/internal/api/docs"
	documentapi "github.com/futig/crm-assistant/internal/api/document"
	"github.com/futig/crm-assistant/internal/api/middleware"
	"github.com/futig/crm-assistant/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	serviceName    = "CRM Assistant API"
	serviceVersion = "1.0.0"
)

type Handlers struct {
	Chat     *chatapi.Handler
	CRM      *crmapi.Handler
	Document *documentapi.Handler
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(h Handlers, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{
			"service": serviceName,
			"version": serviceVersion,
			"docs":    "/docs",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	r.Route("/api/v1", func(r chi.Router) {
		chatapi.RegisterRoutes(r, h.Chat)
		crmapi.RegisterRoutes(r, h.CRM)
		documentapi.RegisterRoutes(r, h.Document)
	})

	return r
}
