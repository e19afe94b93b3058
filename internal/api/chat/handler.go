package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/futig/crm-assistant/internal/pkg/logger"
	"github.com/futig/crm-assistant/internal/pkg/response"
	"github.com/futig/crm-assistant/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   ChatUsecase
	validator *validator.Validator
}

func NewHandler(usecase ChatUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// Chat handles POST /chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateChat(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	resp, err := h.usecase.Chat(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

// CreateSession handles POST /session
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateSession")

	var req entity.SessionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	category, err := h.validator.ValidateSessionCreate(&req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctx = logger.AddFields(ctx, zap.String("user_id", req.UserID))

	session, err := h.usecase.CreateSession(ctx, req.UserID, category)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, toSessionResponse(session))
}

// Reset handles POST /reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Reset")

	var req entity.ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateReset(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctx = logger.AddFields(ctx, zap.String("user_id", req.UserID))

	count, err := h.usecase.Reset(ctx, req.UserID, req.SessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	message := fmt.Sprintf("%d session(s) reset", count)
	if req.SessionID != nil {
		message = fmt.Sprintf("session %s reset", *req.SessionID)
	}

	response.Success(w, &entity.ResetResponse{
		Status:        "success",
		Message:       message,
		SessionsReset: count,
	})
}

// ListSessions handles GET /sessions/{user_id}
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("user_id", userID),
		zap.String("action", "ListSessions"),
	)

	if err := h.validator.ValidateUserID(userID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	sessions, err := h.usecase.ListSessions(ctx, userID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	items := make([]*entity.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, toSessionResponse(&s.Session))
	}

	ctxzap.Debug(ctx, "sessions listed", zap.Int("count", len(items)))
	response.Success(w, &entity.ListSessionsResponse{
		UserID:   userID,
		Sessions: items,
		Total:    len(items),
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		response.Error(ctx, w, http.StatusNotFound, entity.ErrSessionNotFound.Error(), err)
	case errors.Is(err, entity.ErrForbidden):
		response.Error(ctx, w, http.StatusForbidden, "session belongs to another user", err)
	case errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrInvalidCategory):
		response.Error(ctx, w, http.StatusBadRequest, err.Error(), err)
	default:
		response.Error(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
