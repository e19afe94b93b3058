package crm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/futig/crm-assistant/internal/pkg/logger"
	"github.com/futig/crm-assistant/internal/pkg/response"
	"github.com/futig/crm-assistant/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   CRMUsecase
	validator *validator.Validator
}

func NewHandler(usecase CRMUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// CreateUser handles POST /crm/create_user
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateUser")

	var req entity.UserCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateCreateUser(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	user, err := h.usecase.CreateUser(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, user)
}

// UpdateUser handles PUT /crm/update_user/{user_id}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("user_id", userID),
		zap.String("action", "UpdateUser"),
	)

	var req entity.UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateUpdateUser(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	user, err := h.usecase.UpdateUser(ctx, userID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, user)
}

// GetUser handles GET /crm/user/{user_id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("user_id", userID),
		zap.String("action", "GetUser"),
	)

	user, err := h.usecase.GetUser(ctx, userID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, user)
}

// ListConversations handles GET /crm/conversations/{user_id}
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("user_id", userID),
		zap.String("action", "ListConversations"),
	)

	req := entity.ListConversationsRequest{UserID: userID}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.handleUsecaseError(ctx, w, fmt.Errorf("%w: limit must be an integer", entity.ErrInvalidParameter))
			return
		}
		req.Limit = limit
	}

	sessions, err := h.usecase.ListConversations(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	conversations := make([]*entity.ConversationResponse, 0, len(sessions))
	for _, s := range sessions {
		conversations = append(conversations, toConversationResponse(s))
	}

	ctxzap.Debug(ctx, "conversations listed", zap.Int("count", len(conversations)))
	response.Success(w, conversations)
}

// GetSessionMessages handles GET /crm/conversation/{session_id}/messages
func (h *Handler) GetSessionMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "GetSessionMessages"),
	)

	messages, err := h.usecase.GetSessionMessages(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, &entity.SessionMessagesResponse{
		SessionID:    sessionID,
		Messages:     messages,
		MessageCount: len(messages),
	})
}

// UpdateCategory handles PUT /crm/conversation/{session_id}/category.
// The category comes from the query string or, if absent, from a JSON body.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "UpdateCategory"),
	)

	category := r.URL.Query().Get("category")
	if category == "" && r.ContentLength != 0 {
		var req entity.UpdateCategoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(ctx, w, http.StatusBadRequest, "invalid request body", err)
			return
		}
		category = req.Category
	}
	if strings.TrimSpace(category) == "" {
		h.handleUsecaseError(ctx, w, fmt.Errorf("%w: category", entity.ErrMissingField))
		return
	}

	session, err := h.usecase.UpdateCategory(ctx, sessionID, category)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, &entity.StatusResponse{
		Status:  "success",
		Message: fmt.Sprintf("category updated to %s", session.Category),
	})
}

// CloseSession handles DELETE /crm/conversation/{session_id}
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "CloseSession"),
	)

	if err := h.usecase.CloseSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, &entity.StatusResponse{
		Status:  "success",
		Message: "session closed",
	})
}

// ExportConversation handles GET /crm/conversation/{session_id}/export
func (h *Handler) ExportConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "ExportConversation"),
	)

	format := entity.FormatMarkdown
	if raw := r.URL.Query().Get("format"); raw != "" {
		format = entity.ExportFormat(strings.ToLower(raw))
	}
	if !format.IsValid() {
		h.handleUsecaseError(ctx, w, fmt.Errorf("%w: format must be markdown, docx or pdf", entity.ErrInvalidParameter))
		return
	}

	file, err := h.usecase.ExportConversation(ctx, sessionID, format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.File(w, file.Filename, file.ContentType, file.Content)
}

// Categories handles GET /crm/categories
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	response.Success(w, &entity.CategoriesResponse{Categories: h.usecase.Categories()})
}

// DocumentSummary handles GET /crm/documents/{user_id}
func (h *Handler) DocumentSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("user_id", userID),
		zap.String("action", "DocumentSummary"),
	)

	summary, err := h.usecase.DocumentSummary(ctx, userID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, &entity.DocumentSummaryResponse{
		UserID:          userID,
		DocumentSummary: summary,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrUserNotFound):
		response.Error(ctx, w, http.StatusNotFound, entity.ErrUserNotFound.Error(), err)
	case errors.Is(err, entity.ErrSessionNotFound):
		response.Error(ctx, w, http.StatusNotFound, entity.ErrSessionNotFound.Error(), err)
	case errors.Is(err, entity.ErrUserAlreadyExists):
		response.Error(ctx, w, http.StatusConflict, entity.ErrUserAlreadyExists.Error(), err)
	case errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrInvalidCategory):
		response.Error(ctx, w, http.StatusBadRequest, err.Error(), err)
	default:
		response.Error(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
