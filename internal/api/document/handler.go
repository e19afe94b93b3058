package document

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/futig/crm-assistant/internal/config"
	"github.com/futig/crm-assistant/internal/entity"
	"github.com/futig/crm-assistant/internal/pkg/logger"
	"github.com/futig/crm-assistant/internal/pkg/response"
	"github.com/futig/crm-assistant/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   DocumentUsecase
	cfg       config.FileUploadConfig
	validator *validator.Validator
}

func NewHandler(usecase DocumentUsecase, cfg config.FileUploadConfig, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		cfg:       cfg,
		validator: validator,
	}
}

// Upload handles POST /upload_docs
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UploadDocument")

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid form data or size too large", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := entity.UploadDocumentRequest{
		UserID:   r.FormValue("user_id"),
		FileType: entity.FileType(r.FormValue("file_type")),
	}
	if files := r.MultipartForm.File["file"]; len(files) > 0 {
		req.File = files[0]
	}

	if err := h.validator.ValidateUpload(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctx = logger.AddFields(ctx, zap.String("user_id", req.UserID))
	ctxzap.Info(ctx, "uploading document",
		zap.String("filename", req.File.Filename),
		zap.String("file_type", string(req.FileType)),
		zap.Int64("size", req.File.Size),
	)

	resp, err := h.usecase.Upload(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

// ListFiles handles GET /files/{user_id}
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("user_id", userID),
		zap.String("action", "ListFiles"),
	)

	files, err := h.usecase.ListFiles(ctx, userID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	details := make([]*entity.FileDetail, 0, len(files))
	for _, f := range files {
		details = append(details, toFileDetail(f))
	}

	response.Success(w, &entity.ListFilesResponse{
		UserID:     userID,
		Files:      details,
		TotalFiles: len(details),
	})
}

// DeleteFile handles DELETE /files/{file_id}?user_id=
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "file_id")
	userID := r.URL.Query().Get("user_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("file_id", fileID),
		zap.String("user_id", userID),
		zap.String("action", "DeleteFile"),
	)

	if err := h.validator.ValidateUserID(userID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if err := h.usecase.DeleteFile(ctx, userID, fileID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, &entity.StatusResponse{
		Status:  "success",
		Message: fmt.Sprintf("file %s deleted", fileID),
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrUserNotFound):
		response.Error(ctx, w, http.StatusNotFound, entity.ErrUserNotFound.Error(), err)
	case errors.Is(err, entity.ErrFileNotFound):
		response.Error(ctx, w, http.StatusNotFound, entity.ErrFileNotFound.Error(), err)
	case errors.Is(err, entity.ErrForbidden):
		response.Error(ctx, w, http.StatusForbidden, "file belongs to another user", err)
	case errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrUnsupportedFileType),
		errors.Is(err, entity.ErrFileTooLarge),
		errors.Is(err, entity.ErrEmptyDocument),
		errors.Is(err, entity.ErrInvalidFormat):
		response.Error(ctx, w, http.StatusBadRequest, err.Error(), err)
	default:
		response.Error(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
