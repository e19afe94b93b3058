package document

import (
	"context"
	"fmt"
	"io"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/futig/crm-assistant/internal/pkg/extractor"
	"github.com/futig/crm-assistant/internal/pkg/logger"
	"github.com/futig/crm-assistant/internal/pkg/validator"
	"github.com/futig/crm-assistant/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/futig/crm-assistant/internal/usecase/document")

// DocumentUsecase indexes uploaded documents for per-user retrieval
type DocumentUsecase struct {
	userRepo repository.UserRepository
	fileRepo repository.FileRepository
	index    Indexer
	splitter Splitter
}

func NewUsecase(
	userRepo repository.UserRepository,
	fileRepo repository.FileRepository,
	index Indexer,
	splitter Splitter,
) *DocumentUsecase {
	return &DocumentUsecase{
		userRepo: userRepo,
		fileRepo: fileRepo,
		index:    index,
		splitter: splitter,
	}
}

// Upload indexes a validated multipart upload
func (uc *DocumentUsecase) Upload(ctx context.Context, req *entity.UploadDocumentRequest) (
	*entity.UploadDocumentResponse, error,
) {
	src, err := req.File.Open()
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", req.File.Filename, err)
	}
	content, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", req.File.Filename, err)
	}

	return uc.UploadContent(ctx, req.UserID, validator.SanitizeFilename(req.File.Filename), req.FileType, content)
}

// UploadContent extracts, chunks and indexes raw document content, then records it.
// The index directory is removed again when the record cannot be saved.
func (uc *DocumentUsecase) UploadContent(
	ctx context.Context,
	userID string,
	filename string,
	fileType entity.FileType,
	content []byte,
) (*entity.UploadDocumentResponse, error) {
	ctx, span := tracer.Start(ctx, "document.upload", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("file.type", string(fileType)),
		attribute.Int("file.size", len(content)),
	))
	defer span.End()

	resp, err := uc.upload(ctx, userID, filename, fileType, content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("file.chunks", resp.Chunks))
	return resp, nil
}

func (uc *DocumentUsecase) upload(
	ctx context.Context,
	userID string,
	filename string,
	fileType entity.FileType,
	content []byte,
) (*entity.UploadDocumentResponse, error) {
	if _, err := uc.userRepo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	fileID := uuid.New().String()
	ctx = logger.AddFields(ctx,
		zap.String("file_id", fileID),
		zap.String("filename", filename),
	)

	text, err := extractor.Extract(fileType, content)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	pieces := uc.splitter.Split(text)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrEmptyDocument, filename)
	}

	chunks := make([]entity.IndexedChunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, entity.IndexedChunk{Text: piece, Position: i})
	}

	path, err := uc.index.Build(ctx, userID+"_"+fileID, chunks)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	ctxzap.Debug(ctx, "document indexed", zap.Int("chunks", len(chunks)), zap.String("path", path))

	file, err := uc.fileRepo.CreateFile(ctx, &entity.FileRecord{
		ID:              fileID,
		UserID:          userID,
		Filename:        filename,
		FileType:        fileType,
		Size:            int64(len(content)),
		VectorStorePath: path,
	})
	if err != nil {
		if rmErr := uc.index.Remove(path); rmErr != nil {
			ctxzap.Warn(ctx, "failed to remove orphaned index", zap.String("path", path), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("save file record: %w", err)
	}

	ctxzap.Info(ctx, "document uploaded",
		zap.String("file_type", string(fileType)),
		zap.Int64("size", file.Size),
		zap.Int("chunks", len(chunks)),
	)

	return &entity.UploadDocumentResponse{
		Status:   "success",
		FileID:   file.ID,
		Filename: file.Filename,
		FileType: file.FileType,
		FileSize: file.Size,
		Chunks:   len(chunks),
	}, nil
}

func (uc *DocumentUsecase) ListFiles(ctx context.Context, userID string) ([]*entity.FileRecord, error) {
	files, err := uc.fileRepo.ListActiveFilesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// DeleteFile soft-deletes a file of the user. The index stays on disk.
func (uc *DocumentUsecase) DeleteFile(ctx context.Context, userID, fileID string) error {
	file, err := uc.fileRepo.GetFileByID(ctx, fileID)
	if err != nil {
		return err
	}
	if file.UserID != userID {
		return fmt.Errorf("%w: file %s", entity.ErrForbidden, fileID)
	}

	if err := uc.fileRepo.DeactivateFile(ctx, fileID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	ctxzap.Info(ctx, "file deleted", zap.String("file_id", fileID), zap.String("path", file.VectorStorePath))
	return nil
}
