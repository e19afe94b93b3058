package document

import (
	"context"

	"github.com/futig/crm-assistant/internal/entity"
)

type DocumentUsecase interface {
	Upload(ctx context.Context, req *entity.UploadDocumentRequest) (*entity.UploadDocumentResponse, error)
	ListFiles(ctx context.Context, userID string) ([]*entity.FileRecord, error)
	DeleteFile(ctx context.Context, userID, fileID string) error
}
