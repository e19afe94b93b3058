package document

import "github.com/futig/crm-assistant/internal/entity"

func toFileDetail(f *entity.FileRecord) *entity.FileDetail {
	return &entity.FileDetail{
		ID:         f.ID,
		Filename:   f.Filename,
		FileType:   f.FileType,
		Size:       f.Size,
		UploadedAt: f.UploadedAt,
	}
}
