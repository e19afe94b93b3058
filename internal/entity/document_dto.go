package entity

import (
	"mime/multipart"
	"time"
)

type UploadDocumentRequest struct {
	UserID   string
	FileType FileType
	File     *multipart.FileHeader
}

type UploadDocumentResponse struct {
	Status   string   `json:"status"`
	FileID   string   `json:"file_id"`
	Filename string   `json:"filename"`
	FileType FileType `json:"file_type"`
	FileSize int64    `json:"file_size"`
	Chunks   int      `json:"chunks"`
}

type FileDetail struct {
	ID         string    `json:"file_id"`
	Filename   string    `json:"filename"`
	FileType   FileType  `json:"file_type"`
	Size       int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type ListFilesResponse struct {
	UserID     string        `json:"user_id"`
	Files      []*FileDetail `json:"files"`
	TotalFiles int           `json:"total_files"`
}

type DocumentSummary struct {
	TotalFiles int              `json:"total_files"`
	TotalSize  int64            `json:"total_size"`
	FileTypes  map[FileType]int `json:"file_types"`
	Files      []*FileDetail    `json:"files"`
}

type DocumentSummaryResponse struct {
	UserID          string           `json:"user_id"`
	DocumentSummary *DocumentSummary `json:"document_summary"`
}
