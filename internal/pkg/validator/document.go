package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/futig/crm-assistant/internal/entity"
)

// ValidateUpload validates the declared type and the size of an uploaded document
func (v *Validator) ValidateUpload(req *entity.UploadDocumentRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return fmt.Errorf("%w: user_id", entity.ErrMissingField)
	}
	if req.File == nil {
		return fmt.Errorf("%w: file", entity.ErrMissingField)
	}

	req.FileType = entity.FileType(strings.ToLower(strings.TrimSpace(string(req.FileType))))
	if err := req.FileType.Validate(); err != nil {
		return err
	}

	if req.File.Size == 0 {
		return entity.ErrEmptyDocument
	}
	if req.File.Size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, req.File.Filename, req.File.Size, v.cfg.MaxFileSize)
	}

	return nil
}

// SanitizeFilename strips directories and characters that are awkward in stored names
func SanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
	)
	filename = replacer.Replace(filename)
	if filename == "." || filename == "/" || filename == "" {
		return "document"
	}
	return filename
}
