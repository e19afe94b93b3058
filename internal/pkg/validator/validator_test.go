package validator

import (
	"mime/multipart"
	"testing"

	"github.com/futig/crm-assistant/internal/config"
	"github.com/futig/crm-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *Validator {
	return New(config.FileUploadConfig{MaxFileSize: 1024, MaxUploadSize: 4096})
}

func ptr[T any](v T) *T { return &v }

func TestValidateChat(t *testing.T) {
	tests := []struct {
		name    string
		req     entity.ChatRequest
		wantErr error
	}{
		{name: "valid", req: entity.ChatRequest{UserID: "u1", Message: "hi"}},
		{name: "missing user", req: entity.ChatRequest{Message: "hi"}, wantErr: entity.ErrMissingField},
		{name: "blank message", req: entity.ChatRequest{UserID: "u1", Message: "   "}, wantErr: entity.ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestValidator().ValidateChat(&tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateChat_BlankSessionIDIsDropped(t *testing.T) {
	req := &entity.ChatRequest{UserID: " u1 ", Message: "hi", SessionID: ptr("  ")}
	require.NoError(t, newTestValidator().ValidateChat(req))
	assert.Nil(t, req.SessionID)
	assert.Equal(t, "u1", req.UserID)
}

func TestValidateSessionCreate(t *testing.T) {
	v := newTestValidator()

	category, err := v.ValidateSessionCreate(&entity.SessionCreateRequest{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryGeneral, category)

	category, err = v.ValidateSessionCreate(&entity.SessionCreateRequest{UserID: "u1", Category: "Sales"})
	require.NoError(t, err)
	assert.Equal(t, entity.CategorySales, category)

	_, err = v.ValidateSessionCreate(&entity.SessionCreateRequest{UserID: "u1", Category: "vip"})
	assert.ErrorIs(t, err, entity.ErrInvalidCategory)
}

func TestValidateCreateUser(t *testing.T) {
	tests := []struct {
		name    string
		req     entity.UserCreateRequest
		wantErr error
	}{
		{name: "valid", req: entity.UserCreateRequest{Name: "Ada", Email: "ada@x.com"}},
		{name: "missing name", req: entity.UserCreateRequest{Email: "ada@x.com"}, wantErr: entity.ErrMissingField},
		{name: "bad email", req: entity.UserCreateRequest{Name: "Ada", Email: "not-an-email"}, wantErr: entity.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestValidator().ValidateCreateUser(&tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateUpdateUser(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateUpdateUser(&entity.UserUpdateRequest{Company: ptr("Acme")}))
	assert.ErrorIs(t, v.ValidateUpdateUser(&entity.UserUpdateRequest{Email: ptr("nope")}), entity.ErrInvalidParameter)
	assert.ErrorIs(t, v.ValidateUpdateUser(&entity.UserUpdateRequest{Name: ptr("  ")}), entity.ErrInvalidParameter)
}

func TestValidateUpload(t *testing.T) {
	file := func(size int64) *multipart.FileHeader {
		return &multipart.FileHeader{Filename: "doc.txt", Size: size}
	}

	tests := []struct {
		name    string
		req     entity.UploadDocumentRequest
		wantErr error
	}{
		{name: "valid", req: entity.UploadDocumentRequest{UserID: "u1", FileType: "TXT", File: file(10)}},
		{name: "unknown type", req: entity.UploadDocumentRequest{UserID: "u1", FileType: "docx", File: file(10)}, wantErr: entity.ErrUnsupportedFileType},
		{name: "too large", req: entity.UploadDocumentRequest{UserID: "u1", FileType: "pdf", File: file(2048)}, wantErr: entity.ErrFileTooLarge},
		{name: "empty", req: entity.UploadDocumentRequest{UserID: "u1", FileType: "csv", File: file(0)}, wantErr: entity.ErrEmptyDocument},
		{name: "no file", req: entity.UploadDocumentRequest{UserID: "u1", FileType: "json"}, wantErr: entity.ErrMissingField},
		{name: "no user", req: entity.UploadDocumentRequest{FileType: "json", File: file(10)}, wantErr: entity.ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestValidator().ValidateUpload(&tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "price_list.txt", SanitizeFilename("../../price list.txt"))
	assert.Equal(t, "report.pdf", SanitizeFilename(`C:\docs\report.pdf`))
	assert.Equal(t, "document", SanitizeFilename(""))
}
