package extractor

import (
	"testing"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		fileType entity.FileType
		data     string
		want     string
	}{
		{
			name:     "txt is passed through",
			fileType: entity.FileTypeTXT,
			data:     "Widget Pro costs $36.99",
			want:     "Widget Pro costs $36.99",
		},
		{
			name:     "txt drops byte order mark",
			fileType: entity.FileTypeTXT,
			data:     "\xef\xbb\xbfhello",
			want:     "hello",
		},
		{
			name:     "csv rows become labelled records",
			fileType: entity.FileTypeCSV,
			data:     "product,price\nWidget Pro,$36.99\nWidget Lite,$12.00\n",
			want:     "product: Widget Pro | price: $36.99\n\nproduct: Widget Lite | price: $12.00",
		},
		{
			name:     "csv with header only",
			fileType: entity.FileTypeCSV,
			data:     "product,price\n",
			want:     "product | price",
		},
		{
			name:     "csv extra columns get positional names",
			fileType: entity.FileTypeCSV,
			data:     "product\nWidget,blue\n",
			want:     "product: Widget | column_2: blue",
		},
		{
			name:     "json is pretty printed",
			fileType: entity.FileTypeJSON,
			data:     `{"price":"$36.99"}`,
			want:     "{\n  \"price\": \"$36.99\"\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.fileType, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name     string
		fileType entity.FileType
		data     string
		wantErr  error
	}{
		{name: "unknown type", fileType: "docx", data: "x", wantErr: entity.ErrUnsupportedFileType},
		{name: "broken json", fileType: entity.FileTypeJSON, data: "{", wantErr: entity.ErrInvalidFormat},
		{name: "not a pdf", fileType: entity.FileTypePDF, data: "plain text", wantErr: entity.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.fileType, []byte(tt.data))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
