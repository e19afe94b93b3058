// Package extractor turns uploaded documents into plain text for indexing.
package extractor

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/ledongthuc/pdf"
)

// Extract returns the text content of data interpreted as fileType.
// An unknown type yields entity.ErrUnsupportedFileType and unreadable content
// yields entity.ErrInvalidFormat.
func Extract(fileType entity.FileType, data []byte) (string, error) {
	switch fileType {
	case entity.FileTypePDF:
		return extractPDF(data)
	case entity.FileTypeTXT:
		return extractTXT(data), nil
	case entity.FileTypeCSV:
		return extractCSV(data)
	case entity.FileTypeJSON:
		return extractJSON(data)
	default:
		return "", fileType.Validate()
	}
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf reader: %v", entity.ErrInvalidFormat, err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: pdf page %d: %v", entity.ErrInvalidFormat, i, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n\n"), nil
}

func extractTXT(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return strings.ToValidUTF8(string(data), "�")
}

// extractCSV renders each record as "column: value" pairs, one record per paragraph,
// so a chunk stays meaningful without the header row.
func extractCSV(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: csv header: %v", entity.ErrInvalidFormat, err)
	}

	var records []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: csv record: %v", entity.ErrInvalidFormat, err)
		}

		fields := make([]string, 0, len(record))
		for i, value := range record {
			column := fmt.Sprintf("column_%d", i+1)
			if i < len(header) && strings.TrimSpace(header[i]) != "" {
				column = strings.TrimSpace(header[i])
			}
			fields = append(fields, column+": "+strings.TrimSpace(value))
		}
		records = append(records, strings.Join(fields, " | "))
	}

	if len(records) == 0 {
		return strings.Join(header, " | "), nil
	}

	return strings.Join(records, "\n\n"), nil
}

func extractJSON(data []byte) (string, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("%w: json: %v", entity.ErrInvalidFormat, err)
	}

	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: json: %v", entity.ErrInvalidFormat, err)
	}

	return string(pretty), nil
}
