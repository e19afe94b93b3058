package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/futig/crm-assistant/internal/entity"
)

const baseTitle = "Conversation transcript"

const timestampLayout = "2006-01-02 15:04:05 MST"

type Formatter interface {
	Format(t *entity.Transcript) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ExportFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", entity.ErrInvalidParameter, string(format))
	}
}

func title(t *entity.Transcript) string {
	if t.Title != "" {
		return t.Title
	}
	return baseTitle
}

// headerLines are the key facts printed above the messages of every format
func headerLines(t *entity.Transcript) []string {
	lines := []string{
		"Session: " + t.SessionID,
		"Category: " + string(t.Category),
		"Started: " + formatTime(t.CreatedAt),
	}
	if t.UserName != "" {
		customer := t.UserName
		if t.UserEmail != "" {
			customer += " <" + t.UserEmail + ">"
		}
		lines = append(lines, "Customer: "+customer)
	}
	return append(lines, fmt.Sprintf("Messages: %d", len(t.Messages)))
}

func speaker(role entity.MessageRole) string {
	if role == entity.RoleAssistant {
		return "Assistant"
	}
	return "User"
}

func formatTime(ts time.Time) string {
	return ts.UTC().Format(timestampLayout)
}

func messageHeading(m *entity.Message) string {
	return fmt.Sprintf("%s, %s", speaker(m.Role), formatTime(m.Timestamp))
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
