package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/futig/crm-assistant/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(t *entity.Transcript) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", title(t))

	for _, line := range headerLines(t) {
		fmt.Fprintf(&buf, "- %s\n", line)
	}

	for _, m := range t.Messages {
		fmt.Fprintf(&buf, "\n## %s\n\n", messageHeading(m))
		buf.WriteString(quote(normalizeNewlines(m.Content)))
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}

// quote renders message text as a blockquote so user markdown cannot break the layout
func quote(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight("> "+line, " ")
	}
	return strings.Join(lines, "\n")
}
