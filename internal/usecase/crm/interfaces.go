package crm

import (
	"github.com/futig/crm-assistant/internal/entity"
	"github.com/futig/crm-assistant/internal/pkg/formatter"
)

type FormatterFactory interface {
	Create(format entity.ExportFormat) (formatter.Formatter, error)
}
