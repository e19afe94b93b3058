package document

import (
	"context"

	"github.com/futig/crm-assistant/internal/entity"
)

type Indexer interface {
	Build(ctx context.Context, name string, chunks []entity.IndexedChunk) (string, error)
	Remove(path string) error
}

type Splitter interface {
	Split(text string) []string
}
