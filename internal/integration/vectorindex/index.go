// Package vectorindex stores document chunks in per-upload persistent chromem-go
// databases and answers nearest-chunk queries against them.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

const collectionName = "chunks"

var ErrIndexNotFound = errors.New("vector index not found")

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

type Config struct {
	StoreDir      string
	MinSimilarity float32
	Compress      bool
	CacheTTL      time.Duration
}

// Index builds and queries per-file indices. Each index is a directory under StoreDir
// holding one chromem collection; opened collections are cached by path.
type Index struct {
	cfg     Config
	embed   chromem.EmbeddingFunc
	handles *cache.Cache
}

func New(cfg Config, embed chromem.EmbeddingFunc) *Index {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}

	return &Index{
		cfg:     cfg,
		embed:   embed,
		handles: cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}
}

// PathFor returns the directory an index called name is stored in
func (idx *Index) PathFor(name string) string {
	return filepath.Join(idx.cfg.StoreDir, unsafeNameChars.ReplaceAllString(name, "_"))
}

// Build embeds chunks into a new persistent index called name and returns its path
func (idx *Index) Build(ctx context.Context, name string, chunks []entity.IndexedChunk) (string, error) {
	if len(chunks) == 0 {
		return "", entity.ErrEmptyDocument
	}

	path := idx.PathFor(name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("vector index %s already exists", path)
	}

	db, err := chromem.NewPersistentDB(path, idx.cfg.Compress)
	if err != nil {
		return "", fmt.Errorf("open vector db: %w", err)
	}

	collection, err := db.CreateCollection(collectionName, map[string]string{"index": name}, idx.embed)
	if err != nil {
		_ = os.RemoveAll(path)
		return "", fmt.Errorf("create collection: %w", err)
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:       strconv.Itoa(chunk.Position),
			Content:  chunk.Text,
			Metadata: map[string]string{"position": strconv.Itoa(chunk.Position)},
		})
	}

	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		_ = os.RemoveAll(path)
		return "", fmt.Errorf("add chunks: %w", err)
	}

	idx.handles.SetDefault(path, collection)

	ctxzap.Debug(ctx, "vector index built",
		zap.String("path", path),
		zap.Int("chunks", len(docs)),
	)

	return path, nil
}

// Search returns up to n chunks of the index at path ordered by decreasing similarity.
// Chunks below the configured minimum similarity are dropped.
func (idx *Index) Search(ctx context.Context, path, query string, n int) ([]entity.RetrievedChunk, error) {
	if n <= 0 {
		return nil, nil
	}

	collection, err := idx.open(path)
	if err != nil {
		return nil, err
	}

	n = min(n, collection.Count())
	if n == 0 {
		return nil, nil
	}

	results, err := collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query vector index: %w", err)
	}

	chunks := make([]entity.RetrievedChunk, 0, len(results))
	for _, r := range results {
		if r.Similarity < idx.cfg.MinSimilarity {
			continue
		}
		chunks = append(chunks, entity.RetrievedChunk{
			Text:       r.Content,
			Similarity: r.Similarity,
		})
	}

	return chunks, nil
}

// Remove deletes the index directory at path
func (idx *Index) Remove(path string) error {
	idx.handles.Delete(path)
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove vector index: %w", err)
	}
	return nil
}

func (idx *Index) open(path string) (*chromem.Collection, error) {
	if cached, ok := idx.handles.Get(path); ok {
		return cached.(*chromem.Collection), nil
	}

	// NewPersistentDB would create a missing directory, so check first.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
	}

	db, err := chromem.NewPersistentDB(path, idx.cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}

	collection := db.GetCollection(collectionName, idx.embed)
	if collection == nil {
		return nil, fmt.Errorf("%w: %s has no %q collection", ErrIndexNotFound, path, collectionName)
	}

	idx.handles.SetDefault(path, collection)
	return collection, nil
}
