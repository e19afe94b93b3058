package vectorindex

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, minSimilarity float32) *Index {
	t.Helper()
	return New(Config{StoreDir: t.TempDir(), MinSimilarity: minSimilarity}, NewHashingEmbeddingFunc(0))
}

func chunksOf(texts ...string) []entity.IndexedChunk {
	chunks := make([]entity.IndexedChunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, entity.IndexedChunk{Text: text, Position: i})
	}
	return chunks
}

func TestIndex_BuildAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 0.2)

	path, err := idx.Build(ctx, "user-a_file-1", chunksOf(
		"Widget Pro costs $36.99",
		"Our office is closed on public holidays",
	))
	require.NoError(t, err)
	assert.DirExists(t, path)
	assert.Equal(t, "user-a_file-1", filepath.Base(path))

	chunks, err := idx.Search(ctx, path, "What is the price of Widget Pro?", 5)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "Widget Pro costs $36.99", chunks[0].Text)
}

func TestIndex_Search_ReopensFromDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	embed := NewHashingEmbeddingFunc(0)

	path, err := New(Config{StoreDir: dir}, embed).Build(ctx, "u_f", chunksOf("Widget Pro costs $36.99"))
	require.NoError(t, err)

	// a fresh Index has nothing cached and must load the collection from disk
	chunks, err := New(Config{StoreDir: dir}, embed).Search(ctx, path, "Widget Pro price", 3)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Widget Pro costs $36.99", chunks[0].Text)
}

func TestIndex_Search_CapsAtCollectionSize(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, -1)

	path, err := idx.Build(ctx, "u_f", chunksOf("one widget", "two widgets"))
	require.NoError(t, err)

	chunks, err := idx.Search(ctx, path, "widget", 10)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestIndex_Search_DropsLowSimilarity(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 0.99)

	path, err := idx.Build(ctx, "u_f", chunksOf("Widget Pro costs $36.99"))
	require.NoError(t, err)

	chunks, err := idx.Search(ctx, path, "Widget Pro", 2)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestIndex_Search_MissingIndex(t *testing.T) {
	idx := newTestIndex(t, 0)

	_, err := idx.Search(context.Background(), filepath.Join(t.TempDir(), "nope"), "anything", 2)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestIndex_Build_Errors(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 0)

	_, err := idx.Build(ctx, "empty", nil)
	assert.ErrorIs(t, err, entity.ErrEmptyDocument)

	_, err = idx.Build(ctx, "dup", chunksOf("text"))
	require.NoError(t, err)
	_, err = idx.Build(ctx, "dup", chunksOf("text"))
	assert.Error(t, err)
}

func TestIndex_Remove(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 0)

	path, err := idx.Build(ctx, "u_f", chunksOf("text"))
	require.NoError(t, err)

	require.NoError(t, idx.Remove(path))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	_, err = idx.Search(ctx, path, "text", 1)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestIndex_PathFor_Sanitizes(t *testing.T) {
	idx := New(Config{StoreDir: "/data"}, NewHashingEmbeddingFunc(0))
	assert.Equal(t, filepath.Join("/data", "a_b_c_d"), idx.PathFor("a/b..c d"))
}

func TestHashingEmbeddingFunc(t *testing.T) {
	embed := NewHashingEmbeddingFunc(64)
	ctx := context.Background()

	vec, err := embed(ctx, "Widget Pro costs $36.99")
	require.NoError(t, err)
	require.Len(t, vec, 64)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)

	again, err := embed(ctx, "widget pro COSTS 36.99")
	require.NoError(t, err)
	assert.Equal(t, vec, again)

	empty, err := embed(ctx, "the of and")
	require.NoError(t, err)
	assert.Equal(t, float32(1), empty[0])
}
