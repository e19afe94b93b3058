package document

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"testing"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/futig/crm-assistant/internal/integration/vectorindex"
	"github.com/futig/crm-assistant/internal/pkg/chunker"
	"github.com/futig/crm-assistant/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingFiles struct {
	*memory.Store
}

func (f failingFiles) CreateFile(context.Context, *entity.FileRecord) (*entity.FileRecord, error) {
	return nil, errors.New("disk full")
}

type testEnv struct {
	uc       *DocumentUsecase
	store    *memory.Store
	index    *vectorindex.Index
	storeDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	store := memory.NewStore()
	index := vectorindex.New(vectorindex.Config{StoreDir: dir, MinSimilarity: 0.2}, vectorindex.NewHashingEmbeddingFunc(0))

	_, err := store.CreateUser(context.Background(), &entity.User{ID: "ada", Name: "Ada", Email: "ada@x.com"})
	require.NoError(t, err)

	return &testEnv{
		uc:       NewUsecase(store, store, index, chunker.New(500, 50)),
		store:    store,
		index:    index,
		storeDir: dir,
	}
}

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["file"][0]
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.uc.Upload(ctx, &entity.UploadDocumentRequest{
		UserID:   "ada",
		FileType: entity.FileTypeTXT,
		File:     fileHeader(t, "my prices (2024).txt", []byte("Widget Pro costs $36.99")),
	})
	require.NoError(t, err)

	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "my_prices_2024.txt", resp.Filename)
	assert.Equal(t, int64(23), resp.FileSize)
	assert.Equal(t, 1, resp.Chunks)

	files, err := env.uc.ListFiles(ctx, "ada")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, resp.FileID, files[0].ID)
	assert.Equal(t, env.index.PathFor("ada_"+resp.FileID), files[0].VectorStorePath)

	found, err := env.index.Search(ctx, files[0].VectorStorePath, "price of Widget Pro", 2)
	require.NoError(t, err)
	require.NotEmpty(t, found)
	assert.Contains(t, found[0].Text, "$36.99")
}

func TestUpload_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.uc.UploadContent(ctx, "nobody", "a.txt", entity.FileTypeTXT, []byte("text"))
	assert.ErrorIs(t, err, entity.ErrUserNotFound)

	_, err = env.uc.UploadContent(ctx, "ada", "blank.txt", entity.FileTypeTXT, []byte(" \n\n \n"))
	assert.ErrorIs(t, err, entity.ErrEmptyDocument)

	_, err = env.uc.UploadContent(ctx, "ada", "broken.json", entity.FileTypeJSON, []byte("{not json"))
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)

	entries, err := os.ReadDir(env.storeDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_RemovesIndexWhenRecordFails(t *testing.T) {
	env := newTestEnv(t)
	uc := NewUsecase(env.store, failingFiles{env.store}, env.index, chunker.New(500, 50))

	_, err := uc.UploadContent(context.Background(), "ada", "a.txt", entity.FileTypeTXT, []byte("Widget Pro costs $36.99"))
	require.Error(t, err)

	entries, err := os.ReadDir(env.storeDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.uc.UploadContent(ctx, "ada", "prices.txt", entity.FileTypeTXT, []byte("Widget Pro costs $36.99"))
	require.NoError(t, err)

	file, err := env.store.GetFileByID(ctx, resp.FileID)
	require.NoError(t, err)

	err = env.uc.DeleteFile(ctx, "mallory", resp.FileID)
	assert.ErrorIs(t, err, entity.ErrForbidden)

	require.NoError(t, env.uc.DeleteFile(ctx, "ada", resp.FileID))

	files, err := env.uc.ListFiles(ctx, "ada")
	require.NoError(t, err)
	assert.Empty(t, files)

	// the index of a soft-deleted file is kept and still answers queries
	found, err := env.index.Search(ctx, file.VectorStorePath, "Widget Pro price", 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Contains(t, found[0].Text, "$36.99")

	assert.ErrorIs(t, env.uc.DeleteFile(ctx, "ada", resp.FileID), entity.ErrFileNotFound)
	assert.ErrorIs(t, env.uc.DeleteFile(ctx, "ada", "f0000000-0000-0000-0000-000000000000"), entity.ErrFileNotFound)
}
