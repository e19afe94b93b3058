package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/futig/crm-assistant/internal/config"
	"github.com/futig/crm-assistant/internal/entity"
	"github.com/futig/crm-assistant/internal/pkg/formatter"
	"github.com/futig/crm-assistant/internal/pkg/validator"
	"github.com/futig/crm-assistant/internal/repository/memory"
	crmuc "github.com/futig/crm-assistant/internal/usecase/crm"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (http.Handler, *memory.Store) {
	store := memory.NewStore()
	uc := crmuc.NewUsecase(store, store, store, store, formatter.NewFactory())

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, validator.New(config.FileUploadConfig{MaxFileSize: 1 << 20, MaxUploadSize: 1 << 21})))
	return r, store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestUserLifecycle(t *testing.T) {
	h, _ := newTestRouter()

	rec := do(t, h, http.MethodPost, "/crm/create_user", `{"name":"Ada","email":"ada@x.com","company":"Analytical Engines"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[entity.User](t, rec)
	require.NotEmpty(t, created.ID)

	rec = do(t, h, http.MethodPost, "/crm/create_user", `{"name":"Ada 2","email":"ada@x.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/crm/create_user", `{"name":"Bob","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	update := `{"phone":"+1 555 0100","preferences":{"language":"en"}}`
	rec = do(t, h, http.MethodPut, "/crm/update_user/"+created.ID, update)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[entity.User](t, rec)

	rec = do(t, h, http.MethodPut, "/crm/update_user/"+created.ID, update)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[entity.User](t, rec)

	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
	second.UpdatedAt = first.UpdatedAt
	assert.Equal(t, first, second)

	rec = do(t, h, http.MethodPut, "/crm/update_user/"+created.ID, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/crm/user/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "+1 555 0100", *decode[entity.User](t, rec).Phone)

	rec = do(t, h, http.MethodGet, "/crm/user/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decode[entity.ErrorResponse](t, rec).Error)
}

func seedSession(t *testing.T, store *memory.Store, userID string) string {
	t.Helper()
	ctx := context.Background()

	session, err := store.CreateSession(ctx, &entity.Session{ID: uuid.NewString(), UserID: userID, Category: entity.CategoryGeneral})
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, store.AppendMessages(ctx, session.ID,
		&entity.Message{ID: uuid.NewString(), UserID: userID, Role: entity.RoleUser, Content: "hello", Timestamp: now},
		&entity.Message{ID: uuid.NewString(), UserID: userID, Role: entity.RoleAssistant, Content: "hi there", Timestamp: now.Add(time.Millisecond)},
	))
	return session.ID
}

func TestConversations(t *testing.T) {
	h, store := newTestRouter()
	sessionID := seedSession(t, store, "ada")
	seedSession(t, store, "ada")

	rec := do(t, h, http.MethodGet, "/crm/conversations/ada?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	conversations := decode[[]entity.ConversationResponse](t, rec)
	require.Len(t, conversations, 1)
	assert.Equal(t, 2, conversations[0].MessageCount)

	rec = do(t, h, http.MethodGet, "/crm/conversations/ada?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/crm/conversation/"+sessionID+"/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	messages := decode[entity.SessionMessagesResponse](t, rec)
	assert.Equal(t, 2, messages.MessageCount)
	assert.Equal(t, "hello", messages.Messages[0].Content)

	rec = do(t, h, http.MethodGet, "/crm/conversation/"+uuid.NewString()+"/messages", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateCategory(t *testing.T) {
	h, store := newTestRouter()
	sessionID := seedSession(t, store, "ada")

	rec := do(t, h, http.MethodPut, "/crm/conversation/"+sessionID+"/category?category=support", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPut, "/crm/conversation/"+sessionID+"/category", `{"category":"resolved"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	session, err := store.GetSessionByID(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryResolved, session.Category)

	rec = do(t, h, http.MethodPut, "/crm/conversation/"+sessionID+"/category?category=urgent", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/crm/conversation/"+sessionID+"/category", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCloseAndExport(t *testing.T) {
	h, store := newTestRouter()
	sessionID := seedSession(t, store, "ada")

	rec := do(t, h, http.MethodGet, "/crm/conversation/"+sessionID+"/export?format=markdown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="conversation_`+sessionID+`.md"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "> hi there")

	rec = do(t, h, http.MethodGet, "/crm/conversation/"+sessionID+"/export?format=html", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/crm/conversation/"+sessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	session, err := store.GetSessionByID(context.Background(), sessionID)
	require.NoError(t, err)
	assert.False(t, session.IsActive)

	rec = do(t, h, http.MethodDelete, "/crm/conversation/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoriesAndDocuments(t *testing.T) {
	h, store := newTestRouter()

	rec := do(t, h, http.MethodGet, "/crm/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[entity.CategoriesResponse](t, rec).Categories, 6)

	_, err := store.CreateFile(context.Background(), &entity.FileRecord{
		ID: uuid.NewString(), UserID: "ada", Filename: "prices.txt", FileType: entity.FileTypeTXT, Size: 23,
	})
	require.NoError(t, err)

	rec = do(t, h, http.MethodGet, "/crm/documents/ada", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[entity.DocumentSummaryResponse](t, rec)
	assert.Equal(t, 1, summary.DocumentSummary.TotalFiles)
	assert.Equal(t, int64(23), summary.DocumentSummary.TotalSize)
	assert.Equal(t, 1, summary.DocumentSummary.FileTypes[entity.FileTypeTXT])
}
