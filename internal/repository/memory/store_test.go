package memory

import (
	"context"
	"testing"
	"time"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock returns strictly increasing instants
func steppingClock() func() time.Time {
	t := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore() *Store {
	s := NewStore()
	s.now = steppingClock()
	return s
}

func TestStore_CreateUser_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	_, err := s.CreateUser(ctx, &entity.User{ID: "u1", Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, &entity.User{ID: "u2", Name: "Other", Email: "ADA@example.com"})
	assert.ErrorIs(t, err, entity.ErrUserAlreadyExists)
}

func TestStore_UpdateUser_SameValuesOnlyTouchUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	_, err := s.CreateUser(ctx, &entity.User{ID: "u1", Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	company := "Acme"
	update := &entity.UserUpdateRequest{Company: &company, Preferences: map[string]any{"lang": "en"}}

	first, err := s.UpdateUser(ctx, "u1", update)
	require.NoError(t, err)
	second, err := s.UpdateUser(ctx, "u1", update)
	require.NoError(t, err)

	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	first.UpdatedAt, second.UpdatedAt = time.Time{}, time.Time{}
	assert.Equal(t, first, second)
}

func TestStore_UpdateUser_NotFound(t *testing.T) {
	_, err := newTestStore().UpdateUser(context.Background(), "missing", &entity.UserUpdateRequest{})
	assert.ErrorIs(t, err, entity.ErrUserNotFound)
}

func TestStore_MessagesAreChronological(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	session, err := s.CreateSession(ctx, &entity.Session{ID: uuid.NewString(), UserID: "u1", Category: entity.CategoryGeneral})
	require.NoError(t, err)

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.AppendMessages(ctx, session.ID,
		&entity.Message{ID: uuid.NewString(), UserID: "u1", Role: entity.RoleUser, Content: "late", Timestamp: base.Add(time.Minute)},
		&entity.Message{ID: uuid.NewString(), UserID: "u1", Role: entity.RoleAssistant, Content: "early", Timestamp: base},
	))

	messages, err := s.ListMessagesBySession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "early", messages[0].Content)
	assert.Equal(t, "late", messages[1].Content)

	sessions, err := s.ListSessionsByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 2, sessions[0].MessageCount)
}

func TestStore_AppendMessages_UnknownSession(t *testing.T) {
	err := newTestStore().AppendMessages(context.Background(), uuid.NewString(),
		&entity.Message{ID: uuid.NewString(), Role: entity.RoleUser, Content: "hi"})
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestStore_ListSessionsByUser_NewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	var ids []string
	for range 3 {
		session, err := s.CreateSession(ctx, &entity.Session{ID: uuid.NewString(), UserID: "u1", Category: entity.CategorySales})
		require.NoError(t, err)
		ids = append(ids, session.ID)
	}
	_, err := s.CreateSession(ctx, &entity.Session{ID: uuid.NewString(), UserID: "u2", Category: entity.CategorySales})
	require.NoError(t, err)

	sessions, err := s.ListSessionsByUser(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, ids[2], sessions[0].ID)
	assert.Equal(t, ids[1], sessions[1].ID)
}

func TestStore_DeactivateUserSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	for range 2 {
		_, err := s.CreateSession(ctx, &entity.Session{ID: uuid.NewString(), UserID: "u1", Category: entity.CategoryGeneral})
		require.NoError(t, err)
	}

	count, err := s.DeactivateUserSessions(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = s.DeactivateUserSessions(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_Files(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	older, err := s.CreateFile(ctx, &entity.FileRecord{ID: uuid.NewString(), UserID: "u1", Filename: "a.txt", FileType: entity.FileTypeTXT})
	require.NoError(t, err)
	newer, err := s.CreateFile(ctx, &entity.FileRecord{ID: uuid.NewString(), UserID: "u1", Filename: "b.txt", FileType: entity.FileTypeTXT})
	require.NoError(t, err)
	_, err = s.CreateFile(ctx, &entity.FileRecord{ID: uuid.NewString(), UserID: "u2", Filename: "c.txt", FileType: entity.FileTypeTXT})
	require.NoError(t, err)

	files, err := s.ListActiveFilesByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, newer.ID, files[0].ID)
	assert.Equal(t, older.ID, files[1].ID)

	require.NoError(t, s.DeactivateFile(ctx, newer.ID))
	assert.ErrorIs(t, s.DeactivateFile(ctx, newer.ID), entity.ErrFileNotFound)

	files, err = s.ListActiveFilesByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, files, 1)

	// the record itself stays readable after a soft delete
	deleted, err := s.GetFileByID(ctx, newer.ID)
	require.NoError(t, err)
	assert.False(t, deleted.IsActive)
}
