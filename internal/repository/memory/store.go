// Package memory is an in-process implementation of the repository interfaces,
// used with STORAGE_DRIVER=memory and as a fake in tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/futig/crm-assistant/internal/repository"
	"github.com/google/uuid"
)

var (
	_ repository.UserRepository    = &Store{}
	_ repository.SessionRepository = &Store{}
	_ repository.MessageRepository = &Store{}
	_ repository.FileRepository    = &Store{}
)

// Store keeps every record in maps guarded by a single RWMutex
type Store struct {
	mu sync.RWMutex

	users    map[string]*entity.User
	sessions map[string]*entity.Session
	messages map[string][]*entity.Message
	files    map[string]*entity.FileRecord

	// insertion order, for deterministic listings
	sessionOrder []string
	fileOrder    []string

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]*entity.User),
		sessions: make(map[string]*entity.Session),
		messages: make(map[string][]*entity.Message),
		files:    make(map[string]*entity.FileRecord),
		now:      time.Now,
	}
}

func (s *Store) CreateUser(_ context.Context, user *entity.User) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return nil, entity.ErrUserAlreadyExists
	}
	if s.emailTaken(user.Email, "") {
		return nil, entity.ErrUserAlreadyExists
	}

	now := s.now()
	stored := copyUser(user)
	if stored.Preferences == nil {
		stored.Preferences = map[string]any{}
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.users[stored.ID] = stored

	return copyUser(stored), nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", entity.ErrUserNotFound)
	}

	return copyUser(user), nil
}

func (s *Store) UpdateUser(_ context.Context, id string, update *entity.UserUpdateRequest) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("update user: %w", entity.ErrUserNotFound)
	}
	if update.Email != nil && s.emailTaken(*update.Email, id) {
		return nil, entity.ErrUserAlreadyExists
	}

	updated := copyUser(current)
	if update.Name != nil {
		updated.Name = *update.Name
	}
	if update.Email != nil {
		updated.Email = *update.Email
	}
	if update.Company != nil {
		updated.Company = ptr(*update.Company)
	}
	if update.Phone != nil {
		updated.Phone = ptr(*update.Phone)
	}
	if update.Preferences != nil {
		updated.Preferences = maps.Clone(update.Preferences)
	}
	updated.UpdatedAt = s.now()
	s.users[id] = updated

	return copyUser(updated), nil
}

func (s *Store) CreateSession(_ context.Context, session *entity.Session) (*entity.Session, error) {
	if _, err := uuid.Parse(session.ID); err != nil {
		return nil, fmt.Errorf("%w: malformed session id %q", entity.ErrInvalidParameter, session.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stored := copySession(session)
	stored.IsActive = true
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.sessions[stored.ID] = stored
	s.sessionOrder = append(s.sessionOrder, stored.ID)

	return copySession(stored), nil
}

func (s *Store) GetSessionByID(_ context.Context, id string) (*entity.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session: %w", entity.ErrSessionNotFound)
	}

	return copySession(session), nil
}

func (s *Store) ListSessionsByUser(_ context.Context, userID string, limit int) ([]*entity.SessionWithCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*entity.SessionWithCount
	for _, id := range slices.Backward(s.sessionOrder) {
		session := s.sessions[id]
		if session.UserID != userID {
			continue
		}
		result = append(result, &entity.SessionWithCount{
			Session:      *copySession(session),
			MessageCount: len(s.messages[id]),
		})
	}

	slices.SortStableFunc(result, func(a, b *entity.SessionWithCount) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (s *Store) UpdateSessionCategory(_ context.Context, id string, category entity.ConversationCategory) (
	*entity.Session, error,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("update session category: %w", entity.ErrSessionNotFound)
	}
	session.Category = category
	session.UpdatedAt = s.now()

	return copySession(session), nil
}

func (s *Store) DeactivateSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return entity.ErrSessionNotFound
	}
	session.IsActive = false
	session.UpdatedAt = s.now()

	return nil
}

func (s *Store) DeactivateUserSessions(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	now := s.now()
	for _, session := range s.sessions {
		if session.UserID == userID && session.IsActive {
			session.IsActive = false
			session.UpdatedAt = now
			count++
		}
	}

	return count, nil
}

func (s *Store) ListMessagesBySession(_ context.Context, sessionID string) ([]*entity.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.messages[sessionID]
	result := make([]*entity.Message, 0, len(stored))
	for _, msg := range stored {
		result = append(result, copyMessage(msg))
	}

	slices.SortStableFunc(result, func(a, b *entity.Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	return result, nil
}

func (s *Store) AppendMessages(_ context.Context, sessionID string, messages ...*entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return entity.ErrSessionNotFound
	}

	for _, msg := range messages {
		stored := copyMessage(msg)
		stored.SessionID = sessionID
		if stored.Timestamp.IsZero() {
			stored.Timestamp = s.now()
		}
		s.messages[sessionID] = append(s.messages[sessionID], stored)
	}
	session.UpdatedAt = s.now()

	return nil
}

func (s *Store) CreateFile(_ context.Context, file *entity.FileRecord) (*entity.FileRecord, error) {
	if _, err := uuid.Parse(file.ID); err != nil {
		return nil, fmt.Errorf("%w: malformed file id %q", entity.ErrInvalidParameter, file.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *file
	stored.IsActive = true
	stored.UploadedAt = s.now()
	s.files[stored.ID] = &stored
	s.fileOrder = append(s.fileOrder, stored.ID)

	created := stored
	return &created, nil
}

func (s *Store) GetFileByID(_ context.Context, id string) (*entity.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("get file: %w", entity.ErrFileNotFound)
	}

	found := *file
	return &found, nil
}

func (s *Store) ListActiveFilesByUser(_ context.Context, userID string) ([]*entity.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*entity.FileRecord
	for _, id := range slices.Backward(s.fileOrder) {
		file := s.files[id]
		if file.UserID != userID || !file.IsActive {
			continue
		}
		found := *file
		result = append(result, &found)
	}

	slices.SortStableFunc(result, func(a, b *entity.FileRecord) int {
		return b.UploadedAt.Compare(a.UploadedAt)
	})

	return result, nil
}

func (s *Store) DeactivateFile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[id]
	if !ok || !file.IsActive {
		return entity.ErrFileNotFound
	}
	file.IsActive = false

	return nil
}

// emailTaken must be called with the lock held
func (s *Store) emailTaken(email, exceptID string) bool {
	for id, user := range s.users {
		if id != exceptID && strings.EqualFold(user.Email, email) {
			return true
		}
	}
	return false
}

func copyUser(u *entity.User) *entity.User {
	c := *u
	c.Preferences = maps.Clone(u.Preferences)
	if u.Company != nil {
		c.Company = ptr(*u.Company)
	}
	if u.Phone != nil {
		c.Phone = ptr(*u.Phone)
	}
	return &c
}

func copySession(s *entity.Session) *entity.Session {
	c := *s
	if s.Title != nil {
		c.Title = ptr(*s.Title)
	}
	return &c
}

func copyMessage(m *entity.Message) *entity.Message {
	c := *m
	if m.Metadata.ProcessingTime != nil {
		c.Metadata.ProcessingTime = ptr(*m.Metadata.ProcessingTime)
	}
	if m.Metadata.TokensUsed != nil {
		c.Metadata.TokensUsed = ptr(*m.Metadata.TokensUsed)
	}
	return &c
}

func ptr[T any](v T) *T {
	return &v
}
