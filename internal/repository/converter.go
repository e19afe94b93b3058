package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const uniqueViolationCode = "23505"

const (
	userColumns    = "id, name, email, company, phone, preferences, created_at, updated_at"
	sessionColumns = "id, user_id, category, title, is_active, created_at, updated_at"
	messageColumns = "id, session_id, user_id, role, content, timestamp, metadata"
	fileColumns    = "id, user_id, filename, file_type, file_size, vector_store_path, is_active, uploaded_at"
)

type userRow struct {
	ID          string
	Name        string
	Email       string
	Company     pgtype.Text
	Phone       pgtype.Text
	Preferences []byte
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type sessionRow struct {
	ID        pgtype.UUID
	UserID    string
	Category  string
	Title     pgtype.Text
	IsActive  bool
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type messageRow struct {
	ID        pgtype.UUID
	SessionID pgtype.UUID
	UserID    string
	Role      string
	Content   string
	Timestamp pgtype.Timestamptz
	Metadata  []byte
}

type fileRow struct {
	ID              pgtype.UUID
	UserID          string
	Filename        string
	FileType        string
	FileSize        int64
	VectorStorePath string
	IsActive        bool
	UploadedAt      pgtype.Timestamptz
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var r userRow
	if err := row.Scan(&r.ID, &r.Name, &r.Email, &r.Company, &r.Phone, &r.Preferences, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return toEntityUser(&r)
}

func scanSession(row pgx.Row) (*entity.Session, error) {
	var r sessionRow
	if err := row.Scan(&r.ID, &r.UserID, &r.Category, &r.Title, &r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return toEntitySession(&r), nil
}

func scanMessage(row pgx.Row) (*entity.Message, error) {
	var r messageRow
	if err := row.Scan(&r.ID, &r.SessionID, &r.UserID, &r.Role, &r.Content, &r.Timestamp, &r.Metadata); err != nil {
		return nil, err
	}
	return toEntityMessage(&r)
}

func scanFile(row pgx.Row) (*entity.FileRecord, error) {
	var r fileRow
	if err := row.Scan(&r.ID, &r.UserID, &r.Filename, &r.FileType, &r.FileSize, &r.VectorStorePath, &r.IsActive, &r.UploadedAt); err != nil {
		return nil, err
	}
	return toEntityFile(&r), nil
}

func toEntityUser(r *userRow) (*entity.User, error) {
	user := &entity.User{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Company:     textPtr(r.Company),
		Phone:       textPtr(r.Phone),
		Preferences: map[string]any{},
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}

	if len(r.Preferences) > 0 {
		if err := json.Unmarshal(r.Preferences, &user.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences of user %s: %w", r.ID, err)
		}
	}

	return user, nil
}

func toEntitySession(r *sessionRow) *entity.Session {
	return &entity.Session{
		ID:        uuid.UUID(r.ID.Bytes).String(),
		UserID:    r.UserID,
		Category:  entity.ConversationCategory(r.Category),
		Title:     textPtr(r.Title),
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func toEntityMessage(r *messageRow) (*entity.Message, error) {
	msg := &entity.Message{
		ID:        uuid.UUID(r.ID.Bytes).String(),
		SessionID: uuid.UUID(r.SessionID.Bytes).String(),
		UserID:    r.UserID,
		Role:      entity.MessageRole(r.Role),
		Content:   r.Content,
		Timestamp: r.Timestamp.Time,
	}

	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &msg.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of message %s: %w", msg.ID, err)
		}
	}

	return msg, nil
}

func toEntityFile(r *fileRow) *entity.FileRecord {
	return &entity.FileRecord{
		ID:              uuid.UUID(r.ID.Bytes).String(),
		UserID:          r.UserID,
		Filename:        r.Filename,
		FileType:        entity.FileType(r.FileType),
		Size:            r.FileSize,
		VectorStorePath: r.VectorStorePath,
		IsActive:        r.IsActive,
		UploadedAt:      r.UploadedAt.Time,
	}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func toText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// parseUUID converts an id into pgtype.UUID; malformed ids are reported as notFound,
// since no such row can exist.
func parseUUID(id string, notFound error) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: malformed id %q", notFound, id)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// mapNoRows turns pgx.ErrNoRows into the given domain error
func mapNoRows(err, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return err
}
