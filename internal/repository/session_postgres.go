package repository

import (
	"context"
	"fmt"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository defines the interface for conversation session persistence
type SessionRepository interface {
	CreateSession(ctx context.Context, session *entity.Session) (*entity.Session, error)
	GetSessionByID(ctx context.Context, id string) (*entity.Session, error)
	ListSessionsByUser(ctx context.Context, userID string, limit int) ([]*entity.SessionWithCount, error)
	UpdateSessionCategory(ctx context.Context, id string, category entity.ConversationCategory) (*entity.Session, error)
	DeactivateSession(ctx context.Context, id string) error
	DeactivateUserSessions(ctx context.Context, userID string) (int, error)
}

var _ SessionRepository = &SessionPostgres{}

// SessionPostgres implements SessionRepository using PostgreSQL
type SessionPostgres struct {
	db *pgxpool.Pool
}

func NewSessionPostgres(db *pgxpool.Pool) *SessionPostgres {
	return &SessionPostgres{db: db}
}

func (r *SessionPostgres) CreateSession(ctx context.Context, session *entity.Session) (*entity.Session, error) {
	id, err := parseUUID(session.ID, entity.ErrInvalidParameter)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO sessions (id, user_id, category, title, is_active)
		 VALUES ($1, $2, $3, $4, TRUE)
		 RETURNING `+sessionColumns,
		id, session.UserID, string(session.Category), toText(session.Title),
	)

	created, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return created, nil
}

func (r *SessionPostgres) GetSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	sessionID, err := parseUUID(id, entity.ErrSessionNotFound)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, sessionID)

	session, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", mapNoRows(err, entity.ErrSessionNotFound))
	}

	return session, nil
}

// ListSessionsByUser returns the user's sessions, most recently updated first.
// A non-positive limit returns every session.
func (r *SessionPostgres) ListSessionsByUser(ctx context.Context, userID string, limit int) (
	[]*entity.SessionWithCount, error,
) {
	var pgLimit *int
	if limit > 0 {
		pgLimit = &limit
	}

	rows, err := r.db.Query(ctx,
		`SELECT s.id, s.user_id, s.category, s.title, s.is_active, s.created_at, s.updated_at,
		        (SELECT count(*) FROM messages m WHERE m.session_id = s.id) AS message_count
		 FROM sessions s
		 WHERE s.user_id = $1
		 ORDER BY s.updated_at DESC
		 LIMIT $2`,
		userID, pgLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var result []*entity.SessionWithCount
	for rows.Next() {
		var (
			r     sessionRow
			count int64
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Category, &r.Title, &r.IsActive, &r.CreatedAt, &r.UpdatedAt, &count); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		result = append(result, &entity.SessionWithCount{
			Session:      *toEntitySession(&r),
			MessageCount: int(count),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return result, nil
}

func (r *SessionPostgres) UpdateSessionCategory(ctx context.Context, id string, category entity.ConversationCategory) (
	*entity.Session, error,
) {
	sessionID, err := parseUUID(id, entity.ErrSessionNotFound)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx,
		`UPDATE sessions SET category = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+sessionColumns,
		sessionID, string(category),
	)

	session, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("update session category: %w", mapNoRows(err, entity.ErrSessionNotFound))
	}

	return session, nil
}

func (r *SessionPostgres) DeactivateSession(ctx context.Context, id string) error {
	sessionID, err := parseUUID(id, entity.ErrSessionNotFound)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE sessions SET is_active = FALSE, updated_at = now() WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("deactivate session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrSessionNotFound
	}

	return nil
}

// DeactivateUserSessions closes every active session of the user and reports how many were closed
func (r *SessionPostgres) DeactivateUserSessions(ctx context.Context, userID string) (int, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE sessions SET is_active = FALSE, updated_at = now() WHERE user_id = $1 AND is_active`, userID)
	if err != nil {
		return 0, fmt.Errorf("deactivate user sessions: %w", err)
	}

	return int(tag.RowsAffected()), nil
}
