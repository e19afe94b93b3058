package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository defines the interface for conversation message persistence
type MessageRepository interface {
	ListMessagesBySession(ctx context.Context, sessionID string) ([]*entity.Message, error)
	AppendMessages(ctx context.Context, sessionID string, messages ...*entity.Message) error
}

var _ MessageRepository = &MessagePostgres{}

// MessagePostgres implements MessageRepository using PostgreSQL
type MessagePostgres struct {
	db *pgxpool.Pool
}

func NewMessagePostgres(db *pgxpool.Pool) *MessagePostgres {
	return &MessagePostgres{db: db}
}

// ListMessagesBySession returns the session's messages in chronological order
func (r *MessagePostgres) ListMessagesBySession(ctx context.Context, sessionID string) ([]*entity.Message, error) {
	sid, err := parseUUID(sessionID, entity.ErrSessionNotFound)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE session_id = $1 ORDER BY timestamp, seq`, sid)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []*entity.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return messages, nil
}

// AppendMessages inserts messages in order and bumps the session's updated_at,
// all in one transaction.
func (r *MessagePostgres) AppendMessages(ctx context.Context, sessionID string, messages ...*entity.Message) error {
	sid, err := parseUUID(sessionID, entity.ErrSessionNotFound)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, msg := range messages {
		msgID, err := parseUUID(msg.ID, entity.ErrInvalidParameter)
		if err != nil {
			return err
		}

		metadata, err := json.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("encode message metadata: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO messages (id, session_id, user_id, role, content, timestamp, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			msgID, sid, msg.UserID, string(msg.Role), msg.Content, msg.Timestamp, metadata,
		); err != nil {
			return fmt.Errorf("insert %s message: %w", msg.Role, err)
		}
	}

	tag, err := tx.Exec(ctx, `UPDATE sessions SET updated_at = now() WHERE id = $1`, sid)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrSessionNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
