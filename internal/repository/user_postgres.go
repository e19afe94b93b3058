package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	UpdateUser(ctx context.Context, id string, update *entity.UserUpdateRequest) (*entity.User, error)
}

var _ UserRepository = &UserPostgres{}

// UserPostgres implements UserRepository using PostgreSQL
type UserPostgres struct {
	db *pgxpool.Pool
}

func NewUserPostgres(db *pgxpool.Pool) *UserPostgres {
	return &UserPostgres{db: db}
}

func (r *UserPostgres) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	prefs, err := encodePreferences(user.Preferences)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO users (id, name, email, company, phone, preferences)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		user.ID, user.Name, user.Email, toText(user.Company), toText(user.Phone), prefs,
	)

	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return created, nil
}

func (r *UserPostgres) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", mapNoRows(err, entity.ErrUserNotFound))
	}

	return user, nil
}

// UpdateUser applies the non-nil fields of update; preferences are replaced as a whole.
func (r *UserPostgres) UpdateUser(ctx context.Context, id string, update *entity.UserUpdateRequest) (*entity.User, error) {
	var prefs []byte
	if update.Preferences != nil {
		encoded, err := encodePreferences(update.Preferences)
		if err != nil {
			return nil, err
		}
		prefs = encoded
	}

	row := r.db.QueryRow(ctx,
		`UPDATE users SET
		     name        = COALESCE($2, name),
		     email       = COALESCE($3, email),
		     company     = COALESCE($4, company),
		     phone       = COALESCE($5, phone),
		     preferences = COALESCE($6::jsonb, preferences),
		     updated_at  = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, update.Name, update.Email, update.Company, update.Phone, prefs,
	)

	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("update user: %w", mapNoRows(err, entity.ErrUserNotFound))
	}

	return user, nil
}

func encodePreferences(prefs map[string]any) ([]byte, error) {
	if prefs == nil {
		prefs = map[string]any{}
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}

	return data, nil
}
