package repository

import (
	"context"
	"fmt"

	"github.com/futig/crm-assistant/internal/entity"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FileRepository defines the interface for uploaded file metadata persistence
type FileRepository interface {
	CreateFile(ctx context.Context, file *entity.FileRecord) (*entity.FileRecord, error)
	GetFileByID(ctx context.Context, id string) (*entity.FileRecord, error)
	ListActiveFilesByUser(ctx context.Context, userID string) ([]*entity.FileRecord, error)
	DeactivateFile(ctx context.Context, id string) error
}

var _ FileRepository = &FilePostgres{}

// FilePostgres implements FileRepository using PostgreSQL
type FilePostgres struct {
	db *pgxpool.Pool
}

func NewFilePostgres(db *pgxpool.Pool) *FilePostgres {
	return &FilePostgres{db: db}
}

func (r *FilePostgres) CreateFile(ctx context.Context, file *entity.FileRecord) (*entity.FileRecord, error) {
	fileID, err := parseUUID(file.ID, entity.ErrInvalidParameter)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO files (id, user_id, filename, file_type, file_size, vector_store_path, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		 RETURNING `+fileColumns,
		fileID, file.UserID, file.Filename, string(file.FileType), file.Size, file.VectorStorePath,
	)

	created, err := scanFile(row)
	if err != nil {
		return nil, fmt.Errorf("add file: %w", err)
	}

	return created, nil
}

func (r *FilePostgres) GetFileByID(ctx context.Context, id string) (*entity.FileRecord, error) {
	fileID, err := parseUUID(id, entity.ErrFileNotFound)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `SELECT `+fileColumns+` FROM files WHERE id = $1`, fileID)

	file, err := scanFile(row)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", mapNoRows(err, entity.ErrFileNotFound))
	}

	return file, nil
}

// ListActiveFilesByUser returns the user's active files, newest upload first
func (r *FilePostgres) ListActiveFilesByUser(ctx context.Context, userID string) ([]*entity.FileRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+fileColumns+` FROM files
		 WHERE user_id = $1 AND is_active
		 ORDER BY uploaded_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []*entity.FileRecord
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	return files, nil
}

// DeactivateFile soft-deletes the record; the index on disk is left in place
func (r *FilePostgres) DeactivateFile(ctx context.Context, id string) error {
	fileID, err := parseUUID(id, entity.ErrFileNotFound)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `UPDATE files SET is_active = FALSE WHERE id = $1 AND is_active`, fileID)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrFileNotFound
	}

	return nil
}
