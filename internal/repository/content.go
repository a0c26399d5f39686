package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/northwind/salesportal/internal/model"
)

var (
	ErrContentNotFound = errors.New("content not found")
	ErrContentExists   = errors.New("content already exists")
	ErrVersionConflict = errors.New("content was modified by another request")
)

type ContentRepository interface {
	Create(ctx context.Context, content *model.Content) error
	ByID(ctx context.Context, id string) (*model.Content, error)
	// List returns newest first, optionally restricted to one category.
	List(ctx context.Context, category string, limit int) ([]*model.Content, error)
	// Update overwrites the stored record only if its version still equals
	// expectedVersion. The caller sets content.Version to the new value.
	Update(ctx context.Context, content *model.Content, expectedVersion int64) error
	// Delete removes the record and returns it as it was before deletion.
	Delete(ctx context.Context, id string) (*model.Content, error)
	// WithFiles returns every record that references a blob key.
	WithFiles(ctx context.Context) ([]*model.Content, error)
}

type contentRepository struct {
	db *sqlx.DB
}

func NewContentRepository(db *sqlx.DB) ContentRepository {
	return &contentRepository{db: db}
}

const contentColumns = `id, category, title, description, file_key, file_name, file_type, file_size, blob_status, tags, version, created_at, updated_at`

func (r *contentRepository) Create(ctx context.Context, c *model.Content) error {
	query := `INSERT INTO content (` + contentColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          ON CONFLICT (id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Category,
		c.Title,
		c.Description,
		c.FileKey,
		c.FileName,
		c.FileType,
		c.FileSize,
		c.BlobStatus,
		c.Tags,
		c.Version,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrContentExists
	}
	return nil
}

func (r *contentRepository) ByID(ctx context.Context, id string) (*model.Content, error) {
	content := &model.Content{}
	query := `SELECT ` + contentColumns + ` FROM content WHERE id = $1`

	err := r.db.GetContext(ctx, content, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}

	return content, nil
}

func (r *contentRepository) List(ctx context.Context, category string, limit int) ([]*model.Content, error) {
	var items []*model.Content
	var err error

	if category != "" {
		query := `SELECT ` + contentColumns + ` FROM content WHERE category = $1 ORDER BY created_at DESC LIMIT $2`
		err = r.db.SelectContext(ctx, &items, query, category, limit)
	} else {
		query := `SELECT ` + contentColumns + ` FROM content ORDER BY created_at DESC LIMIT $1`
		err = r.db.SelectContext(ctx, &items, query, limit)
	}
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *contentRepository) Update(ctx context.Context, c *model.Content, expectedVersion int64) error {
	query := `UPDATE content
	          SET category = $1, title = $2, description = $3, file_key = $4, file_name = $5, file_type = $6,
	              file_size = $7, blob_status = $8, tags = $9, version = $10, updated_at = $11
	          WHERE id = $12 AND version = $13`

	result, err := r.db.ExecContext(ctx, query,
		c.Category,
		c.Title,
		c.Description,
		c.FileKey,
		c.FileName,
		c.FileType,
		c.FileSize,
		c.BlobStatus,
		c.Tags,
		c.Version,
		c.UpdatedAt,
		c.ID,
		expectedVersion,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// Nothing matched: either the row is gone or its version moved on.
	_, err = r.ByID(ctx, c.ID)
	if err != nil {
		return err
	}
	return ErrVersionConflict
}

func (r *contentRepository) Delete(ctx context.Context, id string) (*model.Content, error) {
	content := &model.Content{}
	query := `DELETE FROM content WHERE id = $1 RETURNING ` + contentColumns

	err := r.db.GetContext(ctx, content, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}

	return content, nil
}

func (r *contentRepository) WithFiles(ctx context.Context) ([]*model.Content, error) {
	var items []*model.Content
	query := `SELECT ` + contentColumns + ` FROM content WHERE file_key IS NOT NULL ORDER BY created_at`

	err := r.db.SelectContext(ctx, &items, query)
	if err != nil {
		return nil, err
	}
	return items, nil
}
