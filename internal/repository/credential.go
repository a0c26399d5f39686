package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/northwind/salesportal/internal/model"
)

var (
	ErrCredentialNotFound = errors.New("credential not found")
)

// CredentialRepository is read-only for the running server; Put is used by
// the operator CLI to provision the two role hashes.
type CredentialRepository interface {
	ByKey(ctx context.Context, key string) (*model.Credential, error)
	Put(ctx context.Context, cred *model.Credential) error
}

type credentialRepository struct {
	db *sqlx.DB
}

func NewCredentialRepository(db *sqlx.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) ByKey(ctx context.Context, key string) (*model.Credential, error) {
	cred := &model.Credential{}
	query := `SELECT cred_key, password_hash, updated_at FROM credentials WHERE cred_key = $1`

	err := r.db.GetContext(ctx, cred, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}

	return cred, nil
}

func (r *credentialRepository) Put(ctx context.Context, cred *model.Credential) error {
	query := `INSERT INTO credentials (cred_key, password_hash, updated_at)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (cred_key) DO UPDATE SET password_hash = excluded.password_hash, updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, cred.Key, cred.PasswordHash, cred.UpdatedAt)
	return err
}
