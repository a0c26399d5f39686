package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// RevocationRepository is the token denylist. Entries only need to live until
// the revoked token would have expired on its own.
type RevocationRepository interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type revocationRepository struct {
	db *sqlx.DB
}

func NewRevocationRepository(db *sqlx.DB) RevocationRepository {
	return &revocationRepository{db: db}
}

func (r *revocationRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	query := `INSERT INTO revoked_tokens (token_id, expires_at) VALUES ($1, $2) ON CONFLICT (token_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, tokenID, expiresAt.UTC())
	return err
}

func (r *revocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM revoked_tokens WHERE token_id = $1 AND expires_at > $2`

	err := r.db.GetContext(ctx, &count, query, tokenID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeExpired removes denylist rows whose tokens have expired anyway.
func (r *revocationRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= $1`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
