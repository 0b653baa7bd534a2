package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// APIKeyRepository stores hashed API keys for the cashier endpoints.
type APIKeyRepository struct {
	Db *pgxpool.Pool
}

func NewAPIKeyRepository(db *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{Db: db}
}

// Save stores the hash of a freshly generated key for a user. The raw key
// is never persisted.
func (r *APIKeyRepository) Save(ctx context.Context, userID, keyHash string) error {
	_, err := r.Db.Exec(ctx,
		`INSERT INTO api_keys (user_id, key_hash) VALUES ($1, $2)`, userID, keyHash)
	return err
}
