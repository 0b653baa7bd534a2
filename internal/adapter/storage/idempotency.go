package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// IdempotencyRepository caches HTTP responses keyed by the client-supplied
// Idempotency-Key header, so a replayed confirm request gets the first
// response back instead of a second booking attempt.
type IdempotencyRepository struct {
	Db *pgxpool.Pool
}

func NewIdempotencyRepository(db *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{Db: db}
}

// Lookup returns the cached response for a key, or found=false.
func (r *IdempotencyRepository) Lookup(ctx context.Context, key string) (status int, body []byte, found bool, err error) {
	err = r.Db.QueryRow(ctx,
		`SELECT response_status, response_body FROM idempotency_keys WHERE key_id = $1`,
		key).Scan(&status, &body)
	if err != nil {
		return 0, nil, false, nil
	}
	return status, body, true, nil
}

// Save stores a response under the key. Conflicts are ignored: the first
// writer wins, which is exactly the semantics idempotency needs.
func (r *IdempotencyRepository) Save(ctx context.Context, key string, status int, body []byte) error {
	_, err := r.Db.Exec(ctx,
		`INSERT INTO idempotency_keys (key_id, response_status, response_body)
		 VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		key, status, body)
	return err
}
