package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WebhookJob is one queued delivery of a cashier event to the surrounding
// application.
type WebhookJob struct {
	ID       string
	URL      string
	Payload  []byte
	Attempts int
}

// WebhookJobRepository is a pg-backed job queue for outbound webhooks.
type WebhookJobRepository struct {
	Db *pgxpool.Pool
}

func NewWebhookJobRepository(db *pgxpool.Pool) *WebhookJobRepository {
	return &WebhookJobRepository{Db: db}
}

func (r *WebhookJobRepository) Enqueue(ctx context.Context, url string, payload []byte) error {
	_, err := r.Db.Exec(ctx,
		`INSERT INTO webhook_jobs (url, payload) VALUES ($1, $2)`, url, payload)
	return err
}

// NextPending claims the oldest due job. SKIP LOCKED keeps multiple workers
// from grabbing the same row.
func (r *WebhookJobRepository) NextPending(ctx context.Context) (WebhookJob, bool, error) {
	var job WebhookJob
	err := r.Db.QueryRow(ctx, `
		SELECT id, url, payload, attempts
		FROM webhook_jobs
		WHERE status = 'PENDING' AND next_run_at <= NOW()
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED`).Scan(&job.ID, &job.URL, &job.Payload, &job.Attempts)
	if err != nil {
		return WebhookJob{}, false, nil
	}
	return job, true, nil
}

func (r *WebhookJobRepository) MarkDone(ctx context.Context, id string) error {
	_, err := r.Db.Exec(ctx, `UPDATE webhook_jobs SET status = 'DONE' WHERE id = $1`, id)
	return err
}

func (r *WebhookJobRepository) MarkFailed(ctx context.Context, id string) error {
	_, err := r.Db.Exec(ctx, `UPDATE webhook_jobs SET status = 'FAILED' WHERE id = $1`, id)
	return err
}

// Reschedule bumps the attempt counter and pushes the job out with a linear
// backoff.
func (r *WebhookJobRepository) Reschedule(ctx context.Context, id string, attempts int) error {
	nextRun := time.Now().Add(time.Duration(attempts*10+10) * time.Second)
	_, err := r.Db.Exec(ctx,
		`UPDATE webhook_jobs SET attempts = $1, next_run_at = $2 WHERE id = $3`,
		attempts, nextRun, id)
	return err
}
