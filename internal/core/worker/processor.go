package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/ovibet/cashier/internal/adapter/storage"
	"github.com/ovibet/cashier/internal/core/notifications"
)

const maxAttempts = 5

// StartWebhookWorker polls the job queue and delivers cashier events to the
// surrounding application. Failed deliveries are rescheduled with backoff
// until maxAttempts.
func StartWebhookWorker(ctx context.Context, jobs *storage.WebhookJobRepository, secret string, logger *slog.Logger) {
	go func() {
		logger.Info("👷 webhook worker started")
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info("webhook worker stopped")
				return
			case <-ticker.C:
				processNext(ctx, jobs, secret, logger)
			}
		}
	}()
}

func processNext(ctx context.Context, jobs *storage.WebhookJobRepository, secret string, logger *slog.Logger) {
	job, ok, err := jobs.NextPending(ctx)
	if err != nil || !ok {
		return
	}

	logger.Info("delivering webhook", "job_id", job.ID, "url", job.URL, "attempts", job.Attempts)

	if sendErr := notifications.SendWebhook(job.URL, job.Payload, secret); sendErr != nil {
		logger.Warn("webhook delivery failed", "job_id", job.ID, "error", sendErr, "attempts", job.Attempts)
		if job.Attempts+1 >= maxAttempts {
			if err := jobs.MarkFailed(ctx, job.ID); err != nil {
				logger.Error("failed to mark webhook job failed", "job_id", job.ID, "error", err)
			}
			return
		}
		if err := jobs.Reschedule(ctx, job.ID, job.Attempts+1); err != nil {
			logger.Error("failed to reschedule webhook job", "job_id", job.ID, "error", err)
		}
		return
	}

	if err := jobs.MarkDone(ctx, job.ID); err != nil {
		logger.Error("failed to mark webhook job done", "job_id", job.ID, "error", err)
	}
}
