package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ovibet/cashier/internal/adapter/storage"
)

// Idempotency replays the cached response for a repeated Idempotency-Key.
// Applied to the confirm endpoint so a double-clicked confirm (or a proxy
// retry) can never trigger a second submission path.
func Idempotency(repo *storage.IdempotencyRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("Idempotency-Key")
		if key == "" {
			return c.Next()
		}

		status, body, found, _ := repo.Lookup(c.Context(), key)
		if found {
			slog.Info("🛑 idempotency hit, returning cached response", "key", key)
			c.Set("X-Idempotency-Hit", "true")
			c.Set("Content-Type", "application/json")
			return c.Status(status).Send(body)
		}

		if err := c.Next(); err != nil {
			return err
		}

		resStatus := c.Response().StatusCode()
		resBody := c.Response().Body()

		if err := repo.Save(c.Context(), key, resStatus, resBody); err != nil {
			slog.Error("failed to save idempotency key", "error", err, "key", key)
		}
		return nil
	}
}
