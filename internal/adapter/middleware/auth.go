package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ovibet/cashier/internal/core/security"
)

// Protected gates the cashier endpoints behind an API key. The key hash is
// looked up in the api_keys table and the owning user id is stashed in the
// request locals for the handlers.
func Protected(db *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization") // "Bearer csh_live_..."
		if authHeader == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Missing API Key"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid Header Format"})
		}

		// Never compare plain text, only hashes.
		hashedKey := security.HashKey(parts[1])

		var userID string
		err := db.QueryRow(c.Context(),
			"SELECT user_id FROM api_keys WHERE key_hash = $1", hashedKey).Scan(&userID)
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid API Key"})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}
