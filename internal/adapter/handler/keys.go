package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ovibet/cashier/internal/adapter/storage"
	"github.com/ovibet/cashier/internal/core/security"
)

type KeyHandler struct {
	Repo *storage.APIKeyRepository
}

type CreateKeyRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// CreateKey mints an API key for a user. The raw key is returned exactly
// once; only its hash is stored.
func (h *KeyHandler) CreateKey(c *fiber.Ctx) error {
	var req CreateKeyRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	realKey, keyHash, err := security.GenerateAPIKey()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Key generation failed"})
	}

	if err := h.Repo.Save(c.Context(), req.UserID, keyHash); err != nil {
		slog.Error("failed to store api key", "error", err, "user_id", req.UserID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not store key"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"apiKey":  realKey,
		"message": "Store this key now, it will not be shown again.",
	})
}
