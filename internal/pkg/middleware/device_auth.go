package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shopdeckhq/shopdeck/app/models"
	"github.com/shopdeckhq/shopdeck/app/repository"
)

// DeviceContextKey is the Locals key carrying the authenticated device.
const DeviceContextKey = "DEVICE_CONTEXT"

// DeviceAuthMiddleware authenticates terminal requests carrying a device token.
func DeviceAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Get("X-Device-Token"))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing device token"})
		}

		repo := repository.GetGlobalFactory().GetDeviceRepository()
		device, err := repo.GetByTokenHash(models.HashDeviceToken(token))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid device token"})
			}
			log.Printf("device token lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Device verification failed"})
		}
		if device.IsRevoked() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Device revoked"})
		}

		// Heartbeat best-effort.
		device.Touch()
		if err := repo.Update(device); err != nil {
			log.Printf("failed to update device last-seen for %s: %v", device.PublicID, err)
		}

		c.Locals(DeviceContextKey, device)
		return c.Next()
	}
}
