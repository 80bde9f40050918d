package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shopdeckhq/shopdeck/app/models"
	"github.com/shopdeckhq/shopdeck/app/repository"
	"github.com/shopdeckhq/shopdeck/internal/pkg/audit"
	"github.com/shopdeckhq/shopdeck/internal/pkg/usercontext"
)

// HandleDeviceEnroll registers a new terminal for a shop. The raw token is
// part of this response and never shown again.
func HandleDeviceEnroll(c *fiber.Ctx) error {
	shop, err := loadShopForViewer(c, c.Params("id"))
	if err != nil {
		return err
	}

	name := c.FormValue("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_request",
			"message": "device name is required",
		})
	}

	device, rawToken, err := models.NewDevice(shop.ID, name, c.FormValue("platform"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal",
			"message": "could not generate device token",
		})
	}

	if err := repository.GetGlobalFactory().GetDeviceRepository().Create(device); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal",
			"message": "could not enroll device",
		})
	}

	audit.Record(shop.ID, usercontext.GetUserID(c), models.AuditDeviceEnrolled, "device", device.PublicID,
		fiber.Map{"name": device.Name, "platform": device.Platform})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok": true,
		"device": fiber.Map{
			"public_id": device.PublicID,
			"name":      device.Name,
			"platform":  device.Platform,
			"status":    device.Status,
		},
		"token": rawToken,
	})
}

// HandleDeviceRevoke cuts off a terminal. Revocation is permanent; the
// terminal must be re-enrolled to come back.
func HandleDeviceRevoke(c *fiber.Ctx) error {
	shop, err := loadShopForViewer(c, c.Params("id"))
	if err != nil {
		return err
	}

	repos := repository.GetGlobalFactory().GetDeviceRepository()
	device, err := repos.GetByPublicID(c.Params("deviceID"))
	if err != nil || device.ShopID != shop.ID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "not_found",
			"message": "device not found",
		})
	}

	device.Status = models.DeviceStatusRevoked
	if err := repos.Update(device); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal",
			"message": "could not revoke device",
		})
	}

	audit.Record(shop.ID, usercontext.GetUserID(c), models.AuditDeviceRevoked, "device", device.PublicID, nil)

	return c.JSON(fiber.Map{"ok": true})
}

// HandleDeviceList returns the shop's terminals for the console.
func HandleDeviceList(c *fiber.Ctx) error {
	shop, err := loadShopForViewer(c, c.Params("id"))
	if err != nil {
		return err
	}

	devices, err := repository.GetGlobalFactory().GetDeviceRepository().GetByShopID(shop.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal",
			"message": "could not load devices",
		})
	}

	out := make([]fiber.Map, 0, len(devices))
	for _, d := range devices {
		out = append(out, fiber.Map{
			"public_id":    d.PublicID,
			"name":         d.Name,
			"platform":     d.Platform,
			"app_version":  d.AppVersion,
			"status":       d.Status,
			"last_seen_at": formatTimePtr(d.LastSeenAt),
		})
	}

	return c.JSON(fiber.Map{"ok": true, "devices": out})
}
