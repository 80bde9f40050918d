package apiv1

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/shopdeckhq/shopdeck/app/models"
	"github.com/shopdeckhq/shopdeck/app/repository"
	"github.com/shopdeckhq/shopdeck/internal/pkg/middleware"
	"github.com/shopdeckhq/shopdeck/internal/pkg/updatestorage"
	"github.com/shopdeckhq/shopdeck/internal/pkg/usercontext"
)

// APIServer implements the public v1 API surface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// Pong is the ping response body
type Pong struct {
	Ping string `json:"ping"`
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetShopBillingStatus returns the raw billing record for a shop the caller
// belongs to. This is the endpoint console clients poll; it reports state and
// never decides access, so it stays reachable for unpaid shops.
func (s *APIServer) GetShopBillingStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"ok":    false,
			"error": "authentication required",
		})
	}

	shopID := c.Query("shop_id")
	if _, err := uuid.Parse(shopID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"ok":    false,
			"error": "malformed shop_id",
		})
	}

	repos := repository.GetGlobalFactory().GetShopRepository()
	shop, err := repos.GetByPublicID(shopID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"ok":    false,
			"error": "shop not found",
		})
	}

	// Non-members get the same answer as a missing shop.
	if !userCtx.IsAdmin && shop.OwnerUserID != userCtx.UserID {
		member, err := repos.IsMember(userCtx.UserID, shopID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"ok":    false,
				"error": "membership lookup failed",
			})
		}
		if !member {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"ok":    false,
				"error": "shop not found",
			})
		}
	}

	return c.JSON(fiber.Map{
		"ok": true,
		"shop": fiber.Map{
			"billing_status":             shop.BillingStatus,
			"billing_current_period_end": shop.BillingCurrentPeriodEnd,
			"billing_customer_ref":       shop.BillingCustomerRef,
			"billing_subscription_ref":   shop.BillingSubscriptionRef,
		},
	})
}

// GetDeviceLatestUpdate answers a terminal's update poll with the newest
// published release on its channel, as a time-limited download URL.
func (s *APIServer) GetDeviceLatestUpdate(c *fiber.Ctx) error {
	deviceVal := c.Locals(middleware.DeviceContextKey)
	device, ok := deviceVal.(*models.Device)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"ok":    false,
			"error": "device authentication required",
		})
	}

	channel := c.Query("channel", models.ReleaseChannelStable)
	if channel != models.ReleaseChannelStable && channel != models.ReleaseChannelBeta {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"ok":    false,
			"error": "unknown channel",
		})
	}

	release, err := repository.GetGlobalFactory().GetReleaseRepository().LatestPublished(device.ShopID, channel)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"ok":    false,
			"error": "no published release",
		})
	}

	// Short-circuit when the terminal already runs this version.
	if device.AppVersion == release.Version {
		return c.JSON(fiber.Map{"ok": true, "up_to_date": true})
	}

	storage := updatestorage.GetClient()
	if storage == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"ok":    false,
			"error": "update storage unavailable",
		})
	}

	downloadURL, err := storage.PresignDownload(c.UserContext(), release.ObjectKey, 15*time.Minute)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"ok":    false,
			"error": "could not presign download",
		})
	}

	return c.JSON(fiber.Map{
		"ok":         true,
		"up_to_date": false,
		"release": fiber.Map{
			"version":         release.Version,
			"channel":         release.Channel,
			"size_bytes":      release.SizeBytes,
			"checksum_sha256": release.ChecksumSHA,
			"download_url":    downloadURL,
		},
	})
}

// PostDeviceHeartbeat lets a terminal report its current app version. The
// auth middleware already refreshed last-seen.
func (s *APIServer) PostDeviceHeartbeat(c *fiber.Ctx) error {
	deviceVal := c.Locals(middleware.DeviceContextKey)
	device, ok := deviceVal.(*models.Device)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"ok":    false,
			"error": "device authentication required",
		})
	}

	var body struct {
		AppVersion string `json:"app_version"`
	}
	if err := c.BodyParser(&body); err == nil && body.AppVersion != "" && body.AppVersion != device.AppVersion {
		device.AppVersion = body.AppVersion
		if err := repository.GetGlobalFactory().GetDeviceRepository().Update(device); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"ok":    false,
				"error": "could not record heartbeat",
			})
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}
