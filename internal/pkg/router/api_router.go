package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	apiv1 "github.com/shopdeckhq/shopdeck/internal/api/v1"
	"github.com/shopdeckhq/shopdeck/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiServer := apiv1.NewAPIServer()

	v1.Get("/ping", apiServer.GetPing)

	// Console client polling: web session or user API key.
	v1.Get("/shops/billing-status", middleware.RequireAPISessionAuth, apiServer.GetShopBillingStatus)
	v1.Get("/user/shops/billing-status", middleware.APIKeyAuthMiddleware(), apiServer.GetShopBillingStatus)

	// Terminal endpoints authenticate with device tokens.
	device := v1.Group("/devices", middleware.DeviceAuthMiddleware())
	device.Get("/latest-update", apiServer.GetDeviceLatestUpdate)
	device.Post("/heartbeat", apiServer.PostDeviceHeartbeat)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
