package router

import (
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/shopdeckhq/shopdeck/app/controllers"
	"github.com/shopdeckhq/shopdeck/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/shops", fiber.StatusSeeOther)
	})

	// Auth
	app.Get("/login", controllers.HandleAuthLogin)
	app.Post("/login", controllers.HandleAuthLogin)
	app.Get("/register", controllers.HandleAuthRegister)
	app.Post("/register", controllers.HandleAuthRegister)
	app.Get("/activate", controllers.HandleUserActivate)
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Account
	app.Post("/account/elevate", middleware.RequireAuth, controllers.HandleAccountElevate)
	app.Post("/account/api-key/rotate", middleware.RequireAuth, controllers.HandleAPIKeyRotate)

	// Social OAuth
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Billing provider webhooks (no session, signature-verified in controller)
	app.Post("/webhooks/billing", controllers.HandleBillingWebhook)
}
