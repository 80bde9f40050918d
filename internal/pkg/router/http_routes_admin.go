package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shopdeckhq/shopdeck/app/controllers"
	"github.com/shopdeckhq/shopdeck/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAdmin)
	adminGroup.Get("/", controllers.HandleAdminDashboard)
	adminGroup.Get("/users", controllers.HandleAdminUsers)
	adminGroup.Get("/shops", controllers.HandleAdminShops)
	adminGroup.Post("/gate-counters/reset", controllers.HandleAdminGateCountersReset)
}
