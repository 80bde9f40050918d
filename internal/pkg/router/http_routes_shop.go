package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shopdeckhq/shopdeck/app/controllers"
	"github.com/shopdeckhq/shopdeck/internal/pkg/middleware"
)

// registerShopRoutes wires the console. Reads need only a session; every
// mutation of shop-scoped data additionally passes the billing gate.
func (h HttpRouter) registerShopRoutes(app *fiber.App) {
	shops := app.Group("/shops", middleware.RequireAuth)

	shops.Get("/", controllers.HandleShopsList)
	shops.Post("/", controllers.HandleShopCreate)

	shops.Get("/:id", controllers.HandleShopView)
	shops.Get("/:id/billing", controllers.HandleShopBillingPage)
	shops.Get("/:id/audit", controllers.HandleShopAuditLog)
	shops.Get("/:id/devices", controllers.HandleDeviceList)

	// Gate is attached per write route, never on the :id group: reads must
	// stay reachable for unpaid shops.
	gate := middleware.RequireShopWrite()
	shops.Post("/:id", gate, controllers.HandleShopUpdate)
	shops.Post("/:id/delete", gate, controllers.HandleShopDelete)
	shops.Post("/:id/billing/link", gate, controllers.HandleBillingLink)

	shops.Post("/:id/members", gate, controllers.HandleShopMemberAdd)
	shops.Post("/:id/members/:userID/remove", gate, controllers.HandleShopMemberRemove)

	shops.Post("/:id/devices", gate, controllers.HandleDeviceEnroll)
	shops.Post("/:id/devices/:deviceID/revoke", gate, controllers.HandleDeviceRevoke)

	shops.Post("/:id/releases", gate, controllers.HandleReleaseUpload)
	shops.Post("/:id/releases/:releaseID/publish", gate, controllers.HandleReleasePublish)
	shops.Post("/:id/releases/:releaseID/withdraw", gate, controllers.HandleReleaseWithdraw)
}
