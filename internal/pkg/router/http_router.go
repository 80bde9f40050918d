package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shopdeckhq/shopdeck/app/controllers"
	"github.com/shopdeckhq/shopdeck/internal/pkg/middleware"
	"github.com/shopdeckhq/shopdeck/internal/pkg/oauth"
	"github.com/shopdeckhq/shopdeck/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Initialize admin controller with repositories
	controllers.InitializeAdminController()

	h.registerPublicRoutes(app)
	h.registerShopRoutes(app)
	h.registerAdminRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
