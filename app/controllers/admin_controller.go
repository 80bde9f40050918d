package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/shopdeckhq/shopdeck/app/repository"
	"github.com/shopdeckhq/shopdeck/internal/pkg/billinggate"
	"github.com/shopdeckhq/shopdeck/internal/pkg/metrics/counter"
)

// AdminController handles platform admin HTTP requests using repository pattern
type AdminController struct {
	repos *repository.Repositories
}

// NewAdminController creates a new admin controller with repository dependencies
func NewAdminController(repos *repository.Repositories) *AdminController {
	return &AdminController{
		repos: repos,
	}
}

// HandleDashboard renders the admin overview with platform counts, the
// current gate configuration and the pending gate counters.
func (ac *AdminController) HandleDashboard(c *fiber.Ctx) error {
	totalUsers, err := ac.repos.User.Count()
	if err != nil {
		return ac.handleError(c, "Failed to get user count", err)
	}

	totalShops, err := ac.repos.Shop.Count()
	if err != nil {
		return ac.handleError(c, "Failed to get shop count", err)
	}

	gateTotals, err := counter.Totals()
	if err != nil {
		log.Printf("gate counter read failed: %v", err)
		gateTotals = &counter.GateTotals{DenialsByKind: map[string]int64{}}
	}

	cfg := billinggate.ConfigFromEnv()

	return c.Render("admin/dashboard", fiber.Map{
		"Title":           "Admin",
		"TotalUsers":      totalUsers,
		"TotalShops":      totalShops,
		"GateMode":        string(cfg.Mode),
		"GraceDays":       cfg.GraceDays,
		"EmergencyUnlock": cfg.EmergencyUnlock,
		"UnlockedShops":   len(cfg.UnlockShops),
		"GateAllows":      gateTotals.Allows,
		"GateDenials":     gateTotals.Denials,
		"DenialsByKind":   gateTotals.DenialsByKind,
		"Flash":           flash.Get(c),
	}, "layouts/main")
}

// HandleUserList lists all accounts for the admin.
func (ac *AdminController) HandleUserList(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	users, err := ac.repos.User.List(offset, limit)
	if err != nil {
		return ac.handleError(c, "Failed to list users", err)
	}
	total, _ := ac.repos.User.Count()

	return c.Render("admin/users", fiber.Map{
		"Title":  "Users",
		"Users":  users,
		"Total":  total,
		"Offset": offset,
		"Limit":  limit,
		"Flash":  flash.Get(c),
	}, "layouts/main")
}

// HandleShopList lists all shops with their billing state for the admin.
func (ac *AdminController) HandleShopList(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	shops, err := ac.repos.Shop.List(offset, limit)
	if err != nil {
		return ac.handleError(c, "Failed to list shops", err)
	}
	total, _ := ac.repos.Shop.Count()

	return c.Render("admin/shops", fiber.Map{
		"Title":  "Shops",
		"Shops":  shops,
		"Total":  total,
		"Offset": offset,
		"Limit":  limit,
		"Flash":  flash.Get(c),
	}, "layouts/main")
}

// HandleGateCountersReset drops the pending gate counters.
func (ac *AdminController) HandleGateCountersReset(c *fiber.Ctx) error {
	if err := counter.Reset(); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Could not reset gate counters.",
		}).Redirect("/admin")
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Gate counters reset.",
	}).Redirect("/admin")
}

var adminController *AdminController

// InitializeAdminController sets up the admin controller with the global
// repository factory. Called once during router installation.
func InitializeAdminController() {
	adminController = NewAdminController(repository.GetGlobalFactory().GetRepositories())
}

func HandleAdminDashboard(c *fiber.Ctx) error {
	return adminController.HandleDashboard(c)
}

func HandleAdminUsers(c *fiber.Ctx) error {
	return adminController.HandleUserList(c)
}

func HandleAdminShops(c *fiber.Ctx) error {
	return adminController.HandleShopList(c)
}

func HandleAdminGateCountersReset(c *fiber.Ctx) error {
	return adminController.HandleGateCountersReset(c)
}

// handleError logs the error and renders a flash redirect to the dashboard
func (ac *AdminController) handleError(c *fiber.Ctx, message string, err error) error {
	log.Printf("%s: %v", message, err)
	return flash.WithError(c, fiber.Map{
		"type":    "error",
		"message": message,
	}).Redirect("/admin")
}
