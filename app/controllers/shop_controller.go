package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/shopdeckhq/shopdeck/app/models"
	"github.com/shopdeckhq/shopdeck/app/repository"
	"github.com/shopdeckhq/shopdeck/internal/pkg/audit"
	"github.com/shopdeckhq/shopdeck/internal/pkg/billinggate"
	"github.com/shopdeckhq/shopdeck/internal/pkg/constants"
	"github.com/shopdeckhq/shopdeck/internal/pkg/usercontext"
)

// loadShopForViewer returns the shop when the current user may read it
// (owner, member or platform admin). Reads are never billing-gated.
func loadShopForViewer(c *fiber.Ctx, publicID string) (*models.Shop, error) {
	repos := repository.GetGlobalFactory()
	shop, err := repos.GetShopRepository().GetByPublicID(publicID)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "shop not found")
	}

	userCtx := usercontext.GetUserContext(c)
	if userCtx.IsAdmin || shop.OwnerUserID == userCtx.UserID {
		return shop, nil
	}
	member, err := repos.GetShopRepository().IsMember(userCtx.UserID, publicID)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "membership lookup failed")
	}
	if !member {
		return nil, fiber.NewError(fiber.StatusNotFound, "shop not found")
	}
	return shop, nil
}

func HandleShopsList(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	shops, err := repository.GetGlobalFactory().GetShopRepository().GetByUserID(userCtx.UserID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load shops")
	}

	return c.Render("shops/index", fiber.Map{
		"Title": "Your shops",
		"Shops": shops,
		"Flash": flash.Get(c),
	}, "layouts/main")
}

// HandleShopCreate creates a shop and enrolls the creator as owner member.
// Creation is not billing-gated: a fresh shop has no subscription yet.
func HandleShopCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	shop, err := models.CreateShop(c.FormValue("name"), userCtx.UserID)
	if err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("invalid shop: %s", err),
		}).Redirect(constants.ShopsRoute)
	}
	if tz := c.FormValue("timezone"); tz != "" {
		shop.Timezone = tz
	}

	repos := repository.GetGlobalFactory().GetShopRepository()
	if err := repos.Create(shop); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("could not create shop: %s", err),
		}).Redirect(constants.ShopsRoute)
	}
	if err := repos.AddMember(&models.ShopMember{
		ShopID: shop.ID,
		UserID: userCtx.UserID,
		Role:   models.MemberRoleOwner,
	}); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("could not enroll owner: %s", err),
		}).Redirect(constants.ShopsRoute)
	}

	audit.Record(shop.ID, userCtx.UserID, models.AuditShopCreated, "shop", shop.PublicID, fiber.Map{"name": shop.Name})

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Shop created.",
	}).Redirect(constants.ShopsRoute + "/" + shop.PublicID)
}

// shopViewGate is the per-request gate state the show page renders from:
// hard mode bounces to the billing page, hybrid disables the write forms,
// soft only dims them.
type shopViewGate struct {
	Decision billinggate.Decision
	ReadOnly bool
	Dimmed   bool
	Redirect bool
}

func gateViewState(shop *models.Shop, cfg billinggate.Config, now time.Time) shopViewGate {
	d := billinggate.Evaluate(shop.PublicID, billinggate.Snapshot{
		Status:           shop.BillingStatus,
		CurrentPeriodEnd: shop.BillingCurrentPeriodEnd,
	}, cfg, now)

	return shopViewGate{
		Decision: d,
		ReadOnly: d.ReadOnly,
		Dimmed:   cfg.Mode == billinggate.ModeSoft && !d.Allowed,
		Redirect: d.BlockedAll,
	}
}

func HandleShopView(c *fiber.Ctx) error {
	shop, err := loadShopForViewer(c, c.Params("id"))
	if err != nil {
		return err
	}

	cfg := billinggate.ConfigFromEnv()
	gate := gateViewState(shop, cfg, time.Now())
	if gate.Redirect {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "This shop is locked until billing is resolved.",
		}).Redirect(constants.ShopBillingRoute(shop.PublicID))
	}

	repos := repository.GetGlobalFactory()
	members, _ := repos.GetShopRepository().ListMembers(shop.ID)
	devices, _ := repos.GetDeviceRepository().GetByShopID(shop.ID)
	releases, _ := repos.GetReleaseRepository().GetByShopID(shop.ID)

	return c.Render("shops/show", fiber.Map{
		"Title":      shop.Name,
		"Shop":       shop,
		"Members":    members,
		"Devices":    devices,
		"Releases":   releases,
		"GateMode":   string(cfg.Mode),
		"GateStatus": gate.Decision.Status,
		"GateReason": gate.Decision.Reason,
		"GraceUntil": formatTimePtr(gate.Decision.GraceUntil),
		"ReadOnly":   gate.ReadOnly,
		"Dimmed":     gate.Dimmed,
		"IsUnlocked": cfg.IsUnlocked(shop.PublicID),
		"Flash":      flash.Get(c),
	}, "layouts/main")
}

func HandleShopUpdate(c *fiber.Ctx) error {
	shop, err := loadShopForViewer(c, c.Params("id"))
	if err != nil {
		return err
	}

	if name := c.FormValue("name"); name != "" {
		shop.Name = name
	}
	if tz := c.FormValue("timezone"); tz != "" {
		shop.Timezone = tz
	}
	if err := shop.Validate(); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("invalid shop: %s", err),
		}).Redirect(constants.ShopsRoute + "/" + shop.PublicID)
	}

	if err := repository.GetGlobalFactory().GetShopRepository().Update(shop); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("could not save shop: %s", err),
		}).Redirect(constants.ShopsRoute + "/" + shop.PublicID)
	}

	audit.Record(shop.ID, usercontext.GetUserID(c), models.AuditShopUpdated, "shop", shop.PublicID,
		fiber.Map{"name": shop.Name, "timezone": shop.Timezone})

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Shop saved.",
	}).Redirect(constants.ShopsRoute + "/" + shop.PublicID)
}

func HandleShopDelete(c *fiber.Ctx) error {
	shop, err := loadShopForViewer(c, c.Params("id"))
	if err != nil {
		return err
	}

	userCtx := usercontext.GetUserContext(c)
	if shop.OwnerUserID != userCtx.UserID && !userCtx.IsAdmin {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Only the owner can delete a shop.",
		}).Redirect(constants.ShopsRoute + "/" + shop.PublicID)
	}

	if err := repository.GetGlobalFactory().GetShopRepository().Delete(shop.ID); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("could not delete shop: %s", err),
		}).Redirect(constants.ShopsRoute + "/" + shop.PublicID)
	}

	audit.Record(shop.ID, userCtx.UserID, models.AuditShopDeleted, "shop", shop.PublicID, nil)

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Shop deleted.",
	}).Redirect(constants.ShopsRoute)
}

// HandleShopBillingPage is the hard-mode redirect target: it stays reachable
// for members regardless of the shop's billing state.
func HandleShopBillingPage(c *fiber.Ctx) error {
	shop, err := loadShopForViewer(c, c.Params("id"))
	if err != nil {
		return err
	}

	cfg := billinggate.ConfigFromEnv()

	return c.Render("shops/billing", fiber.Map{
		"Title":      shop.Name + " billing",
		"Shop":       shop,
		"PeriodEnd":  formatTimePtr(shop.BillingCurrentPeriodEnd),
		"GraceDays":  cfg.GraceDays,
		"IsUnlocked": cfg.IsUnlocked(shop.PublicID),
		"Flash":      flash.Get(c),
	}, "layouts/main")
}

func HandleShopMemberAdd(c *fiber.Ctx) error {
	shop, err := loadShopForViewer(c, c.Params("id"))
	if err != nil {
		return err
	}

	repos := repository.GetGlobalFactory()
	user, err := repos.GetUserRepository().GetByEmail(c.FormValue("email"))
	if err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "No account with that email address.",
		}).Redirect(constants.ShopsRoute + "/" + shop.PublicID)
	}

	role := c.FormValue("role", models.MemberRoleStaff)
	if role != models.MemberRoleManager && role != models.MemberRoleStaff {
		role = models.MemberRoleStaff
	}

	if err := repos.GetShopRepository().AddMember(&models.ShopMember{
		ShopID: shop.ID,
		UserID: user.ID,
		Role:   role,
	}); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("could not add member: %s", err),
		}).Redirect(constants.ShopsRoute + "/" + shop.PublicID)
	}

	audit.Record(shop.ID, usercontext.GetUserID(c), models.AuditMemberAdded, "user", fmt.Sprint(user.ID),
		fiber.Map{"role": role})

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("%s added as %s.", user.Name, role),
	}).Redirect(constants.ShopsRoute + "/" + shop.PublicID)
}

func HandleShopMemberRemove(c *fiber.Ctx) error {
	shop, err := loadShopForViewer(c, c.Params("id"))
	if err != nil {
		return err
	}

	userID, err := c.ParamsInt("userID")
	if err != nil || userID < 1 {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Invalid member.",
		}).Redirect(constants.ShopsRoute + "/" + shop.PublicID)
	}

	if uint(userID) == shop.OwnerUserID {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "The owner cannot be removed.",
		}).Redirect(constants.ShopsRoute + "/" + shop.PublicID)
	}

	if err := repository.GetGlobalFactory().GetShopRepository().RemoveMember(shop.ID, uint(userID)); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("could not remove member: %s", err),
		}).Redirect(constants.ShopsRoute + "/" + shop.PublicID)
	}

	audit.Record(shop.ID, usercontext.GetUserID(c), models.AuditMemberRemoved, "user", fmt.Sprint(userID), nil)

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Member removed.",
	}).Redirect(constants.ShopsRoute + "/" + shop.PublicID)
}

// HandleShopAuditLog lists the append-only audit history for a shop.
func HandleShopAuditLog(c *fiber.Ctx) error {
	shop, err := loadShopForViewer(c, c.Params("id"))
	if err != nil {
		return err
	}

	offset, limit := parsePagination(c)
	repos := repository.GetGlobalFactory().GetAuditRepository()
	entries, err := repos.GetByShopID(shop.ID, offset, limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load audit log")
	}
	total, _ := repos.CountByShopID(shop.ID)

	return c.Render("shops/audit", fiber.Map{
		"Title":   shop.Name + " audit log",
		"Shop":    shop,
		"Entries": entries,
		"Total":   total,
		"Offset":  offset,
		"Limit":   limit,
		"Flash":   flash.Get(c),
	}, "layouts/main")
}
