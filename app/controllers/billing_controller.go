package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/shopdeckhq/shopdeck/app/models"
	"github.com/shopdeckhq/shopdeck/app/repository"
	"github.com/shopdeckhq/shopdeck/internal/pkg/audit"
	"github.com/shopdeckhq/shopdeck/internal/pkg/billinggate"
	"github.com/shopdeckhq/shopdeck/internal/pkg/constants"
	"github.com/shopdeckhq/shopdeck/internal/pkg/env"
	"github.com/shopdeckhq/shopdeck/internal/pkg/mail"
	"github.com/shopdeckhq/shopdeck/internal/pkg/usercontext"
)

// billingProvider names the payment provider the webhook endpoint accepts.
const billingProvider = "paystream"

// subscriptionEvent is the normalized webhook payload for subscription
// lifecycle changes.
type subscriptionEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		CustomerRef      string `json:"customer_ref"`
		SubscriptionRef  string `json:"subscription_ref"`
		Status           string `json:"status"`
		CurrentPeriodEnd string `json:"current_period_end"`
	} `json:"data"`
}

// HandleBillingWebhook ingests provider webhooks. Every delivery is persisted
// exactly once before processing; replays answer 200 without re-applying.
func HandleBillingWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	eventID := strings.TrimSpace(c.Get("X-Webhook-Event-ID"))
	signature := strings.TrimSpace(c.Get("X-Webhook-Signature"))
	secret := env.GetEnv("BILLING_WEBHOOK_SECRET", "")

	if eventID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing_event_id"})
	}

	signatureValid := verifyWebhookSignature(rawBody, signature, secret)

	var event subscriptionEvent
	parseErr := json.Unmarshal(rawBody, &event)

	repos := repository.GetGlobalFactory()
	created, stored, err := repos.GetWebhookEventRepository().CreateIfNotExists(&models.BillingWebhookEvent{
		Provider:        billingProvider,
		ProviderEventID: eventID,
		EventType:       event.Type,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !signatureValid {
		_ = repos.GetWebhookEventRepository().MarkProcessed(stored.ID, "invalid webhook signature")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}
	if parseErr != nil {
		_ = repos.GetWebhookEventRepository().MarkProcessed(stored.ID, parseErr.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}
	if !isSubscriptionEvent(event.Type) {
		_ = repos.GetWebhookEventRepository().MarkProcessed(stored.ID, "")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	syncErr := applySubscriptionEvent(&event)
	msg := ""
	if syncErr != nil {
		msg = syncErr.Error()
	}
	_ = repos.GetWebhookEventRepository().MarkProcessed(stored.ID, msg)
	if syncErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "billing_sync_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// applySubscriptionEvent updates the shop billing record for the event's
// customer. Unknown customers are not an error: the checkout may not be
// linked yet, and the provider will retry nothing on 200.
func applySubscriptionEvent(event *subscriptionEvent) error {
	repos := repository.GetGlobalFactory()
	shop, err := repos.GetShopRepository().GetByBillingCustomerRef(event.Data.CustomerRef)
	if err != nil {
		return nil
	}

	var periodEnd *time.Time
	if event.Data.CurrentPeriodEnd != "" {
		t, err := time.Parse(time.RFC3339, event.Data.CurrentPeriodEnd)
		if err != nil {
			return fmt.Errorf("bad current_period_end %q: %w", event.Data.CurrentPeriodEnd, err)
		}
		periodEnd = &t
	}

	wasEntitled := entitledStatus(shop.BillingStatus)
	if err := repos.GetShopRepository().UpdateBilling(
		shop.PublicID,
		event.Data.Status,
		periodEnd,
		event.Data.CustomerRef,
		event.Data.SubscriptionRef,
	); err != nil {
		return err
	}

	// Lapse notice: tell the owner once when the subscription stops being
	// entitling and a grace window opens.
	if wasEntitled && !entitledStatus(event.Data.Status) && periodEnd != nil {
		go notifyGraceOpened(shop, *periodEnd)
	}

	return nil
}

func notifyGraceOpened(shop *models.Shop, periodEnd time.Time) {
	owner, err := repository.GetGlobalFactory().GetUserRepository().GetByID(shop.OwnerUserID)
	if err != nil {
		return
	}
	cfg := billinggate.ConfigFromEnv()
	_, until := billinggate.WithinGrace(&periodEnd, cfg.GraceDays, time.Now())
	if until == nil {
		return
	}
	if err := mail.SendGraceNotice(owner.Email, shop.Name, until.UTC().Format(time.RFC3339)); err != nil {
		fmt.Printf("grace notice for shop %s failed: %v\n", shop.PublicID, err)
	}
}

func entitledStatus(status string) bool {
	s := billinggate.NormalizeStatus(status)
	return s == billinggate.StatusActive || s == billinggate.StatusTrialing
}

func isSubscriptionEvent(eventType string) bool {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case "subscription.created", "subscription.updated", "subscription.canceled":
		return true
	default:
		return false
	}
}

// verifyWebhookSignature checks the hex HMAC-SHA256 of the raw body.
func verifyWebhookSignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// HandleBillingLink attaches the provider customer reference to a shop so
// later webhooks can find it. Used after checkout completes.
func HandleBillingLink(c *fiber.Ctx) error {
	shop, err := loadShopForViewer(c, c.Params("id"))
	if err != nil {
		return err
	}

	customerRef := strings.TrimSpace(c.FormValue("customer_ref"))
	if customerRef == "" {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Customer reference is required.",
		}).Redirect(constants.ShopBillingRoute(shop.PublicID))
	}

	if err := repository.GetGlobalFactory().GetShopRepository().UpdateBilling(
		shop.PublicID,
		shop.BillingStatus,
		shop.BillingCurrentPeriodEnd,
		customerRef,
		shop.BillingSubscriptionRef,
	); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("could not link billing account: %s", err),
		}).Redirect(constants.ShopBillingRoute(shop.PublicID))
	}

	audit.Record(shop.ID, usercontext.GetUserID(c), models.AuditBillingLinked, "shop", shop.PublicID,
		fiber.Map{"customer_ref": customerRef})

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Billing account linked.",
	}).Redirect(constants.ShopBillingRoute(shop.PublicID))
}
