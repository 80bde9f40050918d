package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/shopdeckhq/shopdeck/app/repository"
	"github.com/shopdeckhq/shopdeck/internal/pkg/billinggate"
	"github.com/shopdeckhq/shopdeck/internal/pkg/metrics/counter"
	"github.com/shopdeckhq/shopdeck/internal/pkg/usercontext"
)

// GateGrantKey is the Locals key under which an authorized write grant is
// stored for downstream handlers.
const GateGrantKey = "SHOP_WRITE_GRANT"

// RequireShopWrite gates every mutating shop route through the billing
// access evaluator. The shop is identified by the :id route parameter.
func RequireShopWrite() fiber.Handler {
	return func(c *fiber.Ctx) error {
		shopID := c.Params("id")
		cfg := billinggate.ConfigFromEnv()

		userCtx := usercontext.GetUserContext(c)
		caller := &billinggate.Caller{
			UserID:        userCtx.UserID,
			Elevated:      userCtx.IsElevated,
			PlatformAdmin: userCtx.IsAdmin,
		}

		members, billing := repository.NewGateStores(repository.GetGlobalFactory().GetShopRepository())
		ev := billinggate.NewEvaluator(members, billing)

		grant, err := ev.AuthorizeShopWrite(c.UserContext(), caller, shopID, cfg)
		if err != nil {
			var ge *billinggate.Error
			if errors.As(err, &ge) {
				if cerr := counter.AddGateDenial(shopID, string(ge.Kind)); cerr != nil {
					log.Printf("gate denial counter failed: %v", cerr)
				}
				return c.Status(ge.HTTPStatus()).JSON(fiber.Map{
					"error":   string(ge.Kind),
					"message": ge.Message,
				})
			}
			log.Printf("shop write authorization failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "internal_server_error",
				"message": "authorization check failed",
			})
		}

		if cerr := counter.AddGateAllow(shopID); cerr != nil {
			log.Printf("gate allow counter failed: %v", cerr)
		}
		c.Locals(GateGrantKey, grant)
		return c.Next()
	}
}
