package billinggate

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Caller is the resolved request identity handed to the evaluator by the
// session/API-key middleware.
type Caller struct {
	UserID        uint
	Elevated      bool
	PlatformAdmin bool
}

// MembershipStore resolves whether a user belongs to a shop. Implementations
// must answer false for unknown shops rather than erroring, so a non-member
// probe cannot distinguish a missing shop from a foreign one.
type MembershipStore interface {
	IsMember(ctx context.Context, userID uint, shopID string) (bool, error)
}

// BillingStore reads the billing record for a shop. ErrShopNotFound (as a
// typed gate error) is returned when the shop does not exist.
type BillingStore interface {
	ShopBilling(ctx context.Context, shopID string) (Snapshot, error)
}

// ErrShopMissing is what BillingStore implementations return for unknown shops.
var ErrShopMissing = newError(FailShopNotFound, "shop does not exist")

// Grant is the positive outcome of a write authorization.
type Grant struct {
	Reason string
}

// Evaluator gates shop-scoped write requests. It holds no state beyond its
// collaborators and is safe for concurrent use; every call re-reads current
// membership and billing data on purpose (stale cached billing state could
// wrongly unblock a canceled subscription or block a fresh one).
type Evaluator struct {
	members MembershipStore
	billing BillingStore
	now     func() time.Time
}

// NewEvaluator creates a write-path evaluator over the given stores.
func NewEvaluator(members MembershipStore, billing BillingStore) *Evaluator {
	return &Evaluator{members: members, billing: billing, now: time.Now}
}

// WithClock overrides the evaluator clock. Test hook.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// AuthorizeShopWrite decides whether caller may mutate data scoped to shopID.
// It returns a Grant or a typed *Error; it never mutates anything itself and
// is idempotent, so handlers call it once up front before touching state.
//
// The emergency unlock bypasses membership and billing exactly like it does
// in Evaluate; it does not bypass authentication or step-up, which are
// caller properties rather than shop policy.
//
// The billing check here is deliberately coarser than the client-side grace
// window: any still-unexpired period counts, with no graceDays extension.
// A shop can therefore look write-enabled in a hybrid-mode UI while this
// evaluator already answers BillingRequired.
func (e *Evaluator) AuthorizeShopWrite(ctx context.Context, caller *Caller, shopID string, cfg Config) (*Grant, error) {
	if caller == nil || caller.UserID == 0 {
		return nil, newError(FailUnauthenticated, "login required")
	}
	if !caller.Elevated {
		return nil, newError(FailElevationRequired, "step-up verification required for shop administration")
	}
	if _, err := uuid.Parse(shopID); err != nil {
		return nil, newError(FailInvalidShopID, "malformed shop identifier")
	}

	if cfg.IsUnlocked(shopID) {
		return &Grant{Reason: "emergency_unlock"}, nil
	}
	if cfg.Mode == ModeSoft {
		return &Grant{Reason: "mode=soft"}, nil
	}
	if caller.PlatformAdmin {
		return &Grant{Reason: "platform_admin"}, nil
	}

	member, err := e.members.IsMember(ctx, caller.UserID, shopID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, newError(FailAccessDenied, "not a member of this shop")
	}

	snap, err := e.billing.ShopBilling(ctx, shopID)
	if err != nil {
		return nil, err
	}

	status := NormalizeStatus(snap.Status)
	statusOk := status == StatusActive || status == StatusTrialing
	graceOk := snap.CurrentPeriodEnd != nil && snap.CurrentPeriodEnd.After(e.now())
	if statusOk || graceOk {
		return &Grant{Reason: "subscription " + status}, nil
	}
	return nil, newError(FailBillingRequired, "an active subscription is required")
}
