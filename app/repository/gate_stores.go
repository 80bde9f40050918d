package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shopdeckhq/shopdeck/internal/pkg/billinggate"
)

// gateStores adapts the shop repository to the billing gate's store
// interfaces so the gate stays free of gorm.
type gateStores struct {
	shops ShopRepository
}

// NewGateStores wraps a shop repository for use by the billing gate evaluator.
func NewGateStores(shops ShopRepository) (billinggate.MembershipStore, billinggate.BillingStore) {
	gs := &gateStores{shops: shops}
	return gs, gs
}

// IsMember implements billinggate.MembershipStore. Unknown shops answer
// false, never an error, so membership probes cannot reveal shop existence.
func (g *gateStores) IsMember(_ context.Context, userID uint, shopID string) (bool, error) {
	return g.shops.IsMember(userID, shopID)
}

// ShopBilling implements billinggate.BillingStore.
func (g *gateStores) ShopBilling(_ context.Context, shopID string) (billinggate.Snapshot, error) {
	shop, err := g.shops.GetByPublicID(shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return billinggate.Snapshot{}, billinggate.ErrShopMissing
		}
		return billinggate.Snapshot{}, err
	}
	return billinggate.Snapshot{
		Status:           shop.BillingStatus,
		CurrentPeriodEnd: shop.BillingCurrentPeriodEnd,
	}, nil
}
