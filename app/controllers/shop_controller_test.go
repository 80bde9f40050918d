package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shopdeckhq/shopdeck/app/models"
	"github.com/shopdeckhq/shopdeck/internal/pkg/billinggate"
)

func TestGateViewState(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expired := now.AddDate(0, 0, -30)
	lapsedYesterday := now.AddDate(0, 0, -1)
	shopID := "2d1f7c4a-5b3e-4f60-8c2d-9e1a0b7f6c33"

	delinquent := func(end *time.Time) *models.Shop {
		return &models.Shop{
			PublicID:                shopID,
			BillingStatus:           models.BillingStatusCanceled,
			BillingCurrentPeriodEnd: end,
		}
	}

	tests := []struct {
		name         string
		shop         *models.Shop
		cfg          billinggate.Config
		wantStatus   string
		wantReadOnly bool
		wantDimmed   bool
		wantRedirect bool
	}{
		{
			name:       "active shop renders normally in every mode",
			shop:       &models.Shop{PublicID: shopID, BillingStatus: models.BillingStatusActive},
			cfg:        billinggate.Config{Mode: billinggate.ModeHard},
			wantStatus: billinggate.StatusActive,
		},
		{
			name:         "canceled in hybrid disables the write forms",
			shop:         delinquent(&expired),
			cfg:          billinggate.Config{Mode: billinggate.ModeHybrid},
			wantStatus:   billinggate.StatusCanceled,
			wantReadOnly: true,
		},
		{
			name:         "canceled in hard bounces to the billing page",
			shop:         delinquent(&expired),
			cfg:          billinggate.Config{Mode: billinggate.ModeHard},
			wantStatus:   billinggate.StatusCanceled,
			wantRedirect: true,
		},
		{
			name:       "canceled in soft only dims",
			shop:       delinquent(&expired),
			cfg:        billinggate.Config{Mode: billinggate.ModeSoft},
			wantStatus: billinggate.StatusCanceled,
			wantDimmed: true,
		},
		{
			name:       "grace window keeps the page fully usable",
			shop:       delinquent(&lapsedYesterday),
			cfg:        billinggate.Config{Mode: billinggate.ModeHard, GraceDays: 7},
			wantStatus: billinggate.StatusGrace,
		},
		{
			name: "unlocked shop ignores hard mode",
			shop: delinquent(&expired),
			cfg: billinggate.Config{
				Mode:        billinggate.ModeHard,
				UnlockShops: map[string]struct{}{shopID: {}},
			},
			wantStatus: billinggate.StatusUnlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := gateViewState(tt.shop, tt.cfg, now)
			assert.Equal(t, tt.wantStatus, gate.Decision.Status)
			assert.Equal(t, tt.wantReadOnly, gate.ReadOnly, "read-only")
			assert.Equal(t, tt.wantDimmed, gate.Dimmed, "dimmed")
			assert.Equal(t, tt.wantRedirect, gate.Redirect, "redirect")
		})
	}
}
