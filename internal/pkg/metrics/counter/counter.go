package counter

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopdeckhq/shopdeck/internal/pkg/cache"
)

const (
	gateAllowsKey  = "gate:counters:allows"
	gateDenialsKey = "gate:counters:denials"
)

// AddGateAllow increments the allow counter for a shop in Redis
func AddGateAllow(shopID string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, gateAllowsKey, shopID, 1).Err()
}

// AddGateDenial increments the denial counter for a shop and failure kind in Redis
func AddGateDenial(shopID, kind string) error {
	ctx := context.Background()
	field := shopID + ":" + kind
	return cache.GetClient().HIncrBy(ctx, gateDenialsKey, field, 1).Err()
}

// GateTotals aggregates the pending gate counters for the admin overview.
type GateTotals struct {
	Allows        int64            `json:"allows"`
	Denials       int64            `json:"denials"`
	DenialsByKind map[string]int64 `json:"denials_by_kind"`
}

// Totals reads and aggregates all gate counters currently held in Redis
func Totals() (*GateTotals, error) {
	ctx := context.Background()
	rdb := cache.GetClient()

	totals := &GateTotals{DenialsByKind: make(map[string]int64)}

	allows, err := rdb.HGetAll(ctx, gateAllowsKey).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range allows {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			totals.Allows += n
		}
	}

	denials, err := rdb.HGetAll(ctx, gateDenialsKey).Result()
	if err != nil {
		return nil, err
	}
	for field, v := range denials {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		totals.Denials += n
		// field is "<shop id>:<kind>"
		if idx := strings.LastIndex(field, ":"); idx >= 0 {
			totals.DenialsByKind[field[idx+1:]] += n
		}
	}

	return totals, nil
}

// Reset drops all pending gate counters
func Reset() error {
	ctx := context.Background()
	return cache.GetClient().Del(ctx, gateAllowsKey, gateDenialsKey).Err()
}
