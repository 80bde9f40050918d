package billinggate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// billingStatusWire mirrors the billing-status endpoint payload. It is decoded
// once at this boundary and immediately converted into either a Snapshot or an
// error, so nothing downstream ever sees the loose wire shape.
type billingStatusWire struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error"`
	Shop  *struct {
		BillingStatus           string     `json:"billing_status"`
		BillingCurrentPeriodEnd *time.Time `json:"billing_current_period_end"`
	} `json:"shop"`
}

// HTTPSnapshotFetcher reads billing snapshots from the console's own
// /api/v1/shops/billing-status endpoint.
type HTTPSnapshotFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSnapshotFetcher creates a fetcher against baseURL with a bounded
// request timeout.
func NewHTTPSnapshotFetcher(baseURL string) *HTTPSnapshotFetcher {
	return &HTTPSnapshotFetcher{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchBillingSnapshot implements SnapshotFetcher.
func (f *HTTPSnapshotFetcher) FetchBillingSnapshot(ctx context.Context, shopID string) (Snapshot, error) {
	endpoint := fmt.Sprintf("%s/api/v1/shops/billing-status?shop_id=%s", f.BaseURL, url.QueryEscape(shopID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Snapshot{}, err
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("billing status fetch failed: %w", err)
	}
	defer resp.Body.Close()

	var wire billingStatusWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return Snapshot{}, fmt.Errorf("billing status response unreadable: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Snapshot{}, errors.New("billing status requires authentication")
	case resp.StatusCode == http.StatusNotFound:
		return Snapshot{}, errors.New("shop not found")
	case resp.StatusCode != http.StatusOK || !wire.Ok || wire.Shop == nil:
		msg := wire.Error
		if msg == "" {
			msg = fmt.Sprintf("billing status fetch returned %d", resp.StatusCode)
		}
		return Snapshot{}, errors.New(msg)
	}

	return Snapshot{
		Status:           wire.Shop.BillingStatus,
		CurrentPeriodEnd: wire.Shop.BillingCurrentPeriodEnd,
	}, nil
}
