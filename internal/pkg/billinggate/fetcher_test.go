package billinggate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSnapshotFetcherDecodesBillingRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/shops/billing-status", r.URL.Path)
		assert.Equal(t, "7b1d0b74-8a37-4f18-9b69-1f4a9c3d2e10", r.URL.Query().Get("shop_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"shop":{"billing_status":"active","billing_current_period_end":"2025-07-01T00:00:00Z"}}`))
	}))
	defer srv.Close()

	f := NewHTTPSnapshotFetcher(srv.URL)
	snap, err := f.FetchBillingSnapshot(context.Background(), "7b1d0b74-8a37-4f18-9b69-1f4a9c3d2e10")
	require.NoError(t, err)

	assert.Equal(t, "active", snap.Status)
	require.NotNil(t, snap.CurrentPeriodEnd)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), snap.CurrentPeriodEnd.UTC())
}

func TestHTTPSnapshotFetcherNullPeriodEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"shop":{"billing_status":"none","billing_current_period_end":null}}`))
	}))
	defer srv.Close()

	snap, err := NewHTTPSnapshotFetcher(srv.URL).FetchBillingSnapshot(context.Background(), "7b1d0b74-8a37-4f18-9b69-1f4a9c3d2e10")
	require.NoError(t, err)
	assert.Equal(t, "none", snap.Status)
	assert.Nil(t, snap.CurrentPeriodEnd)
}

func TestHTTPSnapshotFetcherErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthenticated", http.StatusUnauthorized, `{"ok":false,"error":"authentication required"}`},
		{"shop missing", http.StatusNotFound, `{"ok":false,"error":"shop not found"}`},
		{"server error", http.StatusInternalServerError, `{"ok":false,"error":"boom"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPSnapshotFetcher(srv.URL).FetchBillingSnapshot(context.Background(), "7b1d0b74-8a37-4f18-9b69-1f4a9c3d2e10")
			assert.Error(t, err)
		})
	}
}

func TestHTTPSnapshotFetcherUnreachable(t *testing.T) {
	f := NewHTTPSnapshotFetcher("http://127.0.0.1:1")
	f.Client = &http.Client{Timeout: 200 * time.Millisecond}

	_, err := f.FetchBillingSnapshot(context.Background(), "7b1d0b74-8a37-4f18-9b69-1f4a9c3d2e10")
	assert.Error(t, err)
}
