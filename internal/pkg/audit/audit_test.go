package audit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopdeckhq/shopdeck/app/models"
)

func captureAppends(t *testing.T) *[]*models.AuditLog {
	t.Helper()
	var got []*models.AuditLog
	prev := appendEntry
	appendEntry = func(entry *models.AuditLog) error {
		got = append(got, entry)
		return nil
	}
	t.Cleanup(func() { appendEntry = prev })
	return &got
}

func TestRecord(t *testing.T) {
	got := captureAppends(t)

	Record(42, 7, models.AuditReleaseWithdrawn, "release", "rel-1",
		map[string]string{"version": "2.1.0"})

	require.Len(t, *got, 1)
	entry := (*got)[0]
	assert.Equal(t, uint(42), entry.ShopID)
	assert.Equal(t, uint(7), entry.ActorUserID)
	assert.Equal(t, models.AuditReleaseWithdrawn, entry.Action)
	assert.Equal(t, "release", entry.TargetType)
	assert.Equal(t, "rel-1", entry.TargetID)
	assert.JSONEq(t, `{"version":"2.1.0"}`, entry.Detail)
}

func TestRecordNilDetail(t *testing.T) {
	got := captureAppends(t)

	Record(1, 2, models.AuditBillingLinked, "shop", "abc", nil)

	require.Len(t, *got, 1)
	assert.Empty(t, (*got)[0].Detail)
}

func TestRecordSwallowsAppendErrors(t *testing.T) {
	prev := appendEntry
	appendEntry = func(*models.AuditLog) error { return errors.New("db down") }
	t.Cleanup(func() { appendEntry = prev })

	assert.NotPanics(t, func() {
		Record(1, 2, models.AuditShopUpdated, "shop", "abc", nil)
	})
}
