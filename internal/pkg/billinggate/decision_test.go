package billinggate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var evalNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "active", want: StatusActive},
		{in: " Trialing ", want: StatusTrialing},
		{in: "past_due", want: StatusPastDue},
		{in: "canceled", want: StatusCanceled},
		{in: "none", want: StatusNone},
		{in: "", want: StatusNone},
		{in: "incomplete_expired", want: StatusUnknown},
	}

	for _, tt := range tests {
		if got := NormalizeStatus(tt.in); got != tt.want {
			t.Fatalf("NormalizeStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEvaluateEmergencyUnlockBeatsEverything(t *testing.T) {
	past := evalNow.AddDate(0, 0, -200)
	for _, mode := range []Mode{ModeHard, ModeSoft, ModeHybrid} {
		for _, status := range []string{"canceled", "none", "active", "garbage"} {
			cfg := Config{Mode: mode, GraceDays: 14, UnlockShops: ParseUnlockList("shop-1")}
			d := Evaluate("shop-1", Snapshot{Status: status, CurrentPeriodEnd: &past}, cfg, evalNow)

			assert.True(t, d.Allowed, "mode=%s status=%s", mode, status)
			assert.Equal(t, StatusUnlocked, d.Status)
			assert.False(t, d.ReadOnly)
			assert.False(t, d.BlockedAll)
			assert.Nil(t, d.GraceUntil, "no grace computation for unlocked shops")
		}
	}
}

func TestEvaluateEntitlingStatuses(t *testing.T) {
	cfg := Config{Mode: ModeHybrid, GraceDays: 14}
	for _, status := range []string{StatusActive, StatusTrialing} {
		d := Evaluate("shop-1", Snapshot{Status: status}, cfg, evalNow)
		if !d.Allowed || d.Status != status {
			t.Fatalf("status %q: got %+v, want allowed with same status", status, d)
		}
		if d.ReadOnly || d.BlockedAll {
			t.Fatalf("status %q: mode flags must stay clear when allowed", status)
		}
	}
}

func TestEvaluateGraceWindow(t *testing.T) {
	cfg := Config{Mode: ModeHybrid, GraceDays: 14}

	fiveDaysAgo := evalNow.AddDate(0, 0, -5)
	d := Evaluate("shop-1", Snapshot{Status: "canceled", CurrentPeriodEnd: &fiveDaysAgo}, cfg, evalNow)
	assert.True(t, d.Allowed)
	assert.Equal(t, StatusGrace, d.Status)
	if assert.NotNil(t, d.GraceUntil) {
		assert.Equal(t, fiveDaysAgo.AddDate(0, 0, 14), *d.GraceUntil)
	}

	twentyDaysAgo := evalNow.AddDate(0, 0, -20)
	d = Evaluate("shop-1", Snapshot{Status: "canceled", CurrentPeriodEnd: &twentyDaysAgo}, cfg, evalNow)
	assert.False(t, d.Allowed)
	assert.Equal(t, StatusCanceled, d.Status, "elapsed grace must not relabel the raw status")
	assert.True(t, d.ReadOnly, "hybrid denial locks writes")
	assert.False(t, d.BlockedAll)
	if assert.NotNil(t, d.GraceUntil) {
		assert.Equal(t, twentyDaysAgo.AddDate(0, 0, 14), *d.GraceUntil, "boundary reported for observability")
	}
}

func TestEvaluateModeShaping(t *testing.T) {
	denied := Snapshot{Status: "none"}

	d := Evaluate("shop-1", denied, Config{Mode: ModeHard, GraceDays: 14}, evalNow)
	assert.False(t, d.Allowed)
	assert.True(t, d.BlockedAll)
	assert.False(t, d.ReadOnly)

	d = Evaluate("shop-1", denied, Config{Mode: ModeSoft, GraceDays: 14}, evalNow)
	assert.False(t, d.Allowed)
	assert.False(t, d.BlockedAll)
	assert.False(t, d.ReadOnly, "read-only is hybrid-only semantics")

	d = Evaluate("shop-1", denied, Config{Mode: ModeHybrid, GraceDays: 14}, evalNow)
	assert.False(t, d.Allowed)
	assert.False(t, d.BlockedAll)
	assert.True(t, d.ReadOnly)
}
