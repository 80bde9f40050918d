package billinggate

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testShopID    = "7b8a2b2e-3f7d-4e58-9a5f-2c6f1d9e0a11"
	missingShopID = "11111111-2222-3333-4444-555555555555"
)

type fakeMembers struct {
	members map[string]map[uint]bool
	calls   int
}

func (f *fakeMembers) IsMember(_ context.Context, userID uint, shopID string) (bool, error) {
	f.calls++
	return f.members[shopID][userID], nil
}

type fakeBilling struct {
	snapshots map[string]Snapshot
	calls     int
}

func (f *fakeBilling) ShopBilling(_ context.Context, shopID string) (Snapshot, error) {
	f.calls++
	snap, ok := f.snapshots[shopID]
	if !ok {
		return Snapshot{}, ErrShopMissing
	}
	return snap, nil
}

func newTestEvaluator(snap Snapshot, memberUserID uint) (*Evaluator, *fakeMembers, *fakeBilling) {
	members := &fakeMembers{members: map[string]map[uint]bool{
		testShopID: {memberUserID: true},
	}}
	billing := &fakeBilling{snapshots: map[string]Snapshot{testShopID: snap}}
	ev := NewEvaluator(members, billing).WithClock(func() time.Time { return evalNow })
	return ev, members, billing
}

func TestAuthorizeShopWriteUnauthenticated(t *testing.T) {
	ev, _, _ := newTestEvaluator(Snapshot{Status: "active"}, 1)

	for _, caller := range []*Caller{nil, {UserID: 0}} {
		_, err := ev.AuthorizeShopWrite(context.Background(), caller, testShopID, Config{Mode: ModeHybrid})
		require.Error(t, err)
		assert.Equal(t, FailUnauthenticated, KindOf(err))
	}
}

func TestAuthorizeShopWriteElevationRequired(t *testing.T) {
	ev, _, _ := newTestEvaluator(Snapshot{Status: "active"}, 1)

	_, err := ev.AuthorizeShopWrite(context.Background(), &Caller{UserID: 1, Elevated: false}, testShopID, Config{Mode: ModeHybrid})
	require.Error(t, err)
	assert.Equal(t, FailElevationRequired, KindOf(err))
}

func TestAuthorizeShopWriteInvalidShopID(t *testing.T) {
	ev, _, _ := newTestEvaluator(Snapshot{Status: "active"}, 1)

	_, err := ev.AuthorizeShopWrite(context.Background(), &Caller{UserID: 1, Elevated: true}, "not-a-uuid", Config{Mode: ModeHybrid})
	require.Error(t, err)
	assert.Equal(t, FailInvalidShopID, KindOf(err))

	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, fiber.StatusBadRequest, ge.HTTPStatus())
}

func TestAuthorizeShopWriteSoftModeNeverBlocks(t *testing.T) {
	// Not a member, canceled subscription: soft mode still allows the write
	// and touches neither store.
	ev, members, billing := newTestEvaluator(Snapshot{Status: "canceled"}, 99)

	grant, err := ev.AuthorizeShopWrite(context.Background(), &Caller{UserID: 1, Elevated: true}, testShopID, Config{Mode: ModeSoft})
	require.NoError(t, err)
	assert.Equal(t, "mode=soft", grant.Reason)
	assert.Zero(t, members.calls)
	assert.Zero(t, billing.calls)
}

func TestAuthorizeShopWritePlatformAdminBypass(t *testing.T) {
	for _, mode := range []Mode{ModeHard, ModeHybrid} {
		ev, _, billing := newTestEvaluator(Snapshot{Status: "canceled"}, 99)

		grant, err := ev.AuthorizeShopWrite(context.Background(), &Caller{UserID: 7, Elevated: true, PlatformAdmin: true}, testShopID, Config{Mode: mode})
		require.NoError(t, err, "mode=%s", mode)
		assert.Equal(t, "platform_admin", grant.Reason)
		assert.Zero(t, billing.calls, "admin bypass must not consult billing")
	}
}

func TestAuthorizeShopWriteEmergencyUnlock(t *testing.T) {
	// Canceled, expired, not even a member: the unlock list still grants the
	// write without touching either store, matching Evaluate's supremacy.
	configs := []Config{
		{Mode: ModeHard, UnlockShops: map[string]struct{}{testShopID: {}}},
		{Mode: ModeHybrid, EmergencyUnlock: true},
	}
	for _, cfg := range configs {
		ev, members, billing := newTestEvaluator(Snapshot{Status: "canceled"}, 99)

		grant, err := ev.AuthorizeShopWrite(context.Background(), &Caller{UserID: 1, Elevated: true}, testShopID, cfg)
		require.NoError(t, err)
		assert.Equal(t, "emergency_unlock", grant.Reason)
		assert.Zero(t, members.calls)
		assert.Zero(t, billing.calls)
	}
}

func TestAuthorizeShopWriteUnlockDoesNotBypassAuth(t *testing.T) {
	ev, _, _ := newTestEvaluator(Snapshot{Status: "canceled"}, 1)
	cfg := Config{Mode: ModeHard, EmergencyUnlock: true}

	_, err := ev.AuthorizeShopWrite(context.Background(), nil, testShopID, cfg)
	require.Error(t, err)
	assert.Equal(t, FailUnauthenticated, KindOf(err))

	_, err = ev.AuthorizeShopWrite(context.Background(), &Caller{UserID: 1, Elevated: false}, testShopID, cfg)
	require.Error(t, err)
	assert.Equal(t, FailElevationRequired, KindOf(err))
}

func TestAuthorizeShopWriteNonMemberNeverReachesBilling(t *testing.T) {
	ev, members, billing := newTestEvaluator(Snapshot{Status: "active"}, 42)

	_, err := ev.AuthorizeShopWrite(context.Background(), &Caller{UserID: 1, Elevated: true}, testShopID, Config{Mode: ModeHybrid})
	require.Error(t, err)
	assert.Equal(t, FailAccessDenied, KindOf(err))
	assert.Equal(t, 1, members.calls)
	assert.Zero(t, billing.calls, "billing record must not be fetched for non-members")
}

func TestAuthorizeShopWriteShopNotFound(t *testing.T) {
	members := &fakeMembers{members: map[string]map[uint]bool{
		missingShopID: {1: true},
	}}
	billing := &fakeBilling{snapshots: map[string]Snapshot{}}
	ev := NewEvaluator(members, billing)

	_, err := ev.AuthorizeShopWrite(context.Background(), &Caller{UserID: 1, Elevated: true}, missingShopID, Config{Mode: ModeHybrid})
	require.Error(t, err)
	assert.Equal(t, FailShopNotFound, KindOf(err))
}

func TestAuthorizeShopWriteBillingOutcomes(t *testing.T) {
	future := evalNow.Add(48 * time.Hour)
	past := evalNow.AddDate(0, 0, -5)

	tests := []struct {
		name     string
		snap     Snapshot
		wantKind FailureKind
	}{
		{name: "active", snap: Snapshot{Status: "active"}},
		{name: "trialing", snap: Snapshot{Status: "trialing"}},
		{name: "canceled with unexpired period", snap: Snapshot{Status: "canceled", CurrentPeriodEnd: &future}},
		// The write path has no graceDays extension: a period end five days in
		// the past denies even though the client-side window would still allow.
		{name: "canceled shortly past period end", snap: Snapshot{Status: "canceled", CurrentPeriodEnd: &past}, wantKind: FailBillingRequired},
		{name: "past_due without period end", snap: Snapshot{Status: "past_due"}, wantKind: FailBillingRequired},
		{name: "unrecognized status", snap: Snapshot{Status: "weird"}, wantKind: FailBillingRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, _, _ := newTestEvaluator(tt.snap, 1)
			_, err := ev.AuthorizeShopWrite(context.Background(), &Caller{UserID: 1, Elevated: true}, testShopID, Config{Mode: ModeHybrid})
			if tt.wantKind == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))

			var ge *Error
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, fiber.StatusPaymentRequired, ge.HTTPStatus())
		})
	}
}
