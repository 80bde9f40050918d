package billinggate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu    sync.Mutex
	snaps map[string]Snapshot
	errs  map[string]error
	block map[string]chan struct{}
	calls int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		snaps: make(map[string]Snapshot),
		errs:  make(map[string]error),
		block: make(map[string]chan struct{}),
	}
}

func (f *fakeFetcher) FetchBillingSnapshot(_ context.Context, shopID string) (Snapshot, error) {
	f.mu.Lock()
	gate := f.block[shopID]
	f.calls++
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[shopID]; err != nil {
		return Snapshot{}, err
	}
	return f.snaps[shopID], nil
}

func waitResolved(t *testing.T, c *AccessController) Decision {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.Current().Status != StatusLoading
	}, time.Second, 5*time.Millisecond, "controller never resolved")
	return c.Current()
}

func testClock() func() time.Time {
	return func() time.Time { return evalNow }
}

func TestControllerTrialingHybrid(t *testing.T) {
	f := newFakeFetcher()
	f.snaps["shop-1"] = Snapshot{Status: "trialing"}

	c := NewAccessController(f, Config{Mode: ModeHybrid, GraceDays: 14}, WithClock(testClock()))
	c.SwitchShop(context.Background(), "shop-1")

	d := waitResolved(t, c)
	assert.Equal(t, StatusTrialing, d.Status)
	assert.True(t, d.Allowed)
	assert.True(t, c.CanPerform("devices.create"))
	assert.Equal(t, RenderContent, c.Directive())
}

func TestControllerCanceledPastGraceHybrid(t *testing.T) {
	periodEnd := evalNow.AddDate(0, 0, -20)
	f := newFakeFetcher()
	f.snaps["shop-1"] = Snapshot{Status: "canceled", CurrentPeriodEnd: &periodEnd}

	c := NewAccessController(f, Config{Mode: ModeHybrid, GraceDays: 14}, WithClock(testClock()))
	c.SwitchShop(context.Background(), "shop-1")

	d := waitResolved(t, c)
	assert.False(t, d.Allowed)
	assert.Equal(t, StatusCanceled, d.Status, "elapsed grace keeps the raw status")
	assert.True(t, d.ReadOnly)
	assert.False(t, c.CanPerform("devices.create"))
	assert.Equal(t, RenderContent, c.Directive(), "hybrid denial still renders the page")
}

func TestControllerCanceledInsideGraceHybrid(t *testing.T) {
	periodEnd := evalNow.AddDate(0, 0, -5)
	f := newFakeFetcher()
	f.snaps["shop-1"] = Snapshot{Status: "canceled", CurrentPeriodEnd: &periodEnd}

	c := NewAccessController(f, Config{Mode: ModeHybrid, GraceDays: 14}, WithClock(testClock()))
	c.SwitchShop(context.Background(), "shop-1")

	d := waitResolved(t, c)
	assert.Equal(t, StatusGrace, d.Status)
	assert.True(t, d.Allowed)
	assert.True(t, c.CanPerform("updates.publish"))
	if assert.NotNil(t, d.GraceUntil) {
		assert.Equal(t, periodEnd.AddDate(0, 0, 14), *d.GraceUntil)
	}
}

func TestControllerSoftModeNeverLocksActions(t *testing.T) {
	f := newFakeFetcher()
	f.snaps["shop-1"] = Snapshot{Status: "canceled"}

	c := NewAccessController(f, Config{Mode: ModeSoft, GraceDays: 14}, WithClock(testClock()))
	c.SwitchShop(context.Background(), "shop-1")

	d := waitResolved(t, c)
	assert.False(t, d.Allowed)
	for _, feature := range []string{"shop.update", "devices.create", "updates.publish"} {
		assert.True(t, c.CanPerform(feature), "soft mode must not lock %q", feature)
	}
	assert.Equal(t, RenderDimmed, c.Directive())
}

func TestControllerHardModeRedirectsOnceResolved(t *testing.T) {
	f := newFakeFetcher()
	f.snaps["shop-1"] = Snapshot{Status: "none"}

	c := NewAccessController(f, Config{Mode: ModeHard, GraceDays: 14}, WithClock(testClock()))
	assert.Equal(t, RenderContent, c.Directive(), "no redirect before the first snapshot")

	c.SwitchShop(context.Background(), "shop-1")
	d := waitResolved(t, c)
	assert.False(t, d.Allowed)
	assert.True(t, d.BlockedAll)
	assert.Equal(t, RenderRedirect, c.Directive())
}

func TestControllerEmergencyUnlock(t *testing.T) {
	f := newFakeFetcher()
	f.errs["shop-1"] = errors.New("billing endpoint unreachable")

	cfg := Config{Mode: ModeHard, GraceDays: 14, EmergencyUnlock: true}
	c := NewAccessController(f, cfg, WithClock(testClock()))
	c.SwitchShop(context.Background(), "shop-1")

	d := waitResolved(t, c)
	assert.Equal(t, StatusUnlocked, d.Status)
	assert.True(t, d.Allowed)
	assert.True(t, c.CanPerform("anything"))
	assert.Equal(t, RenderContent, c.Directive())
}

func TestControllerFetchErrorDegrades(t *testing.T) {
	f := newFakeFetcher()
	f.errs["shop-1"] = errors.New("billing endpoint unreachable")

	c := NewAccessController(f, Config{Mode: ModeHybrid, GraceDays: 14}, WithClock(testClock()))
	c.SwitchShop(context.Background(), "shop-1")

	d := waitResolved(t, c)
	assert.Equal(t, StatusUnknown, d.Status)
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "billing endpoint unreachable")
	assert.True(t, d.ReadOnly)
}

func TestControllerLoadingOptimism(t *testing.T) {
	f := newFakeFetcher()
	gate := make(chan struct{})
	f.block["shop-1"] = gate
	defer close(gate)

	c := NewAccessController(f, Config{Mode: ModeHybrid, GraceDays: 14})
	c.SwitchShop(context.Background(), "shop-1")
	d := c.Current()
	assert.Equal(t, StatusLoading, d.Status)
	assert.True(t, d.Allowed, "loading is optimistic by default")

	pessimist := NewAccessController(f, Config{Mode: ModeHybrid, GraceDays: 14}, WithoutOptimisticLoading())
	pessimist.SwitchShop(context.Background(), "shop-1")
	assert.False(t, pessimist.Current().Allowed)
}

func TestControllerDiscardsStaleFetchAfterShopSwitch(t *testing.T) {
	f := newFakeFetcher()
	gate := make(chan struct{})
	f.block["shop-a"] = gate
	f.snaps["shop-a"] = Snapshot{Status: "active"}
	f.snaps["shop-b"] = Snapshot{Status: "canceled"}

	c := NewAccessController(f, Config{Mode: ModeHybrid, GraceDays: 14}, WithClock(testClock()))
	c.SwitchShop(context.Background(), "shop-a")
	c.SwitchShop(context.Background(), "shop-b")

	d := waitResolved(t, c)
	assert.Equal(t, StatusCanceled, d.Status)

	// Let the slow shop-a fetch complete; its result must be dropped.
	close(gate)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StatusCanceled, c.Current().Status, "stale response must not overwrite the new shop's decision")
}

func TestControllerObserveStream(t *testing.T) {
	f := newFakeFetcher()
	f.snaps["shop-1"] = Snapshot{Status: "active"}

	ctx, cancel := context.WithCancel(context.Background())
	c := NewAccessController(f, Config{Mode: ModeHybrid, GraceDays: 14},
		WithClock(testClock()), WithPollInterval(10*time.Millisecond))

	stream := c.Observe(ctx, "shop-1")

	first := <-stream
	assert.Equal(t, StatusLoading, first.Status)

	var resolved Decision
	require.Eventually(t, func() bool {
		select {
		case resolved = <-stream:
			return resolved.Status == StatusActive
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	assert.True(t, resolved.Allowed)

	cancel()
	require.Eventually(t, func() bool {
		for {
			select {
			case _, open := <-stream:
				if !open {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, 5*time.Millisecond, "stream should close when the subscriber unmounts")
}
