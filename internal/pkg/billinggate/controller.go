package billinggate

import (
	"context"
	"sync"
	"time"
)

// SnapshotFetcher obtains the billing snapshot for a shop, normally over the
// read-only billing-status endpoint.
type SnapshotFetcher interface {
	FetchBillingSnapshot(ctx context.Context, shopID string) (Snapshot, error)
}

// RenderDirective tells the embedding view how to degrade when access is
// denied. Policy stays in Decision; this is only the rendering shape.
type RenderDirective int

const (
	// RenderContent shows the shop content normally.
	RenderContent RenderDirective = iota
	// RenderDimmed keeps the content in the tree but inert, dimmed behind a
	// subscribe prompt (soft mode).
	RenderDimmed
	// RenderRedirect sends the viewer to the shop billing page and renders
	// nothing in the interim (hard mode).
	RenderRedirect
)

// Option configures an AccessController.
type Option func(*AccessController)

// WithPollInterval changes the routine re-poll cadence used by Observe.
func WithPollInterval(d time.Duration) Option {
	return func(c *AccessController) { c.pollEvery = d }
}

// WithoutOptimisticLoading makes the Loading state report Allowed=false
// instead of the default optimistic allow.
func WithoutOptimisticLoading() Option {
	return func(c *AccessController) { c.optimistic = false }
}

// WithClock overrides the controller clock. Test hook.
func WithClock(now func() time.Time) Option {
	return func(c *AccessController) { c.now = now }
}

// AccessController continuously derives a UI-facing access decision for one
// shop view. It starts in the Loading state, resolves on the first snapshot
// fetch (success or error), re-polls on a timer, and resets to Loading when
// the observed shop changes. In-flight fetches are keyed by a generation
// counter so a stale response for a previous shop can never overwrite the
// decision for the current one.
type AccessController struct {
	fetcher    SnapshotFetcher
	cfg        Config
	pollEvery  time.Duration
	optimistic bool
	now        func() time.Time

	mu       sync.Mutex
	shopID   string
	gen      uint64
	resolved bool
	decision Decision
	subs     map[uint64]chan Decision
	nextSub  uint64
}

// NewAccessController creates a controller for the given fetcher and gate
// configuration. The configuration is captured by value; a new controller is
// created per shop view, matching the per-request config snapshot rule.
func NewAccessController(fetcher SnapshotFetcher, cfg Config, opts ...Option) *AccessController {
	c := &AccessController{
		fetcher:    fetcher,
		cfg:        cfg,
		pollEvery:  time.Minute,
		optimistic: true,
		now:        time.Now,
		subs:       make(map[uint64]chan Decision),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.decision = c.loadingDecision()
	return c
}

func (c *AccessController) loadingDecision() Decision {
	d := Decision{
		Status:  StatusLoading,
		Allowed: c.optimistic,
		Reason:  "billing status not yet loaded",
	}
	shapeForMode(&d, c.cfg.Mode)
	return d
}

// SwitchShop points the controller at a new shop, resetting to Loading and
// abandoning interest in any fetch still in flight for the old one.
func (c *AccessController) SwitchShop(ctx context.Context, shopID string) {
	c.mu.Lock()
	c.shopID = shopID
	c.gen++
	gen := c.gen
	c.resolved = false
	c.decision = c.loadingDecision()
	c.broadcastLocked()
	c.mu.Unlock()

	go c.fetch(ctx, shopID, gen)
}

// Refresh re-fetches the snapshot for the current shop (the visibility-change
// / timer trigger). It does not reset to Loading; the previous decision stays
// in place until the fetch resolves.
func (c *AccessController) Refresh(ctx context.Context) {
	c.mu.Lock()
	shopID, gen := c.shopID, c.gen
	c.mu.Unlock()
	if shopID == "" {
		return
	}
	c.fetch(ctx, shopID, gen)
}

func (c *AccessController) fetch(ctx context.Context, shopID string, gen uint64) {
	snap, err := c.fetcher.FetchBillingSnapshot(ctx, shopID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// Stale response from before a shop switch.
		return
	}

	switch {
	case err != nil && c.cfg.IsUnlocked(shopID):
		// An unlocked shop stays unlocked even when the snapshot fetch fails.
		c.decision = Evaluate(shopID, Snapshot{}, c.cfg, c.now())
	case err != nil:
		d := Decision{
			Status: StatusUnknown,
			Reason: err.Error(),
		}
		shapeForMode(&d, c.cfg.Mode)
		c.decision = d
	default:
		c.decision = Evaluate(shopID, snap, c.cfg, c.now())
	}
	c.resolved = true
	c.broadcastLocked()
}

// Observe switches to shopID and returns a stream of decisions: the initial
// Loading decision, the resolved one, and one per routine re-poll. The stream
// closes when ctx is cancelled (the subscriber unmounted).
func (c *AccessController) Observe(ctx context.Context, shopID string) <-chan Decision {
	ch := make(chan Decision, 8)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	c.SwitchShop(ctx, shopID)

	go func() {
		ticker := time.NewTicker(c.pollEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				c.mu.Lock()
				delete(c.subs, id)
				c.mu.Unlock()
				close(ch)
				return
			case <-ticker.C:
				c.Refresh(ctx)
			}
		}
	}()

	return ch
}

func (c *AccessController) broadcastLocked() {
	for _, ch := range c.subs {
		select {
		case ch <- c.decision:
		default:
			// Slow subscriber; it will catch up on the next tick.
		}
	}
}

// Current returns the latest derived decision.
func (c *AccessController) Current() Decision {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decision
}

// CanPerform reports whether the UI element tagged feature may submit its
// write. Soft mode never locks actions; hard and hybrid follow the decision.
func (c *AccessController) CanPerform(feature string) bool {
	_ = feature // all features share one gate today
	if c.cfg.Mode == ModeSoft {
		return true
	}
	return c.Current().Allowed
}

// Directive returns how the gated content should render right now. The hard
// mode redirect only fires once a snapshot has resolved, never during the
// Loading flash, and never for an unlocked shop.
func (c *AccessController) Directive() RenderDirective {
	c.mu.Lock()
	d, resolved := c.decision, c.resolved
	c.mu.Unlock()

	if d.Allowed {
		return RenderContent
	}
	switch c.cfg.Mode {
	case ModeHard:
		if resolved && d.Status != StatusUnlocked {
			return RenderRedirect
		}
	case ModeSoft:
		return RenderDimmed
	}
	return RenderContent
}
