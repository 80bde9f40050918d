package billinggate

import (
	"strings"
	"time"
)

// Billing statuses as delivered by the payment sync. The column is not a
// closed enum; anything unrecognized is folded into StatusUnknown.
const (
	StatusTrialing = "trialing"
	StatusActive   = "active"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
	StatusNone     = "none"
	StatusUnknown  = "unknown"
)

// Effective statuses that only exist on derived decisions.
const (
	StatusLoading  = "loading"
	StatusUnlocked = "unlocked"
	StatusGrace    = "grace"
)

// Snapshot is the billing record slice the gate evaluates: the raw status
// string and the end of the last paid-for period, if any.
type Snapshot struct {
	Status           string
	CurrentPeriodEnd *time.Time
}

// NormalizeStatus folds free-form provider statuses onto the known set.
func NormalizeStatus(raw string) string {
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case StatusTrialing, StatusActive, StatusPastDue, StatusCanceled, StatusNone:
		return s
	case "":
		return StatusNone
	default:
		return StatusUnknown
	}
}

// Decision is the derived access decision. It is recomputed on every
// evaluation and never persisted.
type Decision struct {
	Status     string     `json:"status"`
	Allowed    bool       `json:"is_allowed"`
	ReadOnly   bool       `json:"is_read_only"`
	BlockedAll bool       `json:"is_blocked_all"`
	Reason     string     `json:"reason"`
	GraceUntil *time.Time `json:"grace_until,omitempty"`
}

// Evaluate computes the Decision for one shop from a billing snapshot, the
// gate configuration and the evaluation instant. Pure function; both the
// request-time evaluator and the access controller derive their answers
// through it so the two surfaces cannot drift apart.
func Evaluate(shopID string, snap Snapshot, cfg Config, now time.Time) Decision {
	if cfg.IsUnlocked(shopID) {
		return Decision{
			Status:  StatusUnlocked,
			Allowed: true,
			Reason:  "emergency unlock active",
		}
	}

	status := NormalizeStatus(snap.Status)
	d := Decision{Status: status}

	switch status {
	case StatusActive, StatusTrialing:
		d.Allowed = true
		d.Reason = "subscription " + status
	default:
		inGrace, until := WithinGrace(snap.CurrentPeriodEnd, cfg.GraceDays, now)
		d.GraceUntil = until
		if inGrace {
			d.Status = StatusGrace
			d.Allowed = true
			d.Reason = "inside grace window"
		} else {
			d.Reason = "subscription " + status
		}
	}

	shapeForMode(&d, cfg.Mode)
	return d
}

// shapeForMode fills the mode-scoped flags on a decision: ReadOnly only ever
// fires in hybrid mode, BlockedAll only in hard mode.
func shapeForMode(d *Decision, mode Mode) {
	d.ReadOnly = mode == ModeHybrid && !d.Allowed
	d.BlockedAll = mode == ModeHard && !d.Allowed
}
