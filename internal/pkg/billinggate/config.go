package billinggate

import (
	"strconv"
	"strings"

	"github.com/shopdeckhq/shopdeck/internal/pkg/env"
)

// Mode selects how the gate is enforced across the console.
type Mode string

const (
	// ModeHard fully blocks unpaid shops: pages redirect away, writes are rejected.
	ModeHard Mode = "hard"
	// ModeSoft keeps everything usable but visually degraded; it never blocks
	// server-side writes on its own.
	ModeSoft Mode = "soft"
	// ModeHybrid allows viewing at full fidelity and locks individual write actions.
	ModeHybrid Mode = "hybrid"
)

// DefaultGraceDays is used whenever the configured value is missing or out of range.
const DefaultGraceDays = 14

// MaxGraceDays bounds the grace window so a config typo cannot create an
// effectively unlimited free-access period.
const MaxGraceDays = 120

// NormalizeMode maps arbitrary input to a known Mode. Unrecognized, empty or
// missing input falls back to ModeHybrid. Total function, no error path.
func NormalizeMode(raw string) Mode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(ModeHard):
		return ModeHard
	case string(ModeSoft):
		return ModeSoft
	case string(ModeHybrid):
		return ModeHybrid
	default:
		return ModeHybrid
	}
}

// ClampGraceDays parses raw as an integer number of days and returns fallback
// when it is not a number or outside [0, MaxGraceDays].
func ClampGraceDays(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	if n < 0 || n > MaxGraceDays {
		return fallback
	}
	return n
}

// ParseUnlockList splits a comma-separated list of shop identifiers, trimming
// whitespace and dropping empty entries. Duplicates are harmless.
func ParseUnlockList(raw string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		out[p] = struct{}{}
	}
	return out
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Config is the gate configuration snapshot. It is built once per
// process/request and passed by value; deep policy code never reads the
// environment itself.
type Config struct {
	Mode            Mode
	GraceDays       int
	EmergencyUnlock bool
	UnlockShops     map[string]struct{}
}

// ConfigFromEnv builds a Config from the process environment.
func ConfigFromEnv() Config {
	return Config{
		Mode:            NormalizeMode(env.GetEnv("BILLING_GATE_MODE", "")),
		GraceDays:       ClampGraceDays(env.GetEnv("BILLING_GRACE_DAYS", ""), DefaultGraceDays),
		EmergencyUnlock: parseBool(env.GetEnv("BILLING_EMERGENCY_UNLOCK", "")),
		UnlockShops:     ParseUnlockList(env.GetEnv("BILLING_UNLOCK_SHOP_IDS", "")),
	}
}

// IsUnlocked reports whether the emergency override applies to shopID, either
// through the global flag or the per-shop allow list.
func (c Config) IsUnlocked(shopID string) bool {
	if c.EmergencyUnlock {
		return true
	}
	_, ok := c.UnlockShops[shopID]
	return ok
}
