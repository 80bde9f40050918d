package billinggate

import "time"

// WithinGrace reports whether now still falls inside the grace window that
// extends graceDays past the given period end. The boundary instant itself is
// in grace (inclusive check), so graceDays=0 keeps access exactly until the
// period end. The computed boundary is returned whenever a period end exists,
// even when now is already past it.
func WithinGrace(periodEnd *time.Time, graceDays int, now time.Time) (bool, *time.Time) {
	if periodEnd == nil || periodEnd.IsZero() {
		return false, nil
	}
	until := periodEnd.AddDate(0, 0, graceDays)
	return !now.After(until), &until
}
