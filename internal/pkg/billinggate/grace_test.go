package billinggate

import (
	"testing"
	"time"
)

func TestWithinGraceBoundaryIsInclusive(t *testing.T) {
	periodEnd := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	boundary := periodEnd.AddDate(0, 0, 14)

	inGrace, until := WithinGrace(&periodEnd, 14, boundary)
	if !inGrace {
		t.Fatal("expected the boundary instant itself to be in grace")
	}
	if until == nil || !until.Equal(boundary) {
		t.Fatalf("expected boundary %v, got %v", boundary, until)
	}

	inGrace, until = WithinGrace(&periodEnd, 14, boundary.Add(time.Second))
	if inGrace {
		t.Fatal("expected one second past the boundary to be out of grace")
	}
	if until == nil || !until.Equal(boundary) {
		t.Fatal("expected the boundary to be reported even when out of grace")
	}
}

func TestWithinGraceZeroDays(t *testing.T) {
	periodEnd := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	if inGrace, _ := WithinGrace(&periodEnd, 0, periodEnd); !inGrace {
		t.Fatal("graceDays=0 must keep the period end instant itself in grace")
	}
	if inGrace, _ := WithinGrace(&periodEnd, 0, periodEnd.Add(time.Second)); inGrace {
		t.Fatal("graceDays=0 must deny one second past the period end")
	}
}

func TestWithinGraceNoPeriodEnd(t *testing.T) {
	if inGrace, until := WithinGrace(nil, 14, time.Now()); inGrace || until != nil {
		t.Fatal("missing period end must never be in grace")
	}
	var zero time.Time
	if inGrace, until := WithinGrace(&zero, 14, time.Now()); inGrace || until != nil {
		t.Fatal("zero period end must never be in grace")
	}
}
