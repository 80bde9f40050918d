package billinggate

import "testing"

func TestNormalizeMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{in: "hard", want: ModeHard},
		{in: "HARD", want: ModeHard},
		{in: " soft ", want: ModeSoft},
		{in: "hybrid", want: ModeHybrid},
		{in: "bogus", want: ModeHybrid},
		{in: "", want: ModeHybrid},
	}

	for _, tt := range tests {
		if got := NormalizeMode(tt.in); got != tt.want {
			t.Fatalf("NormalizeMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClampGraceDays(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{in: "-1", want: 14},
		{in: "121", want: 14},
		{in: "30", want: 30},
		{in: "not a number", want: 14},
		{in: "", want: 14},
		{in: "0", want: 0},
		{in: "120", want: 120},
	}

	for _, tt := range tests {
		if got := ClampGraceDays(tt.in, DefaultGraceDays); got != tt.want {
			t.Fatalf("ClampGraceDays(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseUnlockList(t *testing.T) {
	got := ParseUnlockList(" shop-a, shop-b ,, shop-a ,")
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	for _, id := range []string{"shop-a", "shop-b"} {
		if _, ok := got[id]; !ok {
			t.Fatalf("expected %q in unlock list", id)
		}
	}

	if got := ParseUnlockList(""); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}

func TestParseBool(t *testing.T) {
	for _, truthy := range []string{"1", "true", "yes", "on", "TRUE", " Yes "} {
		if !parseBool(truthy) {
			t.Fatalf("expected %q to be truthy", truthy)
		}
	}
	for _, falsy := range []string{"", "0", "false", "off", "enable"} {
		if parseBool(falsy) {
			t.Fatalf("expected %q to be falsy", falsy)
		}
	}
}

func TestConfigIsUnlocked(t *testing.T) {
	cfg := Config{UnlockShops: ParseUnlockList("shop-a")}
	if !cfg.IsUnlocked("shop-a") {
		t.Fatal("expected allow-listed shop to be unlocked")
	}
	if cfg.IsUnlocked("shop-b") {
		t.Fatal("expected unlisted shop to stay locked")
	}

	cfg.EmergencyUnlock = true
	if !cfg.IsUnlocked("shop-b") {
		t.Fatal("expected global emergency unlock to cover every shop")
	}
}
