package inventory

import "testing"

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		min      int
		max      int
		want     Status
	}{
		{"below min", 5, 10, 50, StatusLow},
		{"above max", 60, 10, 50, StatusOver},
		{"inside band", 20, 10, 50, StatusNormal},
		{"at min is normal", 10, 10, 50, StatusNormal},
		{"at max is normal", 50, 10, 50, StatusNormal},
		{"zero quantity", 0, 1, 50, StatusLow},
		{"degenerate band", 3, 5, 2, StatusLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.quantity, tt.min, tt.max); got != tt.want {
				t.Fatalf("StatusFor(%d,%d,%d) = %s, want %s", tt.quantity, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestStatusIsExactlyOne(t *testing.T) {
	// Every combination must classify into exactly one bucket.
	for q := 0; q <= 60; q += 5 {
		got := StatusFor(q, 10, 50)
		if got != StatusLow && got != StatusOver && got != StatusNormal {
			t.Fatalf("quantity %d produced unknown status %q", q, got)
		}
	}
}

func TestParseRole(t *testing.T) {
	if ParseRole("ADMIN") != RoleAdmin {
		t.Fatalf("admin claim should map to RoleAdmin")
	}
	if ParseRole("superuser") != RoleUser {
		t.Fatalf("unknown claim should default to RoleUser")
	}
	if ParseRole("") != RoleUser {
		t.Fatalf("empty claim should default to RoleUser")
	}
}

func TestNameFromEmail(t *testing.T) {
	if got := NameFromEmail("ana@example.com"); got != "ana" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := NameFromEmail("no-at-sign"); got != "no-at-sign" {
		t.Fatalf("unexpected fallback %q", got)
	}
}
