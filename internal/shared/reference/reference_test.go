package reference

import (
	"strings"
	"testing"
)

func TestNewPaymentFormat(t *testing.T) {
	ref := NewPayment()

	if !strings.HasPrefix(ref, "PMT-") {
		t.Fatalf("expected PMT- prefix, got %q", ref)
	}
	parts := strings.SplitN(ref, "-", 3)
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %q", ref)
	}
	if len(parts[2]) != 12 {
		t.Errorf("expected 12 hex chars of randomness, got %q", parts[2])
	}
	if !IsPayment(ref) {
		t.Errorf("IsPayment(%q) = false", ref)
	}
}

func TestNewPaymentUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := NewPayment()
		if seen[ref] {
			t.Fatalf("duplicate reference %q", ref)
		}
		seen[ref] = true
	}
}

func TestIsPayment(t *testing.T) {
	cases := map[string]bool{
		"PMT-1714000000000-a1b2c3d4e5f6": true,
		"PMT--":                          false,
		"ORD-1714000000000-a1b2c3":       false,
		"PMT-1714000000000":              false,
		"":                               false,
	}
	for in, want := range cases {
		if got := IsPayment(in); got != want {
			t.Errorf("IsPayment(%q) = %v, want %v", in, got, want)
		}
	}
}
