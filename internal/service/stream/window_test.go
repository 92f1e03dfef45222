package stream

import (
	"testing"

	"FinCast/internal/domain/models"
)

func TestWindowsRecentOrder(t *testing.T) {
	w := NewWindows(4)
	for _, p := range []float64{10, 11, 12} {
		w.Observe(&models.Quote{Symbol: "BIAT", Price: p})
	}
	got := w.Recent("BIAT", 2)
	if len(got) != 2 || got[0] != 11 || got[1] != 12 {
		t.Fatalf("Recent = %v, want [11 12]", got)
	}
}

func TestWindowsWrapAround(t *testing.T) {
	w := NewWindows(3)
	for _, p := range []float64{1, 2, 3, 4, 5} {
		w.Observe(&models.Quote{Symbol: "BH", Price: p})
	}
	got := w.Recent("BH", 10)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0] != 3 || got[2] != 5 {
		t.Fatalf("Recent = %v, want [3 4 5]", got)
	}
}

func TestWindowsIgnoresBadQuotes(t *testing.T) {
	w := NewWindows(4)
	w.Observe(nil)
	w.Observe(&models.Quote{Symbol: "SFBT", Price: 0})
	w.Observe(&models.Quote{Symbol: "SFBT", Price: -1})
	if got := w.Recent("SFBT", 5); got != nil {
		t.Fatalf("Recent = %v, want nil", got)
	}
}

func TestWindowsUnknownSecurity(t *testing.T) {
	w := NewWindows(4)
	if got := w.Recent("NONE", 3); got != nil {
		t.Fatalf("Recent = %v, want nil", got)
	}
}
