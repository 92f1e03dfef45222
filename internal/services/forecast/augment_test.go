package forecast

import (
	"errors"
	"testing"
)

func TestGenerateBeforeFit(t *testing.T) {
	a := NewSyntheticAugmenter(AugmenterConfig{})
	if _, err := a.Generate(5); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
}

func TestGenerateShapeAndPositivity(t *testing.T) {
	a := NewSyntheticAugmenter(AugmenterConfig{Seed: 42})
	if _, err := a.Fit(risingSeries(99, 100, 0.5)); err != nil {
		t.Fatalf("fit: %v", err)
	}
	series, err := a.Generate(5)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(series) != 5 {
		t.Fatalf("expected 5 series, got %d", len(series))
	}
	for i, s := range series {
		if len(s) != 60 {
			t.Fatalf("series %d: expected length 60, got %d", i, len(s))
		}
		for j, v := range s {
			if v <= 0 {
				t.Fatalf("series %d[%d]: non-positive value %v", i, j, v)
			}
		}
	}
}

func TestGenerateDefaultsCount(t *testing.T) {
	a := NewSyntheticAugmenter(AugmenterConfig{Seed: 1})
	if _, err := a.Fit(risingSeries(80, 50, 0.2)); err != nil {
		t.Fatalf("fit: %v", err)
	}
	series, err := a.Generate(0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(series) != 5 {
		t.Fatalf("expected default count 5, got %d", len(series))
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	gen := func() [][]float64 {
		a := NewSyntheticAugmenter(AugmenterConfig{Seed: 7})
		if _, err := a.Fit(risingSeries(80, 100, 0.3)); err != nil {
			t.Fatalf("fit: %v", err)
		}
		s, err := a.Generate(2)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		return s
	}
	first := gen()
	second := gen()
	for i := range first {
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Fatalf("seeded generation not reproducible at [%d][%d]", i, j)
			}
		}
	}
}

func TestGenerateOHLCVInvariants(t *testing.T) {
	a := NewSyntheticAugmenter(AugmenterConfig{Seed: 99})
	if _, err := a.Fit(risingSeries(99, 100, 0.5)); err != nil {
		t.Fatalf("fit: %v", err)
	}
	bars, err := a.GenerateOHLCV(3)
	if err != nil {
		t.Fatalf("generate ohlcv: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bar sets, got %d", len(bars))
	}
	for i, b := range bars {
		if len(b.Close) != 60 || len(b.High) != 60 || len(b.Low) != 60 || len(b.Open) != 60 || len(b.Volume) != 60 {
			t.Fatalf("bar set %d: uneven lengths", i)
		}
		for j := range b.Close {
			if b.Low[j] > b.Close[j] || b.Close[j] > b.High[j] {
				t.Fatalf("bar set %d[%d]: low %v close %v high %v", i, j, b.Low[j], b.Close[j], b.High[j])
			}
			if b.Volume[j] < 0 {
				t.Fatalf("bar set %d[%d]: negative volume %v", i, j, b.Volume[j])
			}
		}
		if b.Open[0] != b.Close[0] {
			t.Fatalf("bar set %d: first open should equal first close", i)
		}
		for j := 1; j < len(b.Close); j++ {
			if b.Open[j] != b.Close[j-1] {
				t.Fatalf("bar set %d[%d]: open should equal previous close", i, j)
			}
		}
	}
}

func TestFitEmptySeries(t *testing.T) {
	a := NewSyntheticAugmenter(AugmenterConfig{})
	if _, err := a.Fit(nil); err == nil {
		t.Fatalf("expected error on empty series")
	}
}
