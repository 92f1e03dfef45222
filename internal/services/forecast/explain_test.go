package forecast

import (
	"math"
	"testing"
)

func TestConfidenceIntervalDefaultLevel(t *testing.T) {
	e := NewExplainer(nil)
	low, high := e.ConfidenceInterval(90, 110, 0.80)
	if low != 90 || high != 110 {
		t.Fatalf("80%% interval should be [p10, p90], got [%v, %v]", low, high)
	}
}

func TestConfidenceIntervalWidensWithLevel(t *testing.T) {
	e := NewExplainer(nil)
	levels := []float64{0.50, 0.80, 0.90, 0.95, 0.99}
	prev := -1.0
	for _, level := range levels {
		low, high := e.ConfidenceInterval(90, 110, level)
		width := high - low
		if low >= high {
			t.Fatalf("level %v: low %v not below high %v", level, low, high)
		}
		if width <= prev {
			t.Fatalf("level %v: width %v did not grow past %v", level, width, prev)
		}
		prev = width
	}
}

func TestConfidenceIntervalSymmetry(t *testing.T) {
	e := NewExplainer(nil)
	low, high := e.ConfidenceInterval(90, 110, 0.95)
	mid := (low + high) / 2
	if math.Abs(mid-100) > 1e-9 {
		t.Fatalf("interval should be symmetric around 100, got midpoint %v", mid)
	}
}

func TestAblationAttributionExactForAdditive(t *testing.T) {
	e := NewExplainer(map[string]float64{"close": 100})
	features := map[string]float64{"close": 105, "volume": 4000, "rsi": 60}

	additive := func(f map[string]float64) float64 {
		sum := 0.0
		for _, v := range f {
			sum += v
		}
		return sum
	}

	attr := e.Attribution(features, additive)
	// Attribution equals value minus baseline (0 if unset) for any
	// additive predictor.
	if math.Abs(attr["close"]-5) > 1e-9 {
		t.Fatalf("close attribution: want 5, got %v", attr["close"])
	}
	if math.Abs(attr["volume"]-4000) > 1e-9 {
		t.Fatalf("volume attribution: want 4000, got %v", attr["volume"])
	}
	if math.Abs(attr["rsi"]-60) > 1e-9 {
		t.Fatalf("rsi attribution: want 60, got %v", attr["rsi"])
	}
}

func TestHeuristicAttributionFallback(t *testing.T) {
	e := NewExplainer(nil)
	attr := e.Attribution(map[string]float64{"volume": 10, "mystery": 10}, nil)
	if math.Abs(attr["volume"]-3.0) > 1e-9 {
		t.Fatalf("volume heuristic: want 3.0, got %v", attr["volume"])
	}
	// Unknown features get the small default weight.
	if math.Abs(attr["mystery"]-0.1) > 1e-9 {
		t.Fatalf("unknown feature heuristic: want 0.1, got %v", attr["mystery"])
	}
}

func TestTopDriversRankingAndLabels(t *testing.T) {
	e := NewExplainer(nil)
	attr := map[string]float64{
		"close":   -4.0,
		"volume":  2.5,
		"rsi":     0.5,
		"custom":  -3.0,
		"depth":   0.1,
		"spread":  0.05,
	}
	drivers := e.TopDrivers(attr, 4)
	if len(drivers) != 4 {
		t.Fatalf("expected 4 drivers, got %d", len(drivers))
	}
	for i := 1; i < len(drivers); i++ {
		if math.Abs(drivers[i].Value) > math.Abs(drivers[i-1].Value) {
			t.Fatalf("drivers not sorted by |value|: %+v", drivers)
		}
	}
	if drivers[0].Feature != "close" || drivers[0].Direction != "negative" {
		t.Fatalf("expected close as top negative driver, got %+v", drivers[0])
	}
	if drivers[0].Label != "Closing price" {
		t.Fatalf("expected display label, got %q", drivers[0].Label)
	}
	// Unlabeled features fall back to the raw key.
	if drivers[1].Feature != "custom" || drivers[1].Label != "custom" {
		t.Fatalf("expected raw-key label for custom, got %+v", drivers[1])
	}
}

func TestTopDriversKLargerThanMap(t *testing.T) {
	e := NewExplainer(nil)
	drivers := e.TopDrivers(map[string]float64{"close": 1}, 10)
	if len(drivers) != 1 {
		t.Fatalf("expected 1 driver, got %d", len(drivers))
	}
}

func TestExplainBundlesResult(t *testing.T) {
	e := NewExplainer(nil)
	feats := map[string]float64{"close": 100, "volume": 5000, "rsi": 60}
	res := e.Explain(90, 110, 0.80, feats, nil, 2)
	if res.ConfidenceLow != 90 || res.ConfidenceHigh != 110 {
		t.Fatalf("80%% interval should be [p10,p90], got [%v,%v]", res.ConfidenceLow, res.ConfidenceHigh)
	}
	if len(res.Attribution) != 3 {
		t.Fatalf("expected 3 attributions, got %d", len(res.Attribution))
	}
	if len(res.TopDrivers) != 2 {
		t.Fatalf("expected 2 drivers, got %d", len(res.TopDrivers))
	}
	if res.TopDrivers[0].Feature != "volume" {
		t.Fatalf("expected volume as top heuristic driver, got %+v", res.TopDrivers[0])
	}
}
