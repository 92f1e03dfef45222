package forecast

import (
	"math"
	"strings"
	"testing"

	"FinCast/internal/domain/models"
)

func TestEnterIntradayOnStrongLiquidity(t *testing.T) {
	trig := NewExecutionTrigger(TriggerConfig{})
	q := models.QuantilePrediction{HorizonDay: 1, P10: 99, P50: 103, P90: 105}
	liq := models.LiquidityPrediction{PriceUpProb: 0.70, PriceDownProb: 0.20, LiquidityHighProb: 0.85, LiquidityLowProb: 0.15}

	sig := trig.Evaluate(q, liq, 100)
	if sig.Signal != models.SignalEnter {
		t.Fatalf("expected enter, got %s", sig.Signal)
	}
	if math.Abs(sig.Confidence-0.70) > 1e-9 {
		t.Fatalf("expected confidence 0.70, got %v", sig.Confidence)
	}
	if sig.Timing != models.TimingIntraday {
		t.Fatalf("expected intraday, got %s", sig.Timing)
	}
}

func TestEnterNextOpenOnModerateLiquidity(t *testing.T) {
	trig := NewExecutionTrigger(TriggerConfig{})
	q := models.QuantilePrediction{HorizonDay: 1, P10: 99, P50: 103, P90: 105}
	liq := models.LiquidityPrediction{PriceUpProb: 0.70, PriceDownProb: 0.20, LiquidityHighProb: 0.60, LiquidityLowProb: 0.40}

	sig := trig.Evaluate(q, liq, 100)
	if sig.Signal != models.SignalEnter {
		t.Fatalf("expected enter, got %s", sig.Signal)
	}
	if sig.Timing != models.TimingNextOpen {
		t.Fatalf("expected next_open, got %s", sig.Timing)
	}
}

func TestSpreadOverrideForcesHold(t *testing.T) {
	trig := NewExecutionTrigger(TriggerConfig{QuantileSpreadMax: 0.03})
	q := models.QuantilePrediction{HorizonDay: 1, P10: 90, P50: 103, P90: 110}
	liq := models.LiquidityPrediction{PriceUpProb: 0.70, PriceDownProb: 0.20, LiquidityHighProb: 0.85, LiquidityLowProb: 0.15}

	sig := trig.Evaluate(q, liq, 100)
	if sig.Signal != models.SignalHold {
		t.Fatalf("expected hold after override, got %s", sig.Signal)
	}
	if !strings.Contains(sig.Reason, "OVERRIDE") {
		t.Fatalf("expected override marker in reason, got %q", sig.Reason)
	}
	if sig.Timing != models.TimingWait1Day {
		t.Fatalf("expected wait_1_day, got %s", sig.Timing)
	}
}

func TestDeferOnThinLiquidity(t *testing.T) {
	trig := NewExecutionTrigger(TriggerConfig{})
	q := models.QuantilePrediction{HorizonDay: 1, P10: 99, P50: 103, P90: 105}
	liq := models.LiquidityPrediction{PriceUpProb: 0.70, PriceDownProb: 0.20, LiquidityHighProb: 0.30, LiquidityLowProb: 0.70}

	sig := trig.Evaluate(q, liq, 100)
	if sig.Signal != models.SignalDefer {
		t.Fatalf("expected defer, got %s", sig.Signal)
	}
	if math.Abs(sig.Confidence-0.35) > 1e-9 {
		t.Fatalf("expected confidence 0.35, got %v", sig.Confidence)
	}
	if sig.Timing != models.TimingWait1Day {
		t.Fatalf("expected wait_1_day, got %s", sig.Timing)
	}
}

func TestExitPaths(t *testing.T) {
	trig := NewExecutionTrigger(TriggerConfig{})
	liq := models.LiquidityPrediction{PriceUpProb: 0.10, PriceDownProb: 0.75, LiquidityHighProb: 0.80, LiquidityLowProb: 0.20}

	// Tight spread exits intraday.
	tight := trig.Evaluate(models.QuantilePrediction{P10: 97, P50: 96, P90: 99}, liq, 100)
	if tight.Signal != models.SignalExit || tight.Timing != models.TimingIntraday {
		t.Fatalf("expected intraday exit, got %s/%s", tight.Signal, tight.Timing)
	}

	// Thin liquidity defers instead.
	thin := trig.Evaluate(models.QuantilePrediction{P10: 97, P50: 96, P90: 99}, models.LiquidityPrediction{
		PriceUpProb: 0.10, PriceDownProb: 0.75, LiquidityHighProb: 0.30, LiquidityLowProb: 0.70,
	}, 100)
	if thin.Signal != models.SignalDefer {
		t.Fatalf("expected defer, got %s", thin.Signal)
	}
	if math.Abs(thin.Confidence-0.30) > 1e-9 {
		t.Fatalf("expected confidence 0.30, got %v", thin.Confidence)
	}
}

func TestHoldWithoutConviction(t *testing.T) {
	trig := NewExecutionTrigger(TriggerConfig{})
	q := models.QuantilePrediction{HorizonDay: 1, P10: 99, P50: 100.5, P90: 102}
	liq := models.LiquidityPrediction{PriceUpProb: 0.40, PriceFlatProb: 0.30, PriceDownProb: 0.30, LiquidityHighProb: 0.60, LiquidityLowProb: 0.40}

	sig := trig.Evaluate(q, liq, 100)
	if sig.Signal != models.SignalHold {
		t.Fatalf("expected hold, got %s", sig.Signal)
	}
	if math.Abs(sig.Confidence-0.60) > 1e-9 {
		t.Fatalf("expected confidence 0.60, got %v", sig.Confidence)
	}
	if sig.Timing != models.TimingNextOpen {
		t.Fatalf("expected next_open, got %s", sig.Timing)
	}
}

func TestDetailsAlwaysPresent(t *testing.T) {
	trig := NewExecutionTrigger(TriggerConfig{})
	sig := trig.Evaluate(models.QuantilePrediction{P10: 99, P50: 101, P90: 102}, models.LiquidityPrediction{}, 100)
	for _, key := range []string{"upside_pct", "spread_frac_pct", "liq_high_prob", "price_up_prob", "price_down_prob"} {
		if _, ok := sig.Details[key]; !ok {
			t.Fatalf("missing detail %q in %v", key, sig.Details)
		}
	}
}
