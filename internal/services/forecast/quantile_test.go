package forecast

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func risingSeries(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestFitInsufficientHistory(t *testing.T) {
	f := NewGBMForecaster(ForecasterConfig{})
	_, err := f.Fit(risingSeries(34, 100, 0.5), nil)
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestFitExactMinimumSucceeds(t *testing.T) {
	f := NewGBMForecaster(ForecasterConfig{})
	metrics, err := f.Fit(risingSeries(35, 100, 0.5), nil)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if !f.Fitted() {
		t.Fatalf("expected fitted")
	}
	if _, ok := metrics["pinball_loss_q50"]; !ok {
		t.Fatalf("expected pinball_loss_q50 in metrics, got %v", metrics)
	}
	if f.State().Sigma <= 0 {
		t.Fatalf("sigma must be positive, got %v", f.State().Sigma)
	}
}

func TestPredictHorizonBounds(t *testing.T) {
	f := NewGBMForecaster(ForecasterConfig{})
	recent := risingSeries(30, 100, 0.5)
	for _, h := range []int{0, 6, -1} {
		if _, err := f.Predict(recent, nil, h); !errors.Is(err, ErrInvalidHorizon) {
			t.Fatalf("horizon %d: expected ErrInvalidHorizon, got %v", h, err)
		}
	}
}

func TestPredictShapeAndOrdering(t *testing.T) {
	f := NewGBMForecaster(ForecasterConfig{})
	if _, err := f.Fit(risingSeries(60, 100, 0.3), nil); err != nil {
		t.Fatalf("fit: %v", err)
	}
	recent := risingSeries(30, 110, 0.3)
	for h := 1; h <= 5; h++ {
		preds, err := f.Predict(recent, nil, h)
		if err != nil {
			t.Fatalf("predict horizon %d: %v", h, err)
		}
		if len(preds) != h {
			t.Fatalf("expected %d predictions, got %d", h, len(preds))
		}
		for i, p := range preds {
			if p.HorizonDay != i+1 {
				t.Fatalf("expected horizon_day %d, got %d", i+1, p.HorizonDay)
			}
			if p.P10 > p.P50 || p.P50 > p.P90 {
				t.Fatalf("quantile ordering violated at day %d: %v %v %v", p.HorizonDay, p.P10, p.P50, p.P90)
			}
		}
	}
}

func TestPredictUnfittedUsesRecentPrices(t *testing.T) {
	f := NewGBMForecaster(ForecasterConfig{})
	preds, err := f.Predict(risingSeries(30, 50, 0.2), nil, 3)
	if err != nil {
		t.Fatalf("predict unfitted: %v", err)
	}
	if len(preds) != 3 {
		t.Fatalf("expected 3 predictions, got %d", len(preds))
	}
	for _, p := range preds {
		if math.IsNaN(p.P50) || p.P50 <= 0 {
			t.Fatalf("bad median %v", p.P50)
		}
	}
}

func TestSpreadGrowsWithHorizon(t *testing.T) {
	f := NewGBMForecaster(ForecasterConfig{})
	// Noisy series so sigma is clearly non-zero.
	prices := make([]float64, 80)
	for i := range prices {
		prices[i] = 100 + 3*math.Sin(float64(i)) + float64(i)*0.1
	}
	if _, err := f.Fit(prices, nil); err != nil {
		t.Fatalf("fit: %v", err)
	}
	preds, err := f.Predict(prices[len(prices)-30:], nil, 5)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	first := preds[0].P90 - preds[0].P10
	last := preds[4].P90 - preds[4].P10
	if last < first {
		t.Fatalf("spread should widen with horizon: day1=%v day5=%v", first, last)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	f := NewGBMForecaster(ForecasterConfig{})
	if _, err := f.Fit(risingSeries(60, 100, 0.4), nil); err != nil {
		t.Fatalf("fit: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := f.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	g := NewGBMForecaster(ForecasterConfig{})
	if err := g.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !g.Fitted() {
		t.Fatalf("loaded model should be fitted")
	}

	recent := risingSeries(30, 120, 0.4)
	want, err := f.Predict(recent, nil, 5)
	if err != nil {
		t.Fatalf("predict original: %v", err)
	}
	got, err := g.Predict(recent, nil, 5)
	if err != nil {
		t.Fatalf("predict loaded: %v", err)
	}
	for i := range want {
		if math.Abs(want[i].P10-got[i].P10) > 1e-9 ||
			math.Abs(want[i].P50-got[i].P50) > 1e-9 ||
			math.Abs(want[i].P90-got[i].P90) > 1e-9 {
			t.Fatalf("round-trip mismatch at day %d: %+v vs %+v", i+1, want[i], got[i])
		}
	}
}

func TestPinballLoss(t *testing.T) {
	// e = 2 for both points; q=0.5 gives mean(max(1, -1)) = 1.
	loss, err := PinballLoss([]float64{3, 5}, []float64{1, 3}, 0.5)
	if err != nil {
		t.Fatalf("pinball: %v", err)
	}
	if math.Abs(loss-1.0) > 1e-12 {
		t.Fatalf("expected loss 1.0, got %v", loss)
	}

	// Asymmetry: under-prediction is penalized more at q=0.9.
	under, _ := PinballLoss([]float64{10}, []float64{8}, 0.9)
	over, _ := PinballLoss([]float64{10}, []float64{12}, 0.9)
	if under <= over {
		t.Fatalf("q=0.9 should penalize under-prediction more: under=%v over=%v", under, over)
	}

	if _, err := PinballLoss([]float64{1}, []float64{1, 2}, 0.5); err == nil {
		t.Fatalf("expected length mismatch error")
	}
}
