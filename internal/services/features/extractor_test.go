package features

import (
	"math"
	"testing"

	"FinCast/internal/domain/models"
)

func TestClosePrices(t *testing.T) {
	candles := []models.Candle{
		{Close: 100}, {Close: 101.5}, {Close: 99},
	}
	got := ClosePrices(candles)
	if len(got) != 3 {
		t.Fatalf("expected 3 closes, got %d", len(got))
	}
	if got[1] != 101.5 {
		t.Fatalf("expected 101.5 at index 1, got %v", got[1])
	}
	if ClosePrices(nil) != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestLogReturns(t *testing.T) {
	prices := []float64{100, 110, 99}
	rets := LogReturns(prices)
	if len(rets) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(rets))
	}
	want := math.Log(110.0 / 100.0)
	if math.Abs(rets[0]-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, rets[0])
	}
	if rets[1] >= 0 {
		t.Fatalf("expected negative return, got %v", rets[1])
	}
}

func TestLogReturnsNonPositivePrice(t *testing.T) {
	rets := LogReturns([]float64{100, 0, 100})
	if len(rets) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(rets))
	}
	if rets[0] != 0 || rets[1] != 0 {
		t.Fatalf("expected zero returns around a bad price, got %v", rets)
	}
	if LogReturns([]float64{100}) != nil {
		t.Fatalf("expected nil for a single price")
	}
}

func TestRealizedVolatility(t *testing.T) {
	flat := []float64{0, 0, 0, 0, 0}
	if v := RealizedVolatility(flat, 5); v != 0 {
		t.Fatalf("flat returns should have zero volatility, got %v", v)
	}
	rets := []float64{0.01, -0.02, 0.015, -0.005, 0.02}
	v := RealizedVolatility(rets, 5)
	if v <= 0 {
		t.Fatalf("expected positive volatility, got %v", v)
	}
	if RealizedVolatility(rets, 10) != 0 {
		t.Fatalf("expected 0 when the window exceeds the series")
	}
}

func TestRSIBounds(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	if got := RSI(up, 14); got != 100 {
		t.Fatalf("monotone rally should give RSI 100, got %v", got)
	}

	down := make([]float64, 20)
	for i := range down {
		down[i] = 100 - float64(i)
	}
	if got := RSI(down, 14); got > 1 {
		t.Fatalf("monotone selloff should give RSI near 0, got %v", got)
	}

	if got := RSI([]float64{100, 101}, 14); got != 50 {
		t.Fatalf("short series should give the neutral 50, got %v", got)
	}
}

func TestRSIMixedSeries(t *testing.T) {
	prices := []float64{44, 44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.1,
		45.42, 45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.0}
	got := RSI(prices, 14)
	if got <= 50 || got >= 100 {
		t.Fatalf("expected RSI between 50 and 100 for an uptrend, got %v", got)
	}
}
