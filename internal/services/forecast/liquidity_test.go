package forecast

import (
	"math"
	"testing"

	"FinCast/internal/domain/models"
)

func TestLiquidityProbabilitiesSumToOne(t *testing.T) {
	m := NewStatLiquidityModel(LiquidityConfig{})
	pred := m.Predict(
		models.OHLCV{Open: 100, High: 102, Low: 99, Close: 101, Volume: 5000},
		&models.OrderBook{Spread: 0.5, Depth: 12000, Imbalance: 0.1},
	)

	dirSum := pred.PriceUpProb + pred.PriceFlatProb + pred.PriceDownProb
	if math.Abs(dirSum-1.0) > 0.01 {
		t.Fatalf("direction triple sums to %v", dirSum)
	}
	liqSum := pred.LiquidityHighProb + pred.LiquidityLowProb
	if math.Abs(liqSum-1.0) > 0.01 {
		t.Fatalf("liquidity pair sums to %v", liqSum)
	}
	for _, p := range []float64{pred.PriceUpProb, pred.PriceFlatProb, pred.PriceDownProb, pred.LiquidityHighProb, pred.LiquidityLowProb} {
		if p < 0 || p > 1 {
			t.Fatalf("probability out of range: %v", p)
		}
	}
}

func TestBullishBarBeatsBearish(t *testing.T) {
	m := NewStatLiquidityModel(LiquidityConfig{})
	book := &models.OrderBook{Spread: 0.5, Depth: 10000, Imbalance: 0}

	bull := m.Predict(models.OHLCV{Open: 100, Close: 108}, book)
	bear := m.Predict(models.OHLCV{Open: 100, Close: 93}, book)

	if bull.PriceUpProb <= bear.PriceUpProb {
		t.Fatalf("bullish bar should score higher up prob: %v vs %v", bull.PriceUpProb, bear.PriceUpProb)
	}
}

func TestPredictWithoutOrderBook(t *testing.T) {
	m := NewStatLiquidityModel(LiquidityConfig{})
	pred := m.Predict(models.OHLCV{Open: 50, Close: 50}, nil)
	if pred.LiquidityHighProb < 0 || pred.LiquidityHighProb > 1 {
		t.Fatalf("liquidity prob out of range: %v", pred.LiquidityHighProb)
	}
}

func TestPredictExtremeInputsStaySane(t *testing.T) {
	m := NewStatLiquidityModel(LiquidityConfig{})
	pred := m.Predict(
		models.OHLCV{Open: 1e-12, Close: 1e9},
		&models.OrderBook{Spread: 1e9, Depth: -1e9, Imbalance: 1e6},
	)
	vals := []float64{pred.PriceUpProb, pred.PriceFlatProb, pred.PriceDownProb, pred.LiquidityHighProb, pred.LiquidityLowProb}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite probability: %v", vals)
		}
		if v < 0 || v > 1 {
			t.Fatalf("probability out of range: %v", vals)
		}
	}
}

func TestFitStandardizesLiquidityHead(t *testing.T) {
	m := NewStatLiquidityModel(LiquidityConfig{})
	prices := risingSeries(40, 100, 0.2)
	books := make([]models.OrderBook, 40)
	for i := range books {
		books[i] = models.OrderBook{Spread: 1.0, Depth: 10000, Imbalance: 0}
	}
	if _, err := m.Fit(prices, books); err != nil {
		t.Fatalf("fit: %v", err)
	}

	// A much tighter spread than the fitted mean should read as more liquid.
	tight := m.Predict(models.OHLCV{Open: 100, Close: 100}, &models.OrderBook{Spread: 0.1, Depth: 10000})
	wide := m.Predict(models.OHLCV{Open: 100, Close: 100}, &models.OrderBook{Spread: 5.0, Depth: 10000})
	if tight.LiquidityHighProb <= wide.LiquidityHighProb {
		t.Fatalf("tighter spread should raise liquidity prob: %v vs %v", tight.LiquidityHighProb, wide.LiquidityHighProb)
	}
}

func TestFitAcceptsShortInput(t *testing.T) {
	m := NewStatLiquidityModel(LiquidityConfig{})
	if _, err := m.Fit(nil, nil); err != nil {
		t.Fatalf("fit on empty input should not fail: %v", err)
	}
}
