package service

import (
	"FinCast/internal/domain/models"
)

// PriceForecaster produces probabilistic price quantiles for 1..N days ahead.
// The reference implementation is a fitted statistical model; a production
// gradient-boosted or neural model can be substituted behind this contract
// without touching the trigger, the explainer or the orchestrator.
type PriceForecaster interface {
	Fit(prices []float64, features [][]float64) (models.TrainMetrics, error)
	Predict(recent []float64, features map[string]float64, horizon int) ([]models.QuantilePrediction, error)
	Save(path string) error
	Load(path string) error
	Fitted() bool
}

// LiquidityClassifier predicts price direction and liquidity regime from a
// bar plus optional order-book features.
type LiquidityClassifier interface {
	Fit(prices []float64, books []models.OrderBook) (models.TrainMetrics, error)
	Predict(ohlcv models.OHLCV, book *models.OrderBook) models.LiquidityPrediction
}

// Augmenter generates synthetic price paths from a fitted return distribution.
type Augmenter interface {
	Fit(prices []float64) (models.TrainMetrics, error)
	Generate(n int) ([][]float64, error)
	GenerateOHLCV(n int) ([]models.SyntheticOHLCV, error)
}
