// Package forecast implements the probabilistic forecasting and
// execution-decision core: quantile price forecasts, the dual-head
// liquidity classifier, transfer learning, synthetic augmentation,
// forecast attribution and the trade-timing trigger.
//
// All components are synchronous, CPU-bound and free of I/O; the
// surrounding service layer owns scheduling and persistence concerns.
package forecast

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"FinCast/internal/domain/models"
)

// Quantile z-scores for the 10th and 90th percentile of a standard normal.
const (
	zLow  = -1.2816
	zHigh = 1.2816
)

// ForecasterConfig holds the knobs of the quantile forecaster.
type ForecasterConfig struct {
	Lookback   int // look-back window in trading days
	MaxHorizon int // furthest predictable day
	Epochs     int // reported in train metrics
}

// DefaultForecasterConfig returns the production defaults.
func DefaultForecasterConfig() ForecasterConfig {
	return ForecasterConfig{Lookback: 30, MaxHorizon: 5, Epochs: 50}
}

func (c *ForecasterConfig) setDefaults() {
	def := DefaultForecasterConfig()
	if c.Lookback <= 0 {
		c.Lookback = def.Lookback
	}
	if c.MaxHorizon <= 0 {
		c.MaxHorizon = def.MaxHorizon
	}
	if c.Epochs <= 0 {
		c.Epochs = def.Epochs
	}
}

// ModelState is the opaque persisted bundle of a fitted forecaster.
type ModelState struct {
	Mu        float64 `json:"mu"`
	Sigma     float64 `json:"sigma"`
	LastPrice float64 `json:"last_price"`
}

// GBMForecaster produces p10/p50/p90 price quantiles under a
// geometric-random-walk assumption fitted on log returns. It stands in
// for a trained sequence model behind the same PriceForecaster contract.
type GBMForecaster struct {
	cfg    ForecasterConfig
	state  ModelState
	fitted bool
}

// NewGBMForecaster creates an unfitted forecaster. Zero config fields
// fall back to defaults.
func NewGBMForecaster(cfg ForecasterConfig) *GBMForecaster {
	cfg.setDefaults()
	return &GBMForecaster{cfg: cfg}
}

// Fit estimates drift and volatility from consecutive log returns and
// records the last observed price. Fails with ErrInsufficientHistory
// when the series is shorter than lookback + max horizon.
func (f *GBMForecaster) Fit(prices []float64, features [][]float64) (models.TrainMetrics, error) {
	need := f.cfg.Lookback + f.cfg.MaxHorizon
	if len(prices) < need {
		return nil, fmt.Errorf("%w: need at least %d points, got %d", ErrInsufficientHistory, need, len(prices))
	}

	rets := logReturns(prices)
	mu, sigma := meanStd(rets)
	f.state = ModelState{Mu: mu, Sigma: sigma + eps, LastPrice: prices[len(prices)-1]}
	f.fitted = true

	metrics := models.TrainMetrics{"epochs": float64(f.cfg.Epochs)}
	f.insamplePinball(prices, metrics)
	return metrics, nil
}

// insamplePinball reports the one-day-ahead pinball loss of the fitted
// state per quantile, evaluated over the training series.
func (f *GBMForecaster) insamplePinball(prices []float64, metrics models.TrainMetrics) {
	n := len(prices) - 1
	if n < 1 {
		return
	}
	truth := prices[1:]
	for _, spec := range []struct {
		key string
		q   float64
		z   float64
	}{
		{"pinball_loss_q10", 0.10, zLow},
		{"pinball_loss_q50", 0.50, 0},
		{"pinball_loss_q90", 0.90, zHigh},
	} {
		preds := make([]float64, n)
		for t := 0; t < n; t++ {
			preds[t] = prices[t] * math.Exp(f.state.Mu+spec.z*f.state.Sigma)
		}
		loss, err := PinballLoss(truth, preds, spec.q)
		if err == nil {
			metrics[spec.key] = round4(loss)
		}
	}
}

// Predict generates quantile forecasts for each day in 1..horizon.
// Stored state is used when fitted; otherwise drift and volatility are
// derived directly from the supplied recent prices.
func (f *GBMForecaster) Predict(recent []float64, features map[string]float64, horizon int) ([]models.QuantilePrediction, error) {
	if horizon < 1 || horizon > f.cfg.MaxHorizon {
		return nil, fmt.Errorf("%w: must be in [1,%d], got %d", ErrInvalidHorizon, f.cfg.MaxHorizon, horizon)
	}
	if len(recent) == 0 {
		return nil, fmt.Errorf("at least one recent price is required")
	}

	var mu, sigma float64
	if f.fitted {
		mu, sigma = f.state.Mu, f.state.Sigma
	} else {
		mu, sigma = meanStd(logReturns(recent))
		sigma += eps
	}

	last := recent[len(recent)-1]
	out := make([]models.QuantilePrediction, 0, horizon)
	for d := 1; d <= horizon; d++ {
		drift := mu * float64(d)
		vol := sigma * math.Sqrt(float64(d))
		out = append(out, models.QuantilePrediction{
			HorizonDay: d,
			P10:        round4(last * math.Exp(drift+zLow*vol)),
			P50:        round4(last * math.Exp(drift)),
			P90:        round4(last * math.Exp(drift+zHigh*vol)),
		})
	}
	return out, nil
}

// Fitted reports whether Fit or Load has populated the model state.
func (f *GBMForecaster) Fitted() bool { return f.fitted }

// State returns a copy of the current model state.
func (f *GBMForecaster) State() ModelState { return f.state }

// Save persists the model state bundle to path.
func (f *GBMForecaster) Save(path string) error {
	b, err := json.Marshal(f.state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Load restores a state bundle written by Save and marks the model fitted.
func (f *GBMForecaster) Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}
	var st ModelState
	if err := json.Unmarshal(b, &st); err != nil {
		return fmt.Errorf("unmarshal state: %w", err)
	}
	f.state = st
	f.fitted = true
	return nil
}

// PinballLoss computes mean(max(q*e, (q-1)*e)) with e = yTrue - yPred.
// Used for offline evaluation of quantile forecasts.
func PinballLoss(yTrue, yPred []float64, q float64) (float64, error) {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("pinball loss: need equal non-empty series, got %d and %d", len(yTrue), len(yPred))
	}
	sum := 0.0
	for i := range yTrue {
		e := yTrue[i] - yPred[i]
		sum += math.Max(q*e, (q-1)*e)
	}
	return sum / float64(len(yTrue)), nil
}
