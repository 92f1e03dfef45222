package forecast

import (
	"math"
	"sort"

	"FinCast/internal/domain/models"
)

// Display names for well-known features.
var featureLabels = map[string]string{
	"close":          "Closing price",
	"open":           "Opening price",
	"high":           "Daily high",
	"low":            "Daily low",
	"volume":         "Trading volume",
	"spread":         "Bid-ask spread",
	"depth":          "Order-book depth",
	"imbalance":      "Order imbalance",
	"rsi":            "RSI (14)",
	"macd":           "MACD",
	"news_sentiment": "News sentiment score",
	"realized_vol":   "Realized volatility",
}

// Per-feature weights for the heuristic attribution fallback.
var heuristicWeights = map[string]float64{
	"volume":         0.30,
	"close":          0.20,
	"spread":         0.15,
	"depth":          0.10,
	"rsi":            0.10,
	"open":           0.05,
	"high":           0.03,
	"low":            0.03,
	"imbalance":      0.02,
	"news_sentiment": 0.02,
}

const defaultHeuristicWeight = 0.01

// PredictFunc scores a feature map with a scalar forecast.
type PredictFunc func(map[string]float64) float64

// Explainer computes per-feature attributions and confidence intervals
// for a forecast. With a scoring function it uses feature-ablation
// attribution, exact for any additive predictor; without one it falls
// back to a fixed weight table.
type Explainer struct {
	baseline map[string]float64
}

// NewExplainer creates an explainer with the given baseline feature
// values. Features missing from the baseline default to zero.
func NewExplainer(baseline map[string]float64) *Explainer {
	if baseline == nil {
		baseline = map[string]float64{}
	}
	return &Explainer{baseline: baseline}
}

// Attribution maps each feature to its signed contribution.
func (e *Explainer) Attribution(features map[string]float64, predict PredictFunc) map[string]float64 {
	if predict == nil {
		return e.heuristicAttribution(features)
	}

	full := predict(features)
	out := make(map[string]float64, len(features))
	for key := range features {
		ablated := make(map[string]float64, len(features))
		for k, v := range features {
			ablated[k] = v
		}
		ablated[key] = e.baseline[key]
		out[key] = round6(full - predict(ablated))
	}
	return out
}

func (e *Explainer) heuristicAttribution(features map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(features))
	for key, val := range features {
		w, ok := heuristicWeights[key]
		if !ok {
			w = defaultHeuristicWeight
		}
		out[key] = round6(w * (val - e.baseline[key]))
	}
	return out
}

// z-scores per confidence level, keyed by the level rounded to 2 decimals.
var zByConfidence = map[float64]float64{
	0.50: 0.6745,
	0.90: 1.6449,
	0.95: 1.9600,
	0.99: 2.5758,
}

// ConfidenceInterval derives a symmetric interval from the p10/p90
// quantiles. The 80% interval is [p10, p90] itself; other levels rescale
// the half-width by the ratio of normal z-scores, so the interval widens
// strictly with the confidence level.
func (e *Explainer) ConfidenceInterval(p10, p90, confidence float64) (float64, float64) {
	if math.Abs(confidence-0.80) < 1e-6 {
		return round4(p10), round4(p90)
	}

	mid := (p10 + p90) / 2
	halfWidth := (p90 - p10) / 2 // about 1.28 sigma at 80%

	zTarget, ok := zByConfidence[round2(confidence)]
	if !ok {
		zTarget = zHigh
	}
	scaled := halfWidth * (zTarget / zHigh)
	return round4(mid - scaled), round4(mid + scaled)
}

// TopDrivers ranks attributions by absolute value descending and returns
// the top k with display labels and sign-derived directions. Ties break
// on the feature key so the ordering is deterministic.
func (e *Explainer) TopDrivers(attribution map[string]float64, topK int) []models.Driver {
	keys := make([]string, 0, len(attribution))
	for k := range attribution {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ai, aj := math.Abs(attribution[keys[i]]), math.Abs(attribution[keys[j]])
		if ai != aj {
			return ai > aj
		}
		return keys[i] < keys[j]
	})

	if topK > 0 && topK < len(keys) {
		keys = keys[:topK]
	}

	out := make([]models.Driver, 0, len(keys))
	for _, k := range keys {
		v := attribution[k]
		label, ok := featureLabels[k]
		if !ok {
			label = k
		}
		dir := "negative"
		if v > 0 {
			dir = "positive"
		}
		out = append(out, models.Driver{Feature: k, Label: label, Value: v, Direction: dir})
	}
	return out
}

// Explain bundles the confidence interval, per-feature attributions and the
// ranked top drivers for one prediction into a single result.
func (e *Explainer) Explain(p10, p90, confidence float64, features map[string]float64, predict PredictFunc, topK int) models.ExplainResult {
	lo, hi := e.ConfidenceInterval(p10, p90, confidence)
	attr := e.Attribution(features, predict)
	return models.ExplainResult{
		ConfidenceLow:  lo,
		ConfidenceHigh: hi,
		Attribution:    attr,
		TopDrivers:     e.TopDrivers(attr, topK),
	}
}
