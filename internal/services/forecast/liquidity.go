package forecast

import (
	"math"

	"FinCast/internal/domain/models"
)

// LiquidityConfig weights the order-book features of the liquidity head.
type LiquidityConfig struct {
	SpreadWeight    float64
	DepthWeight     float64
	ImbalanceWeight float64
	FlatBand        float64 // probability mass reserved for the flat class
}

// DefaultLiquidityConfig returns the production defaults.
func DefaultLiquidityConfig() LiquidityConfig {
	return LiquidityConfig{SpreadWeight: 0.4, DepthWeight: 0.3, ImbalanceWeight: 0.3, FlatBand: 0.1}
}

func (c *LiquidityConfig) setDefaults() {
	if c.SpreadWeight == 0 && c.DepthWeight == 0 && c.ImbalanceWeight == 0 {
		def := DefaultLiquidityConfig()
		c.SpreadWeight = def.SpreadWeight
		c.DepthWeight = def.DepthWeight
		c.ImbalanceWeight = def.ImbalanceWeight
	}
	if c.FlatBand == 0 {
		c.FlatBand = DefaultLiquidityConfig().FlatBand
	}
}

type liquidityStats struct {
	meanSpread float64
	stdSpread  float64
	meanDepth  float64
	stdDepth   float64
	meanReturn float64
	stdReturn  float64
}

// StatLiquidityModel is the dual-head classifier: a direction head over
// up/flat/down and a liquidity head over high/low. It stands in for a
// trained two-headed network behind the LiquidityClassifier contract.
type StatLiquidityModel struct {
	cfg    LiquidityConfig
	stats  liquidityStats
	fitted bool
}

// NewStatLiquidityModel creates an unfitted model. Zero config fields
// fall back to defaults.
func NewStatLiquidityModel(cfg LiquidityConfig) *StatLiquidityModel {
	cfg.setDefaults()
	return &StatLiquidityModel{cfg: cfg}
}

// Fit computes standardization statistics from aligned price and
// order-book series. Short input is accepted; missing data simply
// leaves the corresponding statistic at zero.
func (m *StatLiquidityModel) Fit(prices []float64, books []models.OrderBook) (models.TrainMetrics, error) {
	spreads := make([]float64, 0, len(books))
	depths := make([]float64, 0, len(books))
	for _, b := range books {
		spreads = append(spreads, b.Spread)
		depths = append(depths, b.Depth)
	}

	var st liquidityStats
	st.meanSpread, st.stdSpread = meanStd(spreads)
	st.meanDepth, st.stdDepth = meanStd(depths)
	st.meanReturn, st.stdReturn = meanStd(logReturns(prices))
	st.stdSpread += eps
	st.stdDepth += eps
	st.stdReturn += eps

	m.stats = st
	m.fitted = true
	return models.TrainMetrics{
		"samples":     float64(len(books)),
		"mean_return": round6(st.meanReturn),
		"std_return":  round6(st.stdReturn),
	}, nil
}

// Predict outputs direction and liquidity-regime probabilities for the
// current bar. A nil order book falls back to zero-valued features.
// Never fails: logistic inputs are clipped to a safe range.
func (m *StatLiquidityModel) Predict(ohlcv models.OHLCV, book *models.OrderBook) models.LiquidityPrediction {
	var spread, depth, imbalance float64
	if book != nil {
		spread, depth, imbalance = book.Spread, book.Depth, book.Imbalance
	}

	// Direction head: squash the intraday return, carve out a flat band
	// and renormalize the triple.
	ret := (ohlcv.Close - ohlcv.Open) / (ohlcv.Open + eps)
	up := sigmoid(ret * 10)
	down := 1.0 - up
	priceUp := math.Max(up-m.cfg.FlatBand/2, 0)
	priceDown := math.Max(down-m.cfg.FlatBand/2, 0)
	priceFlat := math.Max(1.0-priceUp-priceDown, 0)
	total := priceUp + priceDown + priceFlat + eps
	priceUp /= total
	priceDown /= total
	priceFlat /= total

	// Liquidity head: standardize spread and depth against fitted stats
	// (unfitted falls back to mean 0, std 1) and combine with imbalance.
	meanSpread, stdSpread := 0.0, 1.0
	meanDepth, stdDepth := 0.0, 1.0
	if m.fitted {
		meanSpread, stdSpread = m.stats.meanSpread, m.stats.stdSpread
		meanDepth, stdDepth = m.stats.meanDepth, m.stats.stdDepth
	}
	normSpread := (spread - meanSpread) / stdSpread
	normDepth := (depth - meanDepth) / stdDepth

	score := m.cfg.SpreadWeight*(-normSpread) +
		m.cfg.DepthWeight*normDepth +
		m.cfg.ImbalanceWeight*imbalance
	liqHigh := sigmoid(score)

	return models.LiquidityPrediction{
		PriceUpProb:       round4(priceUp),
		PriceFlatProb:     round4(priceFlat),
		PriceDownProb:     round4(priceDown),
		LiquidityHighProb: round4(liqHigh),
		LiquidityLowProb:  round4(1 - liqHigh),
	}
}
