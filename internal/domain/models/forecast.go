package models

import "time"

// OHLCV is a single daily bar.
type OHLCV struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// OrderBook holds the micro-liquidity features for one session.
type OrderBook struct {
	Spread    float64
	Depth     float64
	Imbalance float64
}

// FeatureSnapshot is the point-in-time input for forecast, explain and
// recommend. Optional fields are nil/empty when absent.
type FeatureSnapshot struct {
	SecurityID string
	Date       string
	OHLCV      OHLCV
	OrderBook  *OrderBook
	Sector     string
	News       []string
	Indicators map[string]float64
	Horizon    int
	History    []float64
}

// QuantilePrediction is the p10/p50/p90 price forecast for one horizon day.
type QuantilePrediction struct {
	HorizonDay int
	P10        float64
	P50        float64
	P90        float64
}

// LiquidityPrediction is the dual-head classifier output. The direction
// triple sums to 1 and the liquidity pair sums to 1.
type LiquidityPrediction struct {
	PriceUpProb       float64
	PriceFlatProb     float64
	PriceDownProb     float64
	LiquidityHighProb float64
	LiquidityLowProb  float64
}

// SignalKind is the closed set of trade decisions.
type SignalKind string

const (
	SignalEnter SignalKind = "enter"
	SignalExit  SignalKind = "exit"
	SignalHold  SignalKind = "hold"
	SignalDefer SignalKind = "defer"
)

// TimingKind is the closed set of execution-timing recommendations.
type TimingKind string

const (
	TimingIntraday  TimingKind = "intraday"
	TimingNextOpen  TimingKind = "next_open"
	TimingNextClose TimingKind = "next_close"
	TimingWait1Day  TimingKind = "wait_1_day"
)

// ExecutionSignal is the fused trade decision with timing advice.
type ExecutionSignal struct {
	Signal     SignalKind
	Confidence float64
	Reason     string
	Timing     TimingKind
	Details    map[string]float64
}

// Driver is one ranked attribution entry with a display label.
type Driver struct {
	Feature   string
	Label     string
	Value     float64
	Direction string // "positive" | "negative"
}

// ExplainResult carries the confidence interval, per-feature attributions
// and the ranked top drivers for a forecast.
type ExplainResult struct {
	ConfidenceLow  float64
	ConfidenceHigh float64
	Attribution    map[string]float64
	TopDrivers     []Driver
}

// TrainMetrics are the metrics reported by a fit/pre-train/fine-tune run.
type TrainMetrics map[string]float64

// ModelStatus is a snapshot of the training lifecycle exposed to callers.
type ModelStatus struct {
	Fitted          bool
	Pretrained      bool
	Finetuned       bool
	PretrainSources []string
	FrozenLayers    int
}

// Candle represents an OHLCV record loaded from the market-data store.
type Candle struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Quote is a single live trade print from the market stream.
type Quote struct {
	Symbol    string  `json:"s"`
	Price     float64 `json:"p"`
	Volume    float64 `json:"v"`
	Timestamp int64   `json:"t"` // unix ms
}

// SyntheticOHLCV is one generated bar set derived from a synthetic close
// series. Slices are parallel and share the same length.
type SyntheticOHLCV struct {
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}
