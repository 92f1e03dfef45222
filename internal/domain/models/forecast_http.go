package models

// Requests and responses for the forecasting HTTP endpoints. Defined in
// domain for consistency and reuse.

type SnapshotRequest struct {
	SecurityID string             `json:"security_id" validate:"required"`
	Date       string             `json:"date" validate:"required"`
	OHLCV      map[string]float64 `json:"ohlcv" validate:"required"`
	OrderBook  map[string]float64 `json:"order_book,omitempty"`
	Sector     string             `json:"sector,omitempty"`
	News       []string           `json:"news,omitempty"`
	Indicators map[string]float64 `json:"indicators,omitempty"`
	Horizon    int                `json:"horizon" default:"1" validate:"gte=1,lte=5"`
	History    []float64          `json:"history,omitempty"`
}

// Snapshot converts the wire request into a domain FeatureSnapshot.
func (r *SnapshotRequest) Snapshot() FeatureSnapshot {
	snap := FeatureSnapshot{
		SecurityID: r.SecurityID,
		Date:       r.Date,
		OHLCV: OHLCV{
			Open:   r.OHLCV["open"],
			High:   r.OHLCV["high"],
			Low:    r.OHLCV["low"],
			Close:  r.OHLCV["close"],
			Volume: r.OHLCV["volume"],
		},
		Sector:     r.Sector,
		News:       r.News,
		Indicators: r.Indicators,
		Horizon:    r.Horizon,
		History:    r.History,
	}
	if r.OrderBook != nil {
		snap.OrderBook = &OrderBook{
			Spread:    r.OrderBook["spread"],
			Depth:     r.OrderBook["depth"],
			Imbalance: r.OrderBook["imbalance"],
		}
	}
	return snap
}

type AugmentRequest struct {
	SecurityID   string    `json:"security_id" validate:"required"`
	PriceHistory []float64 `json:"price_history" validate:"required,min=1"`
	NSynthetic   int       `json:"n_synthetic" default:"5" validate:"gte=1,lte=50"`
	Method       string    `json:"method" default:"vae" validate:"oneof=vae gan"`
}

type TransferLearnRequest struct {
	TargetSecurityID string               `json:"target_security_id" validate:"required"`
	TargetPrices     []float64            `json:"target_prices" validate:"required,min=1"`
	SourceCorpus     map[string][]float64 `json:"source_corpus" validate:"required,min=1"`
}

type QuantileStep struct {
	HorizonDay int     `json:"horizon_day"`
	P10        float64 `json:"p10"`
	P50        float64 `json:"p50"`
	P90        float64 `json:"p90"`
}

type ForecastResponse struct {
	Quantiles         []QuantileStep `json:"quantiles"`
	LiquidityHighProb float64        `json:"liquidity_high_prob"`
	LiquidityLowProb  float64        `json:"liquidity_low_prob"`
	PriceUpProb       float64        `json:"price_up_prob"`
	PriceDownProb     float64        `json:"price_down_prob"`
	HorizonDays       int            `json:"horizon_days"`
}

type DriverDetail struct {
	Feature   string  `json:"feature"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Direction string  `json:"direction"`
}

type ExplainResponse struct {
	ConfidenceInterval []float64          `json:"confidence_interval"`
	Attribution        map[string]float64 `json:"attribution"`
	TopDrivers         []DriverDetail     `json:"top_drivers"`
}

type RecommendResponse struct {
	Signal     string             `json:"signal"`
	Confidence float64            `json:"confidence"`
	Reason     string             `json:"reason"`
	Timing     string             `json:"timing"`
	Details    map[string]float64 `json:"details"`
}

type AugmentResponse struct {
	NGenerated   int         `json:"n_generated"`
	Method       string      `json:"method"`
	SampleSeries [][]float64 `json:"sample_series"`
}

type TransferLearnResponse struct {
	Pretrained      bool               `json:"pretrained"`
	Finetuned       bool               `json:"finetuned"`
	PretrainSources int                `json:"pretrain_sources"`
	FrozenLayers    int                `json:"frozen_layers"`
	Metrics         map[string]float64 `json:"metrics"`
}

type StatusResponse struct {
	Fitted          bool     `json:"fitted"`
	Pretrained      bool     `json:"pretrained"`
	Finetuned       bool     `json:"finetuned"`
	PretrainSources []string `json:"pretrain_sources"`
	FrozenLayers    int      `json:"frozen_layers"`
}
