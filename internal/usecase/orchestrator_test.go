package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/internal/services/forecast"
	applogger "FinCast/pkg/logger"
)

type fakeMetrics struct {
	errorsByKind map[string]int
	swaps        int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errorsByKind: make(map[string]int)}
}

func (m *fakeMetrics) RecordRequest(string)                {}
func (m *fakeMetrics) RecordError(kind string)             { m.errorsByKind[kind]++ }
func (m *fakeMetrics) RecordLatency(string, float64)       {}
func (m *fakeMetrics) RecordModelSwap()                    { m.swaps++ }
func (m *fakeMetrics) RecordForecastMid(string, float64)   {}
func (m *fakeMetrics) RecordQuote(string, float64)         {}

type fakePublisher struct {
	published []models.ExecutionSignal
	fail      bool
}

func (p *fakePublisher) PublishSignal(_ context.Context, _ string, sig models.ExecutionSignal) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.published = append(p.published, sig)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeWindow struct {
	prices []float64
}

func (w *fakeWindow) Recent(string, int) []float64 { return w.prices }

type fakeStore struct {
	candles []models.Candle
	err     error
}

func (s *fakeStore) GetDailyCandles(context.Context, string, time.Time, time.Time) ([]models.Candle, error) {
	return s.candles, s.err
}

func (s *fakeStore) GetLatestNCandles(context.Context, string, int) ([]models.Candle, error) {
	return s.candles, s.err
}

func (s *fakeStore) Health(context.Context) error { return nil }
func (s *fakeStore) Close() error                 { return nil }

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newOrchestrator(t *testing.T, metrics *fakeMetrics, pub *fakePublisher, window *fakeWindow, store *fakeStore) *ForecastOrchestrator {
	t.Helper()
	o := NewForecastOrchestrator(
		forecast.NewGBMForecaster(forecast.DefaultForecasterConfig()),
		forecast.NewStatLiquidityModel(forecast.DefaultLiquidityConfig()),
		forecast.NewExecutionTrigger(forecast.DefaultTriggerConfig()),
		forecast.NewExplainer(nil),
		nil, nil, nil,
		metrics,
		testLogger(t),
	)
	if window != nil {
		o.window = window
	}
	if store != nil {
		o.store = store
	}
	if pub != nil {
		o.pub = pub
	}
	return o
}

func history(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func snapshot(horizon int, hist []float64) models.FeatureSnapshot {
	return models.FeatureSnapshot{
		SecurityID: "BIAT",
		Date:       "2025-06-02",
		OHLCV:      models.OHLCV{Open: 100, High: 103, Low: 99, Close: 102, Volume: 9000},
		OrderBook:  &models.OrderBook{Spread: 0.01, Depth: 50000, Imbalance: 0.2},
		Horizon:    horizon,
		History:    hist,
	}
}

func TestForecastDefaultHorizon(t *testing.T) {
	o := newOrchestrator(t, newFakeMetrics(), nil, nil, nil)
	resp, err := o.Forecast(context.Background(), snapshot(0, history(40, 100, 0.5)))
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if resp.HorizonDays != 1 || len(resp.Quantiles) != 1 {
		t.Fatalf("horizon = %d quantiles = %d, want 1 and 1", resp.HorizonDays, len(resp.Quantiles))
	}
}

func TestForecastQuantilesPerDay(t *testing.T) {
	o := newOrchestrator(t, newFakeMetrics(), nil, nil, nil)
	resp, err := o.Forecast(context.Background(), snapshot(3, history(40, 100, 0.5)))
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(resp.Quantiles) != 3 {
		t.Fatalf("quantiles = %d, want 3", len(resp.Quantiles))
	}
	for i, q := range resp.Quantiles {
		if q.HorizonDay != i+1 {
			t.Fatalf("quantile %d horizon_day = %d", i, q.HorizonDay)
		}
		if !(q.P10 <= q.P50 && q.P50 <= q.P90) {
			t.Fatalf("day %d quantiles not ordered: %+v", q.HorizonDay, q)
		}
	}
	dirSum := resp.PriceUpProb + resp.PriceDownProb
	if dirSum < 0 || dirSum > 1.01 {
		t.Fatalf("direction mass out of range: %f", dirSum)
	}
}

func TestForecastInvalidHorizon(t *testing.T) {
	o := newOrchestrator(t, newFakeMetrics(), nil, nil, nil)
	_, err := o.Forecast(context.Background(), snapshot(6, history(40, 100, 0.5)))
	if !errors.Is(err, forecast.ErrInvalidHorizon) {
		t.Fatalf("err = %v, want ErrInvalidHorizon", err)
	}
}

func TestForecastFallsBackToLiveWindow(t *testing.T) {
	window := &fakeWindow{prices: history(30, 50, 0.25)}
	o := newOrchestrator(t, newFakeMetrics(), nil, window, nil)
	resp, err := o.Forecast(context.Background(), snapshot(1, nil))
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	// the window trend is positive, so the median sits near its last price
	if resp.Quantiles[0].P50 < 50 {
		t.Fatalf("p50 = %f, expected to derive from window prices", resp.Quantiles[0].P50)
	}
}

func TestForecastStoreErrorFallsBackFlat(t *testing.T) {
	metrics := newFakeMetrics()
	store := &fakeStore{err: errors.New("clickhouse unreachable")}
	o := newOrchestrator(t, metrics, nil, nil, store)
	resp, err := o.Forecast(context.Background(), snapshot(1, nil))
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if metrics.errorsByKind["price_store"] != 1 {
		t.Fatalf("price_store errors = %d, want 1", metrics.errorsByKind["price_store"])
	}
	// flat fallback centers the forecast on the snapshot close
	if math.Abs(resp.Quantiles[0].P50-102) > 1 {
		t.Fatalf("p50 = %f, want near snapshot close 102", resp.Quantiles[0].P50)
	}
}

func TestRecommendPublishesSignal(t *testing.T) {
	pub := &fakePublisher{}
	o := newOrchestrator(t, newFakeMetrics(), pub, nil, nil)
	resp, err := o.Recommend(context.Background(), snapshot(1, history(40, 100, 0.5)))
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	valid := map[string]bool{"enter": true, "exit": true, "hold": true, "defer": true}
	if !valid[resp.Signal] {
		t.Fatalf("signal = %q", resp.Signal)
	}
	if len(pub.published) != 1 {
		t.Fatalf("published = %d, want 1", len(pub.published))
	}
	for _, key := range []string{"upside_pct", "spread_frac_pct", "liq_high_prob", "price_up_prob", "price_down_prob"} {
		if _, ok := resp.Details[key]; !ok {
			t.Fatalf("details missing %q", key)
		}
	}
}

func TestRecommendSurvivesPublisherFailure(t *testing.T) {
	metrics := newFakeMetrics()
	pub := &fakePublisher{fail: true}
	o := newOrchestrator(t, metrics, pub, nil, nil)
	_, err := o.Recommend(context.Background(), snapshot(1, history(40, 100, 0.5)))
	if err != nil {
		t.Fatalf("Recommend should not fail on publish error: %v", err)
	}
	if metrics.errorsByKind["publish_signal"] != 1 {
		t.Fatalf("publish_signal errors = %d, want 1", metrics.errorsByKind["publish_signal"])
	}
}

func TestExplainShape(t *testing.T) {
	o := newOrchestrator(t, newFakeMetrics(), nil, nil, nil)
	snap := snapshot(1, history(40, 100, 0.5))
	snap.News = []string{"earnings beat", "dividend raised"}
	resp, err := o.Explain(context.Background(), snap)
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if len(resp.ConfidenceInterval) != 2 {
		t.Fatalf("confidence_interval len = %d", len(resp.ConfidenceInterval))
	}
	if resp.ConfidenceInterval[0] > resp.ConfidenceInterval[1] {
		t.Fatalf("interval inverted: %v", resp.ConfidenceInterval)
	}
	if len(resp.Attribution) == 0 {
		t.Fatal("empty attribution")
	}
	if _, ok := resp.Attribution["news_sentiment"]; !ok {
		t.Fatal("news_sentiment not derived from headlines")
	}
	if _, ok := resp.Attribution["rsi"]; !ok {
		t.Fatal("rsi not derived from history")
	}
	if v, ok := resp.Attribution["realized_vol"]; !ok || v == 0 {
		t.Fatalf("realized_vol not derived from history: %v", resp.Attribution)
	}
	if len(resp.TopDrivers) > 5 {
		t.Fatalf("top drivers = %d, want <= 5", len(resp.TopDrivers))
	}
}

func TestAugmentSampleCap(t *testing.T) {
	o := newOrchestrator(t, newFakeMetrics(), nil, nil, nil)
	resp, err := o.Augment(context.Background(), models.AugmentRequest{
		SecurityID:   "BIAT",
		PriceHistory: history(99, 10, 0.1),
		NSynthetic:   5,
		Method:       "vae",
	})
	if err != nil {
		t.Fatalf("Augment: %v", err)
	}
	if resp.NGenerated != 5 {
		t.Fatalf("n_generated = %d, want 5", resp.NGenerated)
	}
	if len(resp.SampleSeries) != 3 {
		t.Fatalf("samples = %d, want cap 3", len(resp.SampleSeries))
	}
	if resp.Method != "vae" {
		t.Fatalf("method = %q", resp.Method)
	}
}

func TestTransferLearnSwapsActiveModel(t *testing.T) {
	metrics := newFakeMetrics()
	o := newOrchestrator(t, metrics, nil, nil, nil)
	before := o.model()

	corpus := map[string][]float64{
		"BH":   history(60, 20, 0.1),
		"SFBT": history(60, 8, 0.05),
	}
	resp, err := o.TransferLearn(context.Background(), models.TransferLearnRequest{
		TargetSecurityID: "BIAT",
		TargetPrices:     history(60, 100, 0.2),
		SourceCorpus:     corpus,
	})
	if err != nil {
		t.Fatalf("TransferLearn: %v", err)
	}
	if o.model() == before {
		t.Fatal("active model was not swapped")
	}
	if metrics.swaps != 1 {
		t.Fatalf("swaps = %d, want 1", metrics.swaps)
	}
	if !resp.Pretrained || !resp.Finetuned {
		t.Fatalf("lifecycle flags = %+v", resp)
	}
	if resp.PretrainSources != 2 {
		t.Fatalf("pretrain_sources = %d, want 2", resp.PretrainSources)
	}
	if resp.FrozenLayers != 2 {
		t.Fatalf("frozen_layers = %d, want 2", resp.FrozenLayers)
	}
	if _, ok := resp.Metrics["pinball_loss_q50"]; !ok {
		t.Fatal("metrics missing pinball_loss_q50")
	}

	status := o.Status()
	if !status.Pretrained || !status.Finetuned || len(status.PretrainSources) != 2 {
		t.Fatalf("status = %+v", status)
	}
}

func TestStatusBeforeTraining(t *testing.T) {
	o := newOrchestrator(t, newFakeMetrics(), nil, nil, nil)
	status := o.Status()
	if status.Pretrained || status.Finetuned {
		t.Fatalf("untrained status = %+v", status)
	}
	if status.PretrainSources == nil {
		t.Fatal("pretrain_sources should be an empty list, not nil")
	}
}
