package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	domserv "FinCast/internal/domain/service"
	"FinCast/internal/services/features"
	"FinCast/internal/services/forecast"
	applogger "FinCast/pkg/logger"
)

const (
	defaultHorizon  = 1
	recentLookback  = 30
	maxSampleSeries = 3
)

// ForecastOrchestrator owns the active price model and fuses the forecaster,
// the liquidity classifier, the explainer and the trigger into the five
// public operations. The active model is swapped atomically after a
// successful transfer-learning run, so in-flight predictions keep the model
// they started with.
type ForecastOrchestrator struct {
	liquidity domserv.LiquidityClassifier
	trigger   *forecast.ExecutionTrigger
	explainer *forecast.Explainer

	store   drepo.PriceStore     // optional
	window  drepo.PriceWindow    // optional
	pub     drepo.SignalPublisher // optional
	metrics drepo.Metrics
	logger  *applogger.Logger

	active  atomic.Pointer[activeModel]
	learner atomic.Pointer[forecast.TransferLearner]
}

type activeModel struct {
	f domserv.PriceForecaster
}

// NewForecastOrchestrator wires the engine components. store, window and pub
// may be nil when the deployment runs without persistence, a live feed or a
// broker.
func NewForecastOrchestrator(
	forecaster domserv.PriceForecaster,
	liquidity domserv.LiquidityClassifier,
	trigger *forecast.ExecutionTrigger,
	explainer *forecast.Explainer,
	store drepo.PriceStore,
	window drepo.PriceWindow,
	pub drepo.SignalPublisher,
	metrics drepo.Metrics,
	logger *applogger.Logger,
) *ForecastOrchestrator {
	o := &ForecastOrchestrator{
		liquidity: liquidity,
		trigger:   trigger,
		explainer: explainer,
		store:     store,
		window:    window,
		pub:       pub,
		metrics:   metrics,
		logger:    logger,
	}
	o.active.Store(&activeModel{f: forecaster})
	return o
}

func (o *ForecastOrchestrator) model() domserv.PriceForecaster {
	return o.active.Load().f
}

// Forecast runs the quantile forecaster and the liquidity classifier over one
// feature snapshot.
func (o *ForecastOrchestrator) Forecast(ctx context.Context, snap models.FeatureSnapshot) (models.ForecastResponse, error) {
	start := time.Now()
	horizon := snap.Horizon
	if horizon == 0 {
		horizon = defaultHorizon
	}

	recent := o.resolveRecent(ctx, snap)
	preds, err := o.model().Predict(recent, snap.Indicators, horizon)
	if err != nil {
		o.metrics.RecordError("forecast")
		return models.ForecastResponse{}, err
	}
	liq := o.liquidity.Predict(snap.OHLCV, snap.OrderBook)

	resp := models.ForecastResponse{
		Quantiles:         make([]models.QuantileStep, 0, len(preds)),
		LiquidityHighProb: liq.LiquidityHighProb,
		LiquidityLowProb:  liq.LiquidityLowProb,
		PriceUpProb:       liq.PriceUpProb,
		PriceDownProb:     liq.PriceDownProb,
		HorizonDays:       horizon,
	}
	for _, p := range preds {
		resp.Quantiles = append(resp.Quantiles, models.QuantileStep{
			HorizonDay: p.HorizonDay, P10: p.P10, P50: p.P50, P90: p.P90,
		})
	}
	if len(preds) > 0 {
		o.metrics.RecordForecastMid(snap.SecurityID, preds[0].P50)
	}
	o.metrics.RecordLatency("forecast", time.Since(start).Seconds())
	return resp, nil
}

// Explain produces the 1-day confidence interval, per-feature attributions
// and ranked top drivers for a snapshot.
func (o *ForecastOrchestrator) Explain(ctx context.Context, snap models.FeatureSnapshot) (models.ExplainResponse, error) {
	recent := o.resolveRecent(ctx, snap)
	preds, err := o.model().Predict(recent, snap.Indicators, 1)
	if err != nil {
		o.metrics.RecordError("explain")
		return models.ExplainResponse{}, err
	}
	day1 := preds[0]
	feats := o.mergeFeatures(snap, recent)
	res := o.explainer.Explain(day1.P10, day1.P90, 0.80, feats, nil, 5)

	resp := models.ExplainResponse{
		ConfidenceInterval: []float64{res.ConfidenceLow, res.ConfidenceHigh},
		Attribution:        res.Attribution,
		TopDrivers:         make([]models.DriverDetail, 0, len(res.TopDrivers)),
	}
	for _, d := range res.TopDrivers {
		resp.TopDrivers = append(resp.TopDrivers, models.DriverDetail{
			Feature: d.Feature, Label: d.Label, Value: d.Value, Direction: d.Direction,
		})
	}
	return resp, nil
}

// Recommend fuses a 1-day forecast and the liquidity heads through the
// execution trigger, then publishes the decision for downstream consumers.
func (o *ForecastOrchestrator) Recommend(ctx context.Context, snap models.FeatureSnapshot) (models.RecommendResponse, error) {
	start := time.Now()
	recent := o.resolveRecent(ctx, snap)
	preds, err := o.model().Predict(recent, snap.Indicators, 1)
	if err != nil {
		o.metrics.RecordError("recommend")
		return models.RecommendResponse{}, err
	}
	liq := o.liquidity.Predict(snap.OHLCV, snap.OrderBook)
	sig := o.trigger.Evaluate(preds[0], liq, snap.OHLCV.Close)

	if o.pub != nil {
		if err := o.pub.PublishSignal(ctx, snap.SecurityID, sig); err != nil {
			o.metrics.RecordError("publish_signal")
			o.logger.Warn("signal publish failed",
				applogger.String("security_id", snap.SecurityID),
				applogger.Error(err))
		}
	}
	o.metrics.RecordLatency("recommend", time.Since(start).Seconds())

	return models.RecommendResponse{
		Signal:     string(sig.Signal),
		Confidence: sig.Confidence,
		Reason:     sig.Reason,
		Timing:     string(sig.Timing),
		Details:    sig.Details,
	}, nil
}

// Augment fits a fresh augmenter on the request history and generates
// synthetic close series. At most three series are echoed back as samples.
func (o *ForecastOrchestrator) Augment(ctx context.Context, req models.AugmentRequest) (models.AugmentResponse, error) {
	aug := forecast.NewSyntheticAugmenter(forecast.AugmenterConfig{
		Method:     req.Method,
		NSynthetic: req.NSynthetic,
	})
	if _, err := aug.Fit(req.PriceHistory); err != nil {
		o.metrics.RecordError("augment")
		return models.AugmentResponse{}, err
	}
	series, err := aug.Generate(req.NSynthetic)
	if err != nil {
		o.metrics.RecordError("augment")
		return models.AugmentResponse{}, err
	}

	samples := series
	if len(samples) > maxSampleSeries {
		samples = samples[:maxSampleSeries]
	}
	o.logger.Info("synthetic series generated",
		applogger.String("security_id", req.SecurityID),
		applogger.String("method", aug.Method()),
		applogger.Int("n", len(series)))
	return models.AugmentResponse{
		NGenerated:   len(series),
		Method:       aug.Method(),
		SampleSeries: samples,
	}, nil
}

// TransferLearn pre-trains on the source corpus, fine-tunes on the target
// series and atomically promotes the resulting model to active.
func (o *ForecastOrchestrator) TransferLearn(ctx context.Context, req models.TransferLearnRequest) (models.TransferLearnResponse, error) {
	start := time.Now()
	tl := forecast.NewTransferLearner(forecast.DefaultTransferConfig())

	preMetrics, err := tl.PreTrain(req.SourceCorpus)
	if err != nil {
		o.metrics.RecordError("transfer_learn")
		return models.TransferLearnResponse{}, fmt.Errorf("pre-train: %w", err)
	}
	ftMetrics, err := tl.FineTune(req.TargetPrices, nil)
	if err != nil {
		o.metrics.RecordError("transfer_learn")
		return models.TransferLearnResponse{}, fmt.Errorf("fine-tune: %w", err)
	}
	model, err := tl.Model()
	if err != nil {
		return models.TransferLearnResponse{}, err
	}

	o.active.Store(&activeModel{f: model})
	o.learner.Store(tl)
	o.metrics.RecordModelSwap()

	merged := make(map[string]float64, len(preMetrics)+len(ftMetrics))
	for k, v := range preMetrics {
		merged[k] = v
	}
	for k, v := range ftMetrics {
		merged[k] = v
	}

	status := tl.Status()
	o.logger.Info("active model swapped",
		applogger.String("target", req.TargetSecurityID),
		applogger.Int("sources", len(status.PretrainSources)),
		applogger.Duration("took", time.Since(start)))
	return models.TransferLearnResponse{
		Pretrained:      status.Pretrained,
		Finetuned:       status.Finetuned,
		PretrainSources: len(status.PretrainSources),
		FrozenLayers:    status.FrozenLayers,
		Metrics:         merged,
	}, nil
}

// Status reports the training lifecycle of the active model.
func (o *ForecastOrchestrator) Status() models.StatusResponse {
	if tl := o.learner.Load(); tl != nil {
		st := tl.Status()
		return models.StatusResponse{
			Fitted:          st.Fitted,
			Pretrained:      st.Pretrained,
			Finetuned:       st.Finetuned,
			PretrainSources: st.PretrainSources,
			FrozenLayers:    st.FrozenLayers,
		}
	}
	return models.StatusResponse{
		Fitted:          o.model().Fitted(),
		PretrainSources: []string{},
	}
}

// resolveRecent picks the freshest usable price series for prediction:
// the request history, then the live window, then the persisted candles,
// and finally a flat series around the snapshot close.
func (o *ForecastOrchestrator) resolveRecent(ctx context.Context, snap models.FeatureSnapshot) []float64 {
	if len(snap.History) >= 2 {
		return snap.History
	}
	if o.window != nil {
		if w := o.window.Recent(snap.SecurityID, recentLookback); len(w) >= 2 {
			return w
		}
	}
	if o.store != nil {
		candles, err := o.store.GetLatestNCandles(ctx, snap.SecurityID, recentLookback)
		if err != nil {
			o.metrics.RecordError("price_store")
			o.logger.Warn("candle lookup failed",
				applogger.String("security_id", snap.SecurityID),
				applogger.Error(err))
		} else if closes := features.ClosePrices(candles); len(closes) >= 2 {
			return closes
		}
	}
	return []float64{snap.OHLCV.Close, snap.OHLCV.Close}
}

// mergeFeatures flattens the snapshot into the attribution feature map,
// deriving news_sentiment from headline count and RSI from history when the
// indicators do not carry one.
func (o *ForecastOrchestrator) mergeFeatures(snap models.FeatureSnapshot, recent []float64) map[string]float64 {
	feats := map[string]float64{
		"open":   snap.OHLCV.Open,
		"high":   snap.OHLCV.High,
		"low":    snap.OHLCV.Low,
		"close":  snap.OHLCV.Close,
		"volume": snap.OHLCV.Volume,
	}
	if snap.OrderBook != nil {
		feats["spread"] = snap.OrderBook.Spread
		feats["depth"] = snap.OrderBook.Depth
		feats["imbalance"] = snap.OrderBook.Imbalance
	}
	for k, v := range snap.Indicators {
		feats[k] = v
	}
	if len(snap.News) > 0 {
		if _, ok := feats["news_sentiment"]; !ok {
			feats["news_sentiment"] = float64(len(snap.News))
		}
	}
	if _, ok := feats["rsi"]; !ok && len(recent) >= 15 {
		feats["rsi"] = features.RSI(recent, 14)
	}
	if _, ok := feats["realized_vol"]; !ok {
		rets := features.LogReturns(recent)
		if v := features.RealizedVolatility(rets, len(rets)); v > 0 {
			feats["realized_vol"] = v
		}
	}
	return feats
}
