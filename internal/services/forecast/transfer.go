package forecast

import (
	"fmt"
	"sort"

	"FinCast/internal/domain/models"
)

// TransferConfig controls the pretrain/fine-tune workflow.
type TransferConfig struct {
	PretrainEpochs int
	FinetuneEpochs int
	Retention      float64 // share of the pre-trained state kept when fine-tuning
	FrozenLayers   int     // reported metadata; no enforcement in the reference model
}

// DefaultTransferConfig returns the production defaults.
func DefaultTransferConfig() TransferConfig {
	return TransferConfig{PretrainEpochs: 30, FinetuneEpochs: 15, Retention: 0.3, FrozenLayers: 2}
}

func (c *TransferConfig) setDefaults() {
	def := DefaultTransferConfig()
	if c.PretrainEpochs <= 0 {
		c.PretrainEpochs = def.PretrainEpochs
	}
	if c.FinetuneEpochs <= 0 {
		c.FinetuneEpochs = def.FinetuneEpochs
	}
	if c.Retention <= 0 || c.Retention >= 1 {
		c.Retention = def.Retention
	}
	if c.FrozenLayers <= 0 {
		c.FrozenLayers = def.FrozenLayers
	}
}

// TransferLearner wraps a quantile forecaster with a two-phase workflow:
// pre-train on a cross-security corpus, then fine-tune on the target
// while retaining part of the pre-trained state. Useful for tickers
// with short or sparse price histories.
type TransferLearner struct {
	cfg        TransferConfig
	base       *GBMForecaster
	pretrained bool
	finetuned  bool
	sources    []string
}

// NewTransferLearner creates a learner with no trained model yet.
func NewTransferLearner(cfg TransferConfig) *TransferLearner {
	cfg.setDefaults()
	return &TransferLearner{cfg: cfg}
}

// PreTrain fits a fresh forecaster on the concatenation of all corpus
// series and records the contributing security ids.
func (t *TransferLearner) PreTrain(corpus map[string][]float64) (models.TrainMetrics, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("pre-train: empty corpus")
	}

	// Deterministic concatenation order.
	keys := make([]string, 0, len(corpus))
	for k := range corpus {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var all []float64
	for _, k := range keys {
		all = append(all, corpus[k]...)
	}

	base := NewGBMForecaster(ForecasterConfig{Epochs: t.cfg.PretrainEpochs})
	metrics, err := base.Fit(all, nil)
	if err != nil {
		return nil, fmt.Errorf("pre-train: %w", err)
	}

	t.base = base
	t.pretrained = true
	t.sources = keys
	metrics["pretrain_sources"] = float64(len(corpus))
	return metrics, nil
}

// FineTune re-fits the pre-trained forecaster on the target series and
// blends the resulting state with the pre-trained one, keeping the
// configured retention share of the prior drift and volatility.
func (t *TransferLearner) FineTune(prices []float64, features [][]float64) (models.TrainMetrics, error) {
	if !t.pretrained || t.base == nil {
		return nil, fmt.Errorf("%w: pre-train before fine-tune", ErrNotFitted)
	}

	oldMu := t.base.state.Mu
	oldSigma := t.base.state.Sigma

	metrics, err := t.base.Fit(prices, features)
	if err != nil {
		return nil, fmt.Errorf("fine-tune: %w", err)
	}

	a := t.cfg.Retention
	t.base.state.Mu = a*oldMu + (1-a)*t.base.state.Mu
	t.base.state.Sigma = a*oldSigma + (1-a)*t.base.state.Sigma

	t.finetuned = true
	metrics["frozen_layers"] = float64(t.cfg.FrozenLayers)
	return metrics, nil
}

// Model returns the underlying forecaster, usable after PreTrain.
func (t *TransferLearner) Model() (*GBMForecaster, error) {
	if t.base == nil {
		return nil, fmt.Errorf("%w: no model available, call PreTrain first", ErrNotFitted)
	}
	return t.base, nil
}

// Status reports the training lifecycle snapshot.
func (t *TransferLearner) Status() models.ModelStatus {
	return models.ModelStatus{
		Fitted:          t.base != nil && t.base.Fitted(),
		Pretrained:      t.pretrained,
		Finetuned:       t.finetuned,
		PretrainSources: append([]string(nil), t.sources...),
		FrozenLayers:    t.cfg.FrozenLayers,
	}
}
