package forecast

import (
	"errors"
	"math"
	"testing"
)

func corpus3() map[string][]float64 {
	return map[string][]float64{
		"BIAT": risingSeries(60, 100, 0.5),
		"BH":   risingSeries(60, 20, 0.2),
		"SFBT": risingSeries(60, 30, 0.1),
	}
}

func TestFineTuneBeforePreTrain(t *testing.T) {
	tl := NewTransferLearner(TransferConfig{})
	if _, err := tl.FineTune(risingSeries(60, 45, 0.1), nil); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
}

func TestModelBeforeAnyTraining(t *testing.T) {
	tl := NewTransferLearner(TransferConfig{})
	if _, err := tl.Model(); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
}

func TestPreTrainRecordsSources(t *testing.T) {
	tl := NewTransferLearner(TransferConfig{})
	metrics, err := tl.PreTrain(corpus3())
	if err != nil {
		t.Fatalf("pre-train: %v", err)
	}
	if metrics["pretrain_sources"] != 3 {
		t.Fatalf("expected 3 pretrain sources, got %v", metrics["pretrain_sources"])
	}
	st := tl.Status()
	if !st.Pretrained || st.Finetuned {
		t.Fatalf("unexpected status %+v", st)
	}
	if len(st.PretrainSources) != 3 {
		t.Fatalf("expected 3 source ids, got %v", st.PretrainSources)
	}
}

func TestFineTuneBlendsState(t *testing.T) {
	target := risingSeries(60, 45, 0.1)

	tl := NewTransferLearner(TransferConfig{})
	if _, err := tl.PreTrain(corpus3()); err != nil {
		t.Fatalf("pre-train: %v", err)
	}
	pre, err := tl.Model()
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	preMu, preSigma := pre.State().Mu, pre.State().Sigma

	// Pure single-series fit for comparison.
	pure := NewGBMForecaster(ForecasterConfig{})
	if _, err := pure.Fit(target, nil); err != nil {
		t.Fatalf("pure fit: %v", err)
	}
	pureMu, pureSigma := pure.State().Mu, pure.State().Sigma

	if _, err := tl.FineTune(target, nil); err != nil {
		t.Fatalf("fine-tune: %v", err)
	}
	blended := pre.State()

	if math.Abs(blended.Mu-preMu) < 1e-12 || math.Abs(blended.Mu-pureMu) < 1e-12 {
		t.Fatalf("mu did not blend: pre=%v pure=%v blended=%v", preMu, pureMu, blended.Mu)
	}
	if math.Abs(blended.Sigma-preSigma) < 1e-12 || math.Abs(blended.Sigma-pureSigma) < 1e-12 {
		t.Fatalf("sigma did not blend: pre=%v pure=%v blended=%v", preSigma, pureSigma, blended.Sigma)
	}

	wantMu := 0.3*preMu + 0.7*pureMu
	if math.Abs(blended.Mu-wantMu) > 1e-12 {
		t.Fatalf("expected blended mu %v, got %v", wantMu, blended.Mu)
	}

	st := tl.Status()
	if !st.Finetuned {
		t.Fatalf("expected finetuned status")
	}
}

func TestFineTuneMetricsCarryFrozenLayers(t *testing.T) {
	tl := NewTransferLearner(TransferConfig{})
	if _, err := tl.PreTrain(corpus3()); err != nil {
		t.Fatalf("pre-train: %v", err)
	}
	metrics, err := tl.FineTune(risingSeries(60, 45, 0.1), nil)
	if err != nil {
		t.Fatalf("fine-tune: %v", err)
	}
	if metrics["frozen_layers"] != 2 {
		t.Fatalf("expected frozen_layers 2, got %v", metrics["frozen_layers"])
	}
}

func TestPreTrainEmptyCorpus(t *testing.T) {
	tl := NewTransferLearner(TransferConfig{})
	if _, err := tl.PreTrain(nil); err == nil {
		t.Fatalf("expected error on empty corpus")
	}
}
