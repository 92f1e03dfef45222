package di

import (
	"context"
	"strings"
	"testing"

	"FinCast/internal/domain/models"
	"FinCast/pkg/config"
)

// Prometheus collectors register globally, so the recorder is built once for
// the whole package.
var testMetrics = ProvideMetrics()

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Environment = "test"
	cfg.Forecast.Lookback = 30
	cfg.Forecast.MaxHorizon = 5
	cfg.Forecast.WindowSize = 16
	cfg.Trigger.MinUpProb = 0.55
	cfg.Trigger.MinDownProb = 0.55
	cfg.Trigger.MinLiqProb = 0.50
	cfg.Trigger.SpreadMax = 0.08
	return cfg
}

func TestProvideOrchestratorCarriesTriggerThresholds(t *testing.T) {
	cfg := testConfig()
	// A spread cap this tight forces the hold override on any non-flat
	// history, which is only observable if the configured value reaches
	// the trigger.
	cfg.Trigger.SpreadMax = 0.0001

	lgr, err := ProvideLogger(cfg)
	if err != nil {
		t.Fatalf("ProvideLogger: %v", err)
	}
	orch := ProvideOrchestrator(cfg, nil, ProvideWindows(cfg), nil, testMetrics, lgr)
	if orch == nil {
		t.Fatal("expected an orchestrator")
	}

	hist := make([]float64, 40)
	for i := range hist {
		hist[i] = 100 + float64(i%7)
	}
	snap := models.FeatureSnapshot{
		SecurityID: "VNM",
		Date:       "2026-08-30",
		OHLCV:      models.OHLCV{Open: 100, High: 106, Low: 99, Close: 105, Volume: 1e6},
		History:    hist,
	}
	resp, err := orch.Recommend(context.Background(), snap)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.Signal != "hold" {
		t.Fatalf("expected hold under the tight spread cap, got %q", resp.Signal)
	}
	if !strings.Contains(resp.Reason, "OVERRIDE") {
		t.Fatalf("expected an override reason, got %q", resp.Reason)
	}
}

func TestProvideWindowsUsesConfiguredSize(t *testing.T) {
	cfg := testConfig()
	w := ProvideWindows(cfg)
	if w == nil {
		t.Fatal("expected windows")
	}
}

func TestSplitAddr(t *testing.T) {
	host, port := splitAddr("redis-main:6380")
	if host != "redis-main" || port != 6380 {
		t.Fatalf("got %s:%d", host, port)
	}
	host, port = splitAddr("localhost")
	if host != "localhost" || port != 6379 {
		t.Fatalf("expected default port, got %s:%d", host, port)
	}
}
