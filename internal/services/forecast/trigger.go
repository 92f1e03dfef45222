package forecast

import (
	"fmt"
	"math"

	"FinCast/internal/domain/models"
)

// TriggerConfig holds the decision thresholds. Defaults are conservative.
type TriggerConfig struct {
	PriceUpThreshold   float64
	PriceDownThreshold float64
	LiquidityThreshold float64
	QuantileSpreadMax  float64 // max (p90-p10)/price before forcing hold
}

// DefaultTriggerConfig returns the production defaults.
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		PriceUpThreshold:   0.55,
		PriceDownThreshold: 0.55,
		LiquidityThreshold: 0.50,
		QuantileSpreadMax:  0.08,
	}
}

func (c *TriggerConfig) setDefaults() {
	def := DefaultTriggerConfig()
	if c.PriceUpThreshold <= 0 {
		c.PriceUpThreshold = def.PriceUpThreshold
	}
	if c.PriceDownThreshold <= 0 {
		c.PriceDownThreshold = def.PriceDownThreshold
	}
	if c.LiquidityThreshold <= 0 {
		c.LiquidityThreshold = def.LiquidityThreshold
	}
	if c.QuantileSpreadMax <= 0 {
		c.QuantileSpreadMax = def.QuantileSpreadMax
	}
}

// ExecutionTrigger fuses a quantile forecast with a liquidity prediction
// into a discrete trade signal with timing advice. Stateless: every
// Evaluate call is a pure function of its inputs and the thresholds.
type ExecutionTrigger struct {
	cfg TriggerConfig
}

// NewExecutionTrigger creates a trigger. Zero thresholds fall back to
// defaults.
func NewExecutionTrigger(cfg TriggerConfig) *ExecutionTrigger {
	cfg.setDefaults()
	return &ExecutionTrigger{cfg: cfg}
}

// Evaluate applies the decision table. The up/down branches are mutually
// exclusive by construction since both probabilities cannot clear their
// thresholds at once after normalization.
func (t *ExecutionTrigger) Evaluate(q models.QuantilePrediction, liq models.LiquidityPrediction, currentPrice float64) models.ExecutionSignal {
	spreadFrac := (q.P90 - q.P10) / (currentPrice + eps)
	upside := (q.P50 - currentPrice) / (currentPrice + eps)

	liqOK := liq.LiquidityHighProb >= t.cfg.LiquidityThreshold
	priceUp := liq.PriceUpProb >= t.cfg.PriceUpThreshold
	priceDown := liq.PriceDownProb >= t.cfg.PriceDownThreshold

	var (
		signal     models.SignalKind
		confidence float64
		reason     string
		timing     models.TimingKind
	)

	switch {
	case priceUp && liqOK:
		signal = models.SignalEnter
		confidence = math.Min(liq.PriceUpProb, liq.LiquidityHighProb)
		reason = fmt.Sprintf("Median forecast %+.1f%% with %.0f%% high-liquidity probability",
			upside*100, liq.LiquidityHighProb*100)
		timing = models.TimingNextOpen
		if liq.LiquidityHighProb > 0.7 {
			timing = models.TimingIntraday
		}

	case priceUp && !liqOK:
		signal = models.SignalDefer
		confidence = liq.PriceUpProb * 0.5
		reason = fmt.Sprintf("Positive outlook (%+.1f%%) but liquidity only %.0f%%, deferring execution",
			upside*100, liq.LiquidityHighProb*100)
		timing = models.TimingWait1Day

	case priceDown && liqOK:
		signal = models.SignalExit
		confidence = math.Min(liq.PriceDownProb, liq.LiquidityHighProb)
		reason = fmt.Sprintf("Median forecast %+.1f%% with adequate liquidity, consider exiting",
			upside*100)
		timing = models.TimingNextClose
		if spreadFrac < t.cfg.QuantileSpreadMax {
			timing = models.TimingIntraday
		}

	case priceDown && !liqOK:
		signal = models.SignalDefer
		confidence = liq.PriceDownProb * 0.4
		reason = "Negative outlook but poor liquidity, defer to avoid slippage"
		timing = models.TimingWait1Day

	default:
		signal = models.SignalHold
		confidence = 1.0 - math.Max(liq.PriceUpProb, liq.PriceDownProb)
		reason = "No strong directional conviction"
		timing = models.TimingNextOpen
	}

	// Uncertainty override: too wide a quantile spread disqualifies any
	// enter/exit decision.
	if spreadFrac > t.cfg.QuantileSpreadMax && (signal == models.SignalEnter || signal == models.SignalExit) {
		signal = models.SignalHold
		reason += fmt.Sprintf(" [OVERRIDE: quantile spread %.1f%% exceeds threshold]", spreadFrac*100)
		timing = models.TimingWait1Day
	}

	return models.ExecutionSignal{
		Signal:     signal,
		Confidence: round4(confidence),
		Reason:     reason,
		Timing:     timing,
		Details: map[string]float64{
			"upside_pct":      round2(upside * 100),
			"spread_frac_pct": round2(spreadFrac * 100),
			"liq_high_prob":   liq.LiquidityHighProb,
			"price_up_prob":   liq.PriceUpProb,
			"price_down_prob": liq.PriceDownProb,
		},
	}
}
