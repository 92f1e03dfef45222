package forecast

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"FinCast/internal/domain/models"
)

// AugmenterConfig controls synthetic series generation. Method is an
// informational tag; both values route to the same generator in the
// reference implementation.
type AugmenterConfig struct {
	Method     string // "vae" | "gan"
	SeqLen     int    // length of each synthetic series
	NSynthetic int    // default number of series per Generate call
	NoiseScale float64
	Seed       int64 // 0 seeds from the clock
}

// DefaultAugmenterConfig returns the production defaults.
func DefaultAugmenterConfig() AugmenterConfig {
	return AugmenterConfig{Method: "vae", SeqLen: 60, NSynthetic: 5, NoiseScale: 1.0}
}

func (c *AugmenterConfig) setDefaults() {
	def := DefaultAugmenterConfig()
	if c.Method == "" {
		c.Method = def.Method
	}
	if c.SeqLen <= 0 {
		c.SeqLen = def.SeqLen
	}
	if c.NSynthetic <= 0 {
		c.NSynthetic = def.NSynthetic
	}
	if c.NoiseScale <= 0 {
		c.NoiseScale = def.NoiseScale
	}
}

// SyntheticAugmenter generates statistically plausible price paths to
// enrich thin training sets for illiquid securities.
type SyntheticAugmenter struct {
	cfg       AugmenterConfig
	mu        float64
	sigma     float64
	lastPrice float64
	fitted    bool
	rng       *rand.Rand
}

// NewSyntheticAugmenter creates an unfitted augmenter.
func NewSyntheticAugmenter(cfg AugmenterConfig) *SyntheticAugmenter {
	cfg.setDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SyntheticAugmenter{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// Fit captures the mean and volatility of log returns plus the last
// observed price. Any non-empty series is accepted.
func (a *SyntheticAugmenter) Fit(prices []float64) (models.TrainMetrics, error) {
	if len(prices) == 0 {
		return nil, fmt.Errorf("fit: empty price series")
	}
	mu, sigma := meanStd(logReturns(prices))
	a.mu = mu
	a.sigma = sigma + eps
	a.lastPrice = prices[len(prices)-1]
	a.fitted = true
	return models.TrainMetrics{
		"mu":    round6(a.mu),
		"sigma": round6(a.sigma),
	}, nil
}

// Generate produces n synthetic close series of the configured length by
// cumulating Gaussian log returns from the last fitted price. Fails with
// ErrNotFitted before Fit. All generated values are strictly positive.
func (a *SyntheticAugmenter) Generate(n int) ([][]float64, error) {
	if !a.fitted {
		return nil, fmt.Errorf("%w: call Fit before Generate", ErrNotFitted)
	}
	if n <= 0 {
		n = a.cfg.NSynthetic
	}

	out := make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		series := make([]float64, a.cfg.SeqLen)
		cum := 0.0
		for j := range series {
			cum += a.rng.NormFloat64()*a.sigma*a.cfg.NoiseScale + a.mu
			v := round4(a.lastPrice * math.Exp(cum))
			if v <= 0 {
				v = 0.0001
			}
			series[j] = v
		}
		out = append(out, series)
	}
	return out, nil
}

// GenerateOHLCV derives open/high/low/volume bars from generated close
// series. low <= close <= high holds elementwise.
func (a *SyntheticAugmenter) GenerateOHLCV(n int) ([]models.SyntheticOHLCV, error) {
	raw, err := a.Generate(n)
	if err != nil {
		return nil, err
	}

	out := make([]models.SyntheticOHLCV, 0, len(raw))
	for _, close := range raw {
		m := len(close)
		bars := models.SyntheticOHLCV{
			Open:   make([]float64, m),
			High:   make([]float64, m),
			Low:    make([]float64, m),
			Close:  close,
			Volume: make([]float64, m),
		}
		for j := 0; j < m; j++ {
			intraday := math.Abs(a.rng.NormFloat64() * a.sigma)
			bars.High[j] = round4(close[j] * (1 + intraday))
			bars.Low[j] = round4(close[j] * (1 - intraday))
			if j == 0 {
				bars.Open[j] = close[0]
			} else {
				bars.Open[j] = close[j-1]
			}
			bars.Volume[j] = float64(int(math.Abs(a.rng.NormFloat64()*2000 + 5000)))
		}
		out = append(out, bars)
	}
	return out, nil
}

// Method reports the configured generator tag.
func (a *SyntheticAugmenter) Method() string { return a.cfg.Method }
