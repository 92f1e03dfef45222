package usecase

import (
	"context"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	"FinCast/internal/service/stream"
)

// QuoteProcessor folds accepted quotes into the in-memory price windows
// that back the recent-price fallback for forecasting.
type QuoteProcessor struct {
	windows *stream.Windows
	metrics drepo.Metrics
}

// NewQuoteProcessor creates a new QuoteProcessor instance.
func NewQuoteProcessor(windows *stream.Windows, metrics drepo.Metrics) *QuoteProcessor {
	return &QuoteProcessor{windows: windows, metrics: metrics}
}

// Process records a single quote into its security window.
func (p *QuoteProcessor) Process(ctx context.Context, q *models.Quote) error {
	if q == nil {
		return fmt.Errorf("quote is nil")
	}

	start := time.Now()
	p.windows.Observe(q)
	p.metrics.RecordQuote(q.Symbol, q.Price)
	p.metrics.RecordLatency("quote_process", time.Since(start).Seconds())
	return nil
}
