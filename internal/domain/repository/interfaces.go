package repository

import (
	"context"

	"FinCast/internal/domain/models"
)

// QuoteStream is a live quote feed for the tracked securities.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// SignalPublisher emits fused execution signals to downstream consumers.
type SignalPublisher interface {
	PublishSignal(ctx context.Context, securityID string, sig models.ExecutionSignal) error
	Close() error
}

// PriceWindow serves the most recent live closes per security, newest last.
type PriceWindow interface {
	Recent(securityID string, n int) []float64
}

// Metrics is the instrumentation surface for the forecasting pipeline.
type Metrics interface {
	RecordRequest(endpoint string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordModelSwap()
	RecordForecastMid(securityID string, p50 float64)
	RecordQuote(symbol string, price float64)
}
