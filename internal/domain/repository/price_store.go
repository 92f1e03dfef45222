package repository

import (
	"context"
	"time"

	"FinCast/internal/domain/models"
)

// PriceStore provides read access to persisted daily candles.
type PriceStore interface {
	GetDailyCandles(ctx context.Context, securityID string, from, to time.Time) ([]models.Candle, error)
	GetLatestNCandles(ctx context.Context, securityID string, n int) ([]models.Candle, error)
	Health(ctx context.Context) error
	Close() error
}
