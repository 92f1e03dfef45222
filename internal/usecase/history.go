package usecase

import (
	"context"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
)

// HistoryUseCase provides business logic for retrieving persisted daily bars.
type HistoryUseCase struct {
	store domrepo.PriceStore
}

func NewHistoryUseCase(store domrepo.PriceStore) *HistoryUseCase {
	return &HistoryUseCase{store: store}
}

type GetHistoryParams struct {
	SecurityID string
	From       time.Time
	To         time.Time
	Limit      int
}

type GetHistoryResult struct {
	SecurityID string
	From       time.Time
	To         time.Time
	Count      int
	Candles    []models.Candle
}

func (uc *HistoryUseCase) GetHistory(ctx context.Context, p GetHistoryParams) (*GetHistoryResult, error) {
	if p.SecurityID == "" {
		return nil, fmt.Errorf("security_id required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 10000
	}
	if p.Limit > 50000 {
		p.Limit = 50000
	}

	candles, err := uc.store.GetDailyCandles(ctx, p.SecurityID, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("get daily candles: %w", err)
	}
	if len(candles) > p.Limit {
		candles = candles[:p.Limit]
	}

	return &GetHistoryResult{
		SecurityID: p.SecurityID,
		From:       p.From,
		To:         p.To,
		Count:      len(candles),
		Candles:    candles,
	}, nil
}
