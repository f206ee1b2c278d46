package usecase

import (
	"context"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// HistoryUsecase serves recent observation windows to the API.
type HistoryUsecase struct {
	store drepo.HistoryStore
}

func NewHistoryUsecase(store drepo.HistoryStore) *HistoryUsecase {
	return &HistoryUsecase{store: store}
}

// Recent returns up to limit observations in ascending timestamp order.
// Non-positive limits fall back to the default, oversized ones clamp.
func (u *HistoryUsecase) Recent(ctx context.Context, symbol string, limit int) ([]models.Observation, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return u.store.FetchRecent(ctx, symbol, limit)
}
