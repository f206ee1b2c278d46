package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	"FinCast/pkg/cache"
	"FinCast/pkg/logger"
)

// CachedHistory wraps a HistoryStore with a read cache on FetchRecent.
// Cached windows are at most ttl stale; ingest writes do not invalidate
// them, so ttl bounds how far a forecast window can lag live data.
type CachedHistory struct {
	store  drepo.HistoryStore
	cache  cache.Service
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedHistory creates a caching decorator around a history store.
func NewCachedHistory(store drepo.HistoryStore, svc cache.Service, ttl time.Duration, log *logger.Logger) *CachedHistory {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedHistory{
		store:  store,
		cache:  svc,
		ttl:    ttl,
		logger: log,
	}
}

func (r *CachedHistory) Init(ctx context.Context) error {
	return r.store.Init(ctx)
}

func (r *CachedHistory) Store(ctx context.Context, o *models.Observation) error {
	return r.store.Store(ctx, o)
}

func (r *CachedHistory) StoreBatch(ctx context.Context, obs []*models.Observation) error {
	return r.store.StoreBatch(ctx, obs)
}

func (r *CachedHistory) FetchRecent(ctx context.Context, symbol string, limit int) ([]models.Observation, error) {
	key := historyKey(symbol, limit)

	var cached []models.Observation
	err := r.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("history cache read failed",
			logger.String("symbol", symbol),
			logger.Error(err),
		)
	}

	obs, err := r.store.FetchRecent(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, obs, r.ttl); err != nil {
		r.logger.Warn("history cache write failed",
			logger.String("symbol", symbol),
			logger.Error(err),
		)
	}
	return obs, nil
}

func (r *CachedHistory) Health(ctx context.Context) error {
	return r.store.Health(ctx)
}

func (r *CachedHistory) Close() error {
	_ = r.cache.Close()
	return r.store.Close()
}

func historyKey(symbol string, limit int) string {
	return fmt.Sprintf("history:%s:%d", symbol, limit)
}

var _ drepo.HistoryStore = (*CachedHistory)(nil)
