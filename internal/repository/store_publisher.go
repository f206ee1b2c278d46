package repository

import (
	"context"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
)

// StorePublisher is the direct-write backend: observations go straight
// to the history store without a broker in between.
type StorePublisher struct {
	store   drepo.HistoryStore
	metrics drepo.Metrics
}

// NewStorePublisher creates a publisher writing directly to a store.
func NewStorePublisher(store drepo.HistoryStore, metrics drepo.Metrics) *StorePublisher {
	return &StorePublisher{
		store:   store,
		metrics: metrics,
	}
}

func (p *StorePublisher) Publish(ctx context.Context, o *models.Observation) error {
	if err := p.store.Store(ctx, o); err != nil {
		p.metrics.RecordError("store_publish")
		return err
	}
	p.metrics.RecordMessageSent("clickhouse", o.Symbol)
	return nil
}

func (p *StorePublisher) PublishBatch(ctx context.Context, obs []*models.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	if err := p.store.StoreBatch(ctx, obs); err != nil {
		p.metrics.RecordError("store_publish")
		return err
	}
	for _, o := range obs {
		p.metrics.RecordMessageSent("clickhouse", o.Symbol)
	}
	return nil
}

// Close is a no-op; the store's lifecycle is owned elsewhere.
func (p *StorePublisher) Close() error {
	return nil
}

var _ drepo.Publisher = (*StorePublisher)(nil)
