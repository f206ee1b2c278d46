package repository

import (
	"context"

	"FinCast/internal/domain/models"
)

// HistoryStore persists quote observations and serves recent windows to
// the forecasting engine. FetchRecent returns at most limit observations
// in ascending timestamp order; short or empty history is not an error.
type HistoryStore interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, o *models.Observation) error
	StoreBatch(ctx context.Context, obs []*models.Observation) error
	FetchRecent(ctx context.Context, symbol string, limit int) ([]models.Observation, error)
	Health(ctx context.Context) error
	Close() error
}

// QuoteStream delivers live quote observations from an upstream feed.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Observation, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher forwards observations to a message backend.
type Publisher interface {
	Publish(ctx context.Context, o *models.Observation) error
	PublishBatch(ctx context.Context, obs []*models.Observation) error
	Close() error
}

// Metrics records operational counters for ingest and forecasting.
type Metrics interface {
	RecordForecast(model, symbol string)
	RecordTrainingRun(symbol string)
	RecordCacheHit(symbol string)
	RecordCacheMiss(symbol string)
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
