package usecase

import (
	"context"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	"FinCast/pkg/logger"
)

// QuoteFetcher fetches one spot quote per symbol.
type QuoteFetcher interface {
	Quote(ctx context.Context, symbol string) (*models.Observation, error)
}

// QuoteBackfill seeds the history store with a spot quote for every
// symbol that has no stored observations yet, so a fresh deployment can
// serve a degraded forecast before the live stream fills the window.
type QuoteBackfill struct {
	fetcher QuoteFetcher
	store   drepo.HistoryStore
	symbols []string
	logger  *logger.Logger
}

func NewQuoteBackfill(fetcher QuoteFetcher, store drepo.HistoryStore, symbols []string, log *logger.Logger) *QuoteBackfill {
	return &QuoteBackfill{
		fetcher: fetcher,
		store:   store,
		symbols: symbols,
		logger:  log,
	}
}

// Run backfills all configured symbols. Per-symbol failures are logged
// and skipped; the live stream will fill the gap.
func (b *QuoteBackfill) Run(ctx context.Context) {
	for _, symbol := range b.symbols {
		if err := ctx.Err(); err != nil {
			return
		}

		existing, err := b.store.FetchRecent(ctx, symbol, 1)
		if err != nil {
			b.logger.Warn("backfill history check failed",
				logger.String("symbol", symbol), logger.Error(err))
			continue
		}
		if len(existing) > 0 {
			continue
		}

		o, err := b.fetcher.Quote(ctx, symbol)
		if err != nil {
			b.logger.Warn("backfill quote fetch failed",
				logger.String("symbol", symbol), logger.Error(err))
			continue
		}
		if err := b.store.Store(ctx, o); err != nil {
			b.logger.Warn("backfill store failed",
				logger.String("symbol", symbol), logger.Error(err))
			continue
		}
		b.logger.Info("backfilled symbol",
			logger.String("symbol", symbol), logger.Any("price", o.Price))
	}
}
