package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/pkg/logger"
)

type stubFetcher struct {
	quotes map[string]*models.Observation
	calls  []string
}

func (f *stubFetcher) Quote(ctx context.Context, symbol string) (*models.Observation, error) {
	f.calls = append(f.calls, symbol)
	q, ok := f.quotes[symbol]
	if !ok {
		return nil, errors.New("no quote")
	}
	return q, nil
}

func TestQuoteBackfillSeedsEmptySymbols(t *testing.T) {
	store := &memHistory{}
	_ = store.Store(context.Background(), &models.Observation{
		Symbol: "AAPL", Price: 187, Timestamp: time.Now(),
	})

	fetcher := &stubFetcher{quotes: map[string]*models.Observation{
		"MSFT": {Symbol: "MSFT", Price: 410, Timestamp: time.Now()},
	}}

	b := NewQuoteBackfill(fetcher, store, []string{"AAPL", "MSFT"}, logger.NewNop())
	b.Run(context.Background())

	// AAPL already has history, so only MSFT is fetched
	if len(fetcher.calls) != 1 || fetcher.calls[0] != "MSFT" {
		t.Fatalf("fetched %v, want [MSFT]", fetcher.calls)
	}

	got, err := store.FetchRecent(context.Background(), "MSFT", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 || got[0].Price != 410 {
		t.Fatalf("MSFT history = %+v", got)
	}
}

func TestQuoteBackfillSkipsFailedFetches(t *testing.T) {
	store := &memHistory{}
	fetcher := &stubFetcher{quotes: map[string]*models.Observation{
		"NVDA": {Symbol: "NVDA", Price: 130, Timestamp: time.Now()},
	}}

	b := NewQuoteBackfill(fetcher, store, []string{"BAD", "NVDA"}, logger.NewNop())
	b.Run(context.Background())

	// BAD fails but must not stop NVDA
	got, err := store.FetchRecent(context.Background(), "NVDA", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("NVDA not backfilled: %+v", got)
	}
}

func TestQuoteBackfillHonorsCancelledContext(t *testing.T) {
	fetcher := &stubFetcher{}
	b := NewQuoteBackfill(fetcher, &memHistory{}, []string{"AAPL"}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.Run(ctx)

	if len(fetcher.calls) != 0 {
		t.Fatalf("cancelled run fetched %v", fetcher.calls)
	}
}
