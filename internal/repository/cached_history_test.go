package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/pkg/cache"
	"FinCast/pkg/logger"
)

type countingStore struct {
	mu      sync.Mutex
	fetches int
	obs     []models.Observation
}

func (s *countingStore) Init(ctx context.Context) error                               { return nil }
func (s *countingStore) Store(ctx context.Context, o *models.Observation) error       { return nil }
func (s *countingStore) StoreBatch(ctx context.Context, obs []*models.Observation) error { return nil }
func (s *countingStore) Health(ctx context.Context) error                             { return nil }
func (s *countingStore) Close() error                                                 { return nil }

func (s *countingStore) FetchRecent(ctx context.Context, symbol string, limit int) ([]models.Observation, error) {
	s.mu.Lock()
	s.fetches++
	s.mu.Unlock()
	return s.obs, nil
}

func (s *countingStore) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func TestCachedHistoryServesSecondReadFromCache(t *testing.T) {
	inner := &countingStore{obs: []models.Observation{
		{Symbol: "AAPL", Price: 100, Volume: 500, Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Symbol: "AAPL", Price: 101, Volume: 600, Timestamp: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
	}}
	mem := cache.NewMemoryCache()
	defer mem.Close()

	h := NewCachedHistory(inner, mem, time.Minute, logger.NewNop())

	first, err := h.FetchRecent(context.Background(), "AAPL", 100)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := h.FetchRecent(context.Background(), "AAPL", 100)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if inner.fetchCount() != 1 {
		t.Fatalf("store fetched %d times, want 1", inner.fetchCount())
	}
	if len(first) != len(second) || len(second) != 2 {
		t.Fatalf("lengths = %d/%d, want 2/2", len(first), len(second))
	}
	if second[0].Price != 100 || second[1].Price != 101 {
		t.Fatalf("cached window corrupted: %+v", second)
	}
}

func TestCachedHistoryDistinctLimitsAreDistinctEntries(t *testing.T) {
	inner := &countingStore{obs: []models.Observation{{Symbol: "AAPL", Price: 100}}}
	mem := cache.NewMemoryCache()
	defer mem.Close()

	h := NewCachedHistory(inner, mem, time.Minute, logger.NewNop())

	if _, err := h.FetchRecent(context.Background(), "AAPL", 50); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := h.FetchRecent(context.Background(), "AAPL", 100); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if inner.fetchCount() != 2 {
		t.Fatalf("store fetched %d times, want 2", inner.fetchCount())
	}
}
