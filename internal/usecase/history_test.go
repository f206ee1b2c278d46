package usecase

import (
	"context"
	"testing"
	"time"

	"FinCast/internal/domain/models"
)

func TestHistoryRecentClampsLimit(t *testing.T) {
	store := &memHistory{}
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 1500; i++ {
		_ = store.Store(context.Background(), &models.Observation{
			Symbol:    "AAPL",
			Price:     100 + float64(i)*0.01,
			Volume:    1000,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}

	u := NewHistoryUsecase(store)

	got, err := u.Recent(context.Background(), "AAPL", 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != defaultHistoryLimit {
		t.Fatalf("default limit returned %d, want %d", len(got), defaultHistoryLimit)
	}

	got, err = u.Recent(context.Background(), "AAPL", 99999)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != maxHistoryLimit {
		t.Fatalf("oversized limit returned %d, want %d", len(got), maxHistoryLimit)
	}

	got, err = u.Recent(context.Background(), "AAPL", 25)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 25 {
		t.Fatalf("limit 25 returned %d", len(got))
	}
}

func TestHistoryRecentUnknownSymbol(t *testing.T) {
	u := NewHistoryUsecase(&memHistory{})
	got, err := u.Recent(context.Background(), "NOPE", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("unknown symbol returned %d observations", len(got))
	}
}
