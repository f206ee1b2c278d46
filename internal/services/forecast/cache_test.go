package forecast

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestModelCacheMissOnEmpty(t *testing.T) {
	c := NewModelCache(time.Hour)
	if _, ok := c.Get("AAPL"); ok {
		t.Fatalf("expected miss on empty cache")
	}
}

func TestModelCachePutGet(t *testing.T) {
	c := NewModelCache(time.Hour)
	tm := &TrainedModel{TrainedAt: time.Now()}
	c.Put("AAPL", tm)

	got, ok := c.Get("AAPL")
	if !ok {
		t.Fatalf("expected hit")
	}
	if got != tm {
		t.Fatalf("got different entry")
	}
	if _, ok := c.Get("MSFT"); ok {
		t.Fatalf("unexpected hit for other symbol")
	}
}

func TestModelCacheTTLExpiry(t *testing.T) {
	c := NewModelCache(24 * time.Hour)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	c.Put("AAPL", &TrainedModel{TrainedAt: base})
	if _, ok := c.Get("AAPL"); !ok {
		t.Fatalf("expected hit before expiry")
	}

	c.now = func() time.Time { return base.Add(23 * time.Hour) }
	if _, ok := c.Get("AAPL"); !ok {
		t.Fatalf("expected hit at 23h")
	}

	c.now = func() time.Time { return base.Add(24 * time.Hour) }
	if _, ok := c.Get("AAPL"); ok {
		t.Fatalf("expected miss at exactly 24h")
	}
}

func TestGetOrTrainSingleFlight(t *testing.T) {
	c := NewModelCache(time.Hour)
	var trains int32

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetOrTrain("AAPL", func() (*TrainedModel, error) {
				atomic.AddInt32(&trains, 1)
				time.Sleep(10 * time.Millisecond)
				return &TrainedModel{TrainedAt: time.Now()}, nil
			})
			if err != nil {
				t.Errorf("GetOrTrain: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&trains); n != 1 {
		t.Fatalf("training ran %d times, want 1", n)
	}
}

func TestGetOrTrainDistinctSymbols(t *testing.T) {
	c := NewModelCache(time.Hour)
	var trains int32

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		symbol := fmt.Sprintf("SYM%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetOrTrain(symbol, func() (*TrainedModel, error) {
				atomic.AddInt32(&trains, 1)
				return &TrainedModel{TrainedAt: time.Now()}, nil
			})
			if err != nil {
				t.Errorf("GetOrTrain %s: %v", symbol, err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&trains); n != 4 {
		t.Fatalf("training ran %d times, want 4", n)
	}
}

func TestGetOrTrainFailureLeavesCacheEmpty(t *testing.T) {
	c := NewModelCache(time.Hour)

	_, err := c.GetOrTrain("AAPL", func() (*TrainedModel, error) {
		return nil, fmt.Errorf("boom")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := c.Get("AAPL"); ok {
		t.Fatalf("failed training must not populate cache")
	}

	// next call retrains and succeeds
	tm, err := c.GetOrTrain("AAPL", func() (*TrainedModel, error) {
		return &TrainedModel{TrainedAt: time.Now()}, nil
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if tm == nil {
		t.Fatalf("expected model on retry")
	}
}
