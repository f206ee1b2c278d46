package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"FinCast/internal/domain/models"
)

type memHistory struct {
	mu  sync.Mutex
	obs []models.Observation
	err error
}

func (s *memHistory) Init(ctx context.Context) error { return nil }
func (s *memHistory) Store(ctx context.Context, o *models.Observation) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	s.obs = append(s.obs, *o)
	s.mu.Unlock()
	return nil
}
func (s *memHistory) StoreBatch(ctx context.Context, obs []*models.Observation) error {
	for _, o := range obs {
		if err := s.Store(ctx, o); err != nil {
			return err
		}
	}
	return nil
}
func (s *memHistory) FetchRecent(ctx context.Context, symbol string, limit int) ([]models.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Observation
	for _, o := range s.obs {
		if o.Symbol == symbol {
			out = append(out, o)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
func (s *memHistory) Health(ctx context.Context) error { return nil }
func (s *memHistory) Close() error                     { return nil }

type noopMetrics struct{}

func (noopMetrics) RecordForecast(model, symbol string)        {}
func (noopMetrics) RecordTrainingRun(symbol string)            {}
func (noopMetrics) RecordCacheHit(symbol string)               {}
func (noopMetrics) RecordCacheMiss(symbol string)              {}
func (noopMetrics) RecordMessageSent(backend, symbol string)   {}
func (noopMetrics) RecordError(kind string)                    {}
func (noopMetrics) RecordLastPrice(symbol string, price float64) {}
func (noopMetrics) RecordLatency(op string, seconds float64)   {}

func TestKafkaQuotesHandlerStoresMessage(t *testing.T) {
	store := &memHistory{}
	h := NewKafkaQuotesHandler("quotes", store, noopMetrics{})

	if h.Topic() != "quotes" {
		t.Fatalf("topic = %q", h.Topic())
	}

	msg := []byte(`{"symbol":"AAPL","price":187.5,"volume":1200,"timestamp":1735689600000}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, err := store.FetchRecent(context.Background(), "AAPL", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("stored %d observations, want 1", len(got))
	}
	o := got[0]
	if o.Price != 187.5 || o.Volume != 1200 {
		t.Fatalf("stored %+v", o)
	}
	want := time.UnixMilli(1735689600000)
	if !o.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", o.Timestamp, want)
	}
}

func TestKafkaQuotesHandlerBadPayload(t *testing.T) {
	h := NewKafkaQuotesHandler("quotes", &memHistory{}, noopMetrics{})
	if err := h.Handle(context.Background(), []byte("not json")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
