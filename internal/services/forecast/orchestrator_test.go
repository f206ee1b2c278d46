package forecast

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"FinCast/internal/domain/models"
	domsvc "FinCast/internal/domain/service"
	"FinCast/pkg/logger"
)

type stubHistory struct {
	obs []models.Observation
	err error
}

func (s *stubHistory) Init(ctx context.Context) error                              { return nil }
func (s *stubHistory) Store(ctx context.Context, o *models.Observation) error      { return nil }
func (s *stubHistory) StoreBatch(ctx context.Context, o []*models.Observation) error { return nil }
func (s *stubHistory) Health(ctx context.Context) error                            { return nil }
func (s *stubHistory) Close() error                                                { return nil }

func (s *stubHistory) FetchRecent(ctx context.Context, symbol string, limit int) ([]models.Observation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.obs, nil
}

type stubMetrics struct {
	mu           sync.Mutex
	trainingRuns int32
	cacheHits    int
	cacheMisses  int
	forecasts    map[string]int
	errors       map[string]int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{
		forecasts: make(map[string]int),
		errors:    make(map[string]int),
	}
}

func (m *stubMetrics) RecordForecast(model, symbol string) {
	m.mu.Lock()
	m.forecasts[model]++
	m.mu.Unlock()
}
func (m *stubMetrics) RecordTrainingRun(symbol string) { atomic.AddInt32(&m.trainingRuns, 1) }
func (m *stubMetrics) RecordCacheHit(symbol string) {
	m.mu.Lock()
	m.cacheHits++
	m.mu.Unlock()
}
func (m *stubMetrics) RecordCacheMiss(symbol string) {
	m.mu.Lock()
	m.cacheMisses++
	m.mu.Unlock()
}
func (m *stubMetrics) RecordMessageSent(backend, symbol string) {}
func (m *stubMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}
func (m *stubMetrics) RecordLastPrice(symbol string, price float64) {}
func (m *stubMetrics) RecordLatency(op string, seconds float64)     {}

func (m *stubMetrics) forecastCount(model string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forecasts[model]
}

func risingHistory(n int) []models.Observation {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]models.Observation, n)
	for i := range obs {
		obs[i] = models.Observation{
			Symbol:    "AAPL",
			Price:     100 + float64(i),
			Volume:    300_000,
			Timestamp: base.Add(time.Duration(i) * 24 * time.Hour),
		}
	}
	return obs
}

func testConfig() Config {
	return Config{
		SequenceLength: 30,
		HistoryLimit:   100,
		Epochs:         50,
		LearningRate:   0.01,
		ModelTTL:       24 * time.Hour,
		Noise:          false,
		Seed:           1,
	}
}

func TestForecastRejectsBadInput(t *testing.T) {
	o := NewOrchestrator(&stubHistory{}, newStubMetrics(), logger.NewNop(), testConfig())

	if _, err := o.Forecast(context.Background(), "", 7); !errors.Is(err, ErrEmptySymbol) {
		t.Fatalf("empty symbol err = %v, want ErrEmptySymbol", err)
	}
	if _, err := o.Forecast(context.Background(), "   ", 7); !errors.Is(err, ErrEmptySymbol) {
		t.Fatalf("blank symbol err = %v, want ErrEmptySymbol", err)
	}
	if _, err := o.Forecast(context.Background(), "AAPL", 0); !errors.Is(err, ErrInvalidHorizon) {
		t.Fatalf("zero horizon err = %v, want ErrInvalidHorizon", err)
	}
	if _, err := o.Forecast(context.Background(), "AAPL", -3); !errors.Is(err, ErrInvalidHorizon) {
		t.Fatalf("negative horizon err = %v, want ErrInvalidHorizon", err)
	}
}

func TestForecastFetchErrorFallsBack(t *testing.T) {
	m := newStubMetrics()
	o := NewOrchestrator(&stubHistory{err: errors.New("db down")}, m, logger.NewNop(), testConfig())

	res, err := o.Forecast(context.Background(), "AAPL", 7)
	if err != nil {
		t.Fatalf("fetch failure must degrade, not error: %v", err)
	}
	if res.Model != models.ModelFallbackEmpty {
		t.Fatalf("model = %q, want %q", res.Model, models.ModelFallbackEmpty)
	}
	if res.Confidence != 0.3 {
		t.Fatalf("confidence = %v, want 0.3", res.Confidence)
	}
	m.mu.Lock()
	fetchErrs := m.errors["history_fetch"]
	m.mu.Unlock()
	if fetchErrs != 1 {
		t.Fatalf("history_fetch errors = %d, want 1", fetchErrs)
	}
}

func TestForecastShortHistoryUsesTrendFallback(t *testing.T) {
	m := newStubMetrics()
	o := NewOrchestrator(&stubHistory{obs: risingHistory(5)}, m, logger.NewNop(), testConfig())

	res, err := o.Forecast(context.Background(), "AAPL", 7)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if res.Model != models.ModelFallbackTrend {
		t.Fatalf("model = %q, want %q", res.Model, models.ModelFallbackTrend)
	}
	if res.Confidence != 0.4 {
		t.Fatalf("confidence = %v, want 0.4", res.Confidence)
	}
	if len(res.PredictedPrices) != 7 {
		t.Fatalf("prices length = %d, want 7", len(res.PredictedPrices))
	}
	if n := atomic.LoadInt32(&m.trainingRuns); n != 0 {
		t.Fatalf("fallback path trained %d times", n)
	}
}

func TestForecastSequencePath(t *testing.T) {
	m := newStubMetrics()
	o := NewOrchestrator(&stubHistory{obs: risingHistory(40)}, m, logger.NewNop(), testConfig())

	horizon := 5
	res, err := o.Forecast(context.Background(), "AAPL", horizon)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if res.Model != models.ModelSequence {
		t.Fatalf("model = %q, want %q", res.Model, models.ModelSequence)
	}
	if len(res.PredictedPrices) != horizon || len(res.PredictionDates) != horizon {
		t.Fatalf("lengths = %d/%d, want %d", len(res.PredictedPrices), len(res.PredictionDates), horizon)
	}
	if len(res.LowerBounds) != horizon || len(res.UpperBounds) != horizon {
		t.Fatalf("bounds lengths = %d/%d, want %d", len(res.LowerBounds), len(res.UpperBounds), horizon)
	}
	for i, p := range res.PredictedPrices {
		if p < 0.01 {
			t.Fatalf("day %d price = %v, below floor", i+1, p)
		}
		if res.LowerBounds[i] > p || res.UpperBounds[i] < p {
			t.Fatalf("day %d interval [%v, %v] excludes price %v",
				i+1, res.LowerBounds[i], res.UpperBounds[i], p)
		}
	}
	for i := 1; i < horizon; i++ {
		if !res.PredictionDates[i].After(res.PredictionDates[i-1]) {
			t.Fatalf("dates not strictly increasing at %d", i)
		}
	}
	if res.Confidence < 0.3 || res.Confidence > 0.95 {
		t.Fatalf("confidence = %v, outside [0.3, 0.95]", res.Confidence)
	}
	if res.MAE == nil || res.RMSE == nil || res.MAPE == nil {
		t.Fatalf("expected residual metrics on sequence forecast")
	}
	if n := atomic.LoadInt32(&m.trainingRuns); n != 1 {
		t.Fatalf("training runs = %d, want 1", n)
	}
	if m.forecastCount(models.ModelSequence) != 1 {
		t.Fatalf("sequence forecasts = %d, want 1", m.forecastCount(models.ModelSequence))
	}
}

func TestForecastReusesCachedModel(t *testing.T) {
	m := newStubMetrics()
	o := NewOrchestrator(&stubHistory{obs: risingHistory(40)}, m, logger.NewNop(), testConfig())

	if _, err := o.Forecast(context.Background(), "AAPL", 3); err != nil {
		t.Fatalf("first forecast: %v", err)
	}
	if _, err := o.Forecast(context.Background(), "AAPL", 3); err != nil {
		t.Fatalf("second forecast: %v", err)
	}

	if n := atomic.LoadInt32(&m.trainingRuns); n != 1 {
		t.Fatalf("training runs = %d, want 1 (second call must hit cache)", n)
	}
	m.mu.Lock()
	hits, misses := m.cacheHits, m.cacheMisses
	m.mu.Unlock()
	if hits != 1 || misses != 1 {
		t.Fatalf("cache hits/misses = %d/%d, want 1/1", hits, misses)
	}
}

func TestForecastConcurrentSameSymbolTrainsOnce(t *testing.T) {
	m := newStubMetrics()
	o := NewOrchestrator(&stubHistory{obs: risingHistory(40)}, m, logger.NewNop(), testConfig())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := o.Forecast(context.Background(), "AAPL", 5); err != nil {
				t.Errorf("Forecast: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&m.trainingRuns); n != 1 {
		t.Fatalf("training runs = %d, want 1", n)
	}
}

func TestForecastCancelledContextFallsBack(t *testing.T) {
	m := newStubMetrics()
	o := NewOrchestrator(&stubHistory{obs: risingHistory(40)}, m, logger.NewNop(), testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := o.Forecast(ctx, "AAPL", 5)
	if err != nil {
		t.Fatalf("cancelled training must degrade, not error: %v", err)
	}
	if res.Model != models.ModelFallbackTrend {
		t.Fatalf("model = %q, want %q", res.Model, models.ModelFallbackTrend)
	}
}

func TestForecastCustomModelFactory(t *testing.T) {
	var built int32
	o := NewOrchestrator(&stubHistory{obs: risingHistory(40)}, newStubMetrics(), logger.NewNop(), testConfig(),
		WithModelFactory(func(seqLen int, seed int64) domsvc.SequenceModel {
			atomic.AddInt32(&built, 1)
			return NewLinearModel(seqLen, 0.01, seed)
		}))

	if _, err := o.Forecast(context.Background(), "AAPL", 2); err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if n := atomic.LoadInt32(&built); n != 1 {
		t.Fatalf("factory invoked %d times, want 1", n)
	}
}
