package forecast

import (
	"math/rand"
	"sync"
	"time"

	"FinCast/internal/domain/models"
)

// TrendExtrapolator is the degraded-mode fallback: a naive forecast
// extrapolating the gap between the last price and the window average.
// It never fails; with zero observations it returns an empty forecast
// with floor confidence.
type TrendExtrapolator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	noise bool
	now   func() time.Time
}

// NewTrendExtrapolator creates a fallback forecaster. With noise
// disabled the output is fully deterministic.
func NewTrendExtrapolator(seed int64, noise bool) *TrendExtrapolator {
	return &TrendExtrapolator{
		rng:   rand.New(rand.NewSource(seed)),
		noise: noise,
		now:   time.Now,
	}
}

// Forecast produces a trend-based forecast from whatever history exists.
func (e *TrendExtrapolator) Forecast(symbol string, horizonDays int, obs []models.Observation) models.ForecastResult {
	now := e.now()
	if len(obs) == 0 {
		return models.ForecastResult{
			Symbol:          symbol,
			PredictedPrices: []float64{},
			PredictionDates: []time.Time{},
			Confidence:      0.3,
			Model:           models.ModelFallbackEmpty,
			GeneratedAt:     now,
		}
	}

	last := obs[len(obs)-1].Price
	sum := 0.0
	for _, o := range obs {
		sum += o.Price
	}
	avg := sum / float64(len(obs))
	trend := 0.0
	if avg != 0 {
		trend = (last - avg) / avg
	}

	prices := make([]float64, 0, horizonDays)
	dates := make([]time.Time, 0, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		p := last * (1 + trend*float64(i)*0.1 + e.variation())
		if p < 0.01 {
			p = 0.01
		}
		prices = append(prices, p)
		dates = append(dates, now.AddDate(0, 0, i))
	}

	return models.ForecastResult{
		Symbol:          symbol,
		PredictedPrices: prices,
		PredictionDates: dates,
		Confidence:      0.4,
		Model:           models.ModelFallbackTrend,
		GeneratedAt:     now,
	}
}

// variation returns a bounded random term of at most +-1%.
func (e *TrendExtrapolator) variation() float64 {
	if !e.noise {
		return 0
	}
	e.mu.Lock()
	v := (e.rng.Float64() - 0.5) * 0.02
	e.mu.Unlock()
	return v
}
