package forecast

import (
	"math"
	"testing"
	"time"

	"FinCast/internal/domain/models"
)

func TestTrendExtrapolatorEmptyHistory(t *testing.T) {
	e := NewTrendExtrapolator(1, false)
	res := e.Forecast("AAPL", 7, nil)

	if res.Model != models.ModelFallbackEmpty {
		t.Fatalf("model = %q, want %q", res.Model, models.ModelFallbackEmpty)
	}
	if res.Confidence != 0.3 {
		t.Fatalf("confidence = %v, want 0.3", res.Confidence)
	}
	if len(res.PredictedPrices) != 0 || len(res.PredictionDates) != 0 {
		t.Fatalf("expected empty forecast, got %d prices", len(res.PredictedPrices))
	}
	if res.Symbol != "AAPL" {
		t.Fatalf("symbol = %q", res.Symbol)
	}
}

func TestTrendExtrapolatorDeterministicWithoutNoise(t *testing.T) {
	e := NewTrendExtrapolator(1, false)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return base }

	obs := []models.Observation{
		{Symbol: "AAPL", Price: 90},
		{Symbol: "AAPL", Price: 100},
		{Symbol: "AAPL", Price: 110},
	}
	res := e.Forecast("AAPL", 3, obs)

	if res.Model != models.ModelFallbackTrend {
		t.Fatalf("model = %q, want %q", res.Model, models.ModelFallbackTrend)
	}
	if res.Confidence != 0.4 {
		t.Fatalf("confidence = %v, want 0.4", res.Confidence)
	}
	if len(res.PredictedPrices) != 3 || len(res.PredictionDates) != 3 {
		t.Fatalf("lengths = %d/%d, want 3/3", len(res.PredictedPrices), len(res.PredictionDates))
	}

	// trend = (110 - 100) / 100 = 0.1
	last, trend := 110.0, 0.1
	for i, p := range res.PredictedPrices {
		want := last * (1 + trend*float64(i+1)*0.1)
		if math.Abs(p-want) > 1e-9 {
			t.Fatalf("day %d price = %v, want %v", i+1, p, want)
		}
		wantDate := base.AddDate(0, 0, i+1)
		if !res.PredictionDates[i].Equal(wantDate) {
			t.Fatalf("day %d date = %v, want %v", i+1, res.PredictionDates[i], wantDate)
		}
	}
}

func TestTrendExtrapolatorPriceFloor(t *testing.T) {
	e := NewTrendExtrapolator(1, false)
	// steep decline, last far below average
	obs := []models.Observation{
		{Price: 100}, {Price: 100}, {Price: 100}, {Price: 0.02},
	}
	res := e.Forecast("PENNY", 10, obs)
	for i, p := range res.PredictedPrices {
		if p < 0.01 {
			t.Fatalf("day %d price = %v, below floor", i+1, p)
		}
	}
}

func TestTrendExtrapolatorNoiseBounded(t *testing.T) {
	e := NewTrendExtrapolator(99, true)
	obs := []models.Observation{{Price: 100}, {Price: 100}}
	res := e.Forecast("FLAT", 50, obs)

	// flat trend, so any movement is the +-1% variation
	for i, p := range res.PredictedPrices {
		if p < 99 || p > 101 {
			t.Fatalf("day %d price = %v, outside noise bounds", i+1, p)
		}
	}
}
