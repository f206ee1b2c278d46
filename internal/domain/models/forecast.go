package models

import "time"

// Model labels reported in ForecastResult.Model.
const (
	ModelSequence      = "sequence"
	ModelFallbackTrend = "fallback-trend"
	ModelFallbackEmpty = "fallback-empty"
)

// ForecastResult is the value returned to callers. PredictedPrices,
// PredictionDates and (when present) LowerBounds/UpperBounds are
// index-aligned. Note: no transport (json/http) concerns here.
type ForecastResult struct {
	Symbol          string
	PredictedPrices []float64
	PredictionDates []time.Time
	Confidence      float64
	Model           string
	LowerBounds     []float64
	UpperBounds     []float64
	MAE             *float64
	MAPE            *float64
	RMSE            *float64
	GeneratedAt     time.Time
}
