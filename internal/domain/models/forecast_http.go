package models

import "time"

// Requests for forecast HTTP endpoints. Defined in domain for consistency and reuse.

type ForecastRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Days   int    `query:"days" json:"days" default:"7" validate:"gte=1,lte=30"`
}

type HistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}

// ForecastResponse is the JSON shape of a ForecastResult.
type ForecastResponse struct {
	Symbol          string      `json:"symbol"`
	PredictedPrices []float64   `json:"predictedPrices"`
	PredictionDates []time.Time `json:"predictionDates"`
	Confidence      float64     `json:"confidence"`
	Model           string      `json:"modelUsed"`
	LowerBounds     []float64   `json:"lowerBounds,omitempty"`
	UpperBounds     []float64   `json:"upperBounds,omitempty"`
	MAE             *float64    `json:"mae,omitempty"`
	MAPE            *float64    `json:"mape,omitempty"`
	RMSE            *float64    `json:"rmse,omitempty"`
	GeneratedAt     time.Time   `json:"generatedAt"`
}

// ToForecastResponse maps a domain result to its transport shape.
func ToForecastResponse(r ForecastResult) ForecastResponse {
	return ForecastResponse{
		Symbol:          r.Symbol,
		PredictedPrices: r.PredictedPrices,
		PredictionDates: r.PredictionDates,
		Confidence:      r.Confidence,
		Model:           r.Model,
		LowerBounds:     r.LowerBounds,
		UpperBounds:     r.UpperBounds,
		MAE:             r.MAE,
		MAPE:            r.MAPE,
		RMSE:            r.RMSE,
		GeneratedAt:     r.GeneratedAt,
	}
}

// ObservationResponse is the JSON shape of one history point.
type ObservationResponse struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}
