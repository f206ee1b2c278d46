package service

import (
	"context"

	"FinCast/internal/domain/models"
)

// SequenceModel is a trainable regressor over fixed-length windows of
// feature vectors. Train fits internal parameters on one pass over the
// dataset and is called once per epoch by the orchestrator. Predict is
// deterministic for fixed parameters; implementations with stochastic
// initialization must be seed-controllable.
type SequenceModel interface {
	Train(samples []models.TrainingSample) error
	Predict(window []models.FeatureVector) (float64, error)
}

// Forecaster produces a multi-day price forecast for a symbol.
// Insufficient history and training failures never surface as errors;
// they degrade into the fallback path and are visible through the
// result's Model label. Only caller misuse (empty symbol, horizon <= 0)
// returns an error.
type Forecaster interface {
	Forecast(ctx context.Context, symbol string, horizonDays int) (models.ForecastResult, error)
}
