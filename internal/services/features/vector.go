package features

import (
	"FinCast/internal/domain/models"
	"FinCast/internal/services/stats"
)

// Build turns one observation into a feature vector given the statistics
// of its enclosing window and the immediately preceding observation
// (nil for the first point).
func Build(o models.Observation, prev *models.Observation, s models.StockStatistics) models.FeatureVector {
	change := 0.0
	if prev != nil && prev.Price != 0 {
		change = (o.Price - prev.Price) / prev.Price
	}
	return models.FeatureVector{
		stats.NormalizePrice(o.Price, s),
		stats.NormalizeVolume(o.Volume),
		change,
		s.Volatility,
		s.Trend,
	}
}

// BuildSeries returns one feature vector per observation, each paired
// with its predecessor in the series.
func BuildSeries(obs []models.Observation, s models.StockStatistics) []models.FeatureVector {
	out := make([]models.FeatureVector, len(obs))
	for i := range obs {
		var prev *models.Observation
		if i > 0 {
			prev = &obs[i-1]
		}
		out[i] = Build(obs[i], prev, s)
	}
	return out
}

// BuildTrainingSet slides a length-seqLen window across the series with
// step 1. The label for each window is the normalized price of the next
// observation (next-step convention). Returns nil if the series is too
// short to produce a single pair.
func BuildTrainingSet(obs []models.Observation, s models.StockStatistics, seqLen int) []models.TrainingSample {
	if seqLen < 1 || len(obs) <= seqLen {
		return nil
	}
	vectors := BuildSeries(obs, s)
	samples := make([]models.TrainingSample, 0, len(obs)-seqLen)
	for i := 0; i+seqLen < len(obs); i++ {
		window := make([]models.FeatureVector, seqLen)
		copy(window, vectors[i:i+seqLen])
		samples = append(samples, models.TrainingSample{
			Window: window,
			Label:  stats.NormalizePrice(obs[i+seqLen].Price, s),
		})
	}
	return samples
}

// RecentWindow returns the feature vectors of the last seqLen
// observations, used to seed the autoregressive forecast.
func RecentWindow(obs []models.Observation, s models.StockStatistics, seqLen int) []models.FeatureVector {
	if len(obs) < seqLen {
		return nil
	}
	vectors := BuildSeries(obs, s)
	window := make([]models.FeatureVector, seqLen)
	copy(window, vectors[len(vectors)-seqLen:])
	return window
}
