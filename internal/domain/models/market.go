package models

import "time"

// Observation is one historical price/volume point for a symbol.
// Immutable once recorded; the history store returns them in ascending
// timestamp order.
type Observation struct {
	Symbol    string
	Price     float64
	Volume    int64
	Timestamp time.Time
}

// StockStatistics describes one historical window of observations.
// Volatility is the population standard deviation of period-over-period
// returns; Trend is the OLS slope of price against position index.
type StockStatistics struct {
	AvgPrice   float64
	MinPrice   float64
	MaxPrice   float64
	Volatility float64
	Trend      float64
}

// FeatureDim is the width of a FeatureVector.
const FeatureDim = 5

// FeatureVector is the fixed model input derived from one observation:
// [normalized price, normalized volume, price change fraction, volatility, trend].
type FeatureVector [FeatureDim]float64

// TrainingSample pairs a fixed-length window of feature vectors with the
// normalized price of the observation that follows the window.
type TrainingSample struct {
	Window []FeatureVector
	Label  float64
}
