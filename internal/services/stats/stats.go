package stats

import (
	"math"

	"FinCast/internal/domain/models"
)

// Compute returns descriptive statistics over a window of observations.
// Windows with fewer than 2 points get zero volatility and trend; this
// is a documented degenerate case, not an error.
func Compute(obs []models.Observation) models.StockStatistics {
	if len(obs) == 0 {
		return models.StockStatistics{}
	}

	sum := 0.0
	min := obs[0].Price
	max := obs[0].Price
	for _, o := range obs {
		sum += o.Price
		if o.Price < min {
			min = o.Price
		}
		if o.Price > max {
			max = o.Price
		}
	}

	return models.StockStatistics{
		AvgPrice:   sum / float64(len(obs)),
		MinPrice:   min,
		MaxPrice:   max,
		Volatility: volatility(obs),
		Trend:      trend(obs),
	}
}

// volatility is the population standard deviation of period returns
// r_i = (p_i - p_{i-1}) / p_{i-1}.
func volatility(obs []models.Observation) float64 {
	if len(obs) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(obs)-1)
	sum := 0.0
	for i := 1; i < len(obs); i++ {
		r := (obs[i].Price - obs[i-1].Price) / obs[i-1].Price
		returns = append(returns, r)
		sum += r
	}
	mean := sum / float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	return math.Sqrt(variance)
}

// trend is the OLS slope of price against position index 0..n-1.
func trend(obs []models.Observation) float64 {
	n := len(obs)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, o := range obs {
		x := float64(i)
		sumX += x
		sumY += o.Price
		sumXY += x * o.Price
		sumX2 += x * x
	}
	fn := float64(n)
	denom := fn*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// NormalizePrice min-max scales a price into [0,1] over the window
// range. A flat window maps every price to 0.5.
func NormalizePrice(price float64, s models.StockStatistics) float64 {
	if s.MaxPrice == s.MinPrice {
		return 0.5
	}
	return (price - s.MinPrice) / (s.MaxPrice - s.MinPrice)
}

// DenormalizePrice inverts NormalizePrice.
func DenormalizePrice(normalized float64, s models.StockStatistics) float64 {
	return normalized*(s.MaxPrice-s.MinPrice) + s.MinPrice
}

// NormalizeVolume caps volume at 1M shares and scales into [0,1].
func NormalizeVolume(volume int64) float64 {
	return math.Min(float64(volume)/1_000_000, 1)
}
