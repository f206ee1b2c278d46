package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	domsvc "FinCast/internal/domain/service"
	"FinCast/internal/services/features"
	"FinCast/internal/services/stats"
	xlogger "FinCast/pkg/logger"
)

// Input validation errors. Everything else the engine can go wrong on
// (short history, training faults) degrades into the fallback path.
var (
	ErrEmptySymbol    = errors.New("forecast: symbol is required")
	ErrInvalidHorizon = errors.New("forecast: horizon must be positive")
)

// Config holds the tunables of the forecasting engine.
type Config struct {
	SequenceLength int           // window length L
	HistoryLimit   int           // observations fetched per request
	Epochs         int           // training epochs
	LearningRate   float64
	ModelTTL       time.Duration // cached model validity
	Noise          bool          // volatility-scaled forecast perturbation
	Seed           int64
}

// withDefaults fills zero fields with engine defaults.
func (c Config) withDefaults() Config {
	if c.SequenceLength <= 0 {
		c.SequenceLength = 30
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 100
	}
	if c.Epochs <= 0 {
		c.Epochs = 200
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.01
	}
	if c.ModelTTL <= 0 {
		c.ModelTTL = 24 * time.Hour
	}
	return c
}

// ModelFactory builds an untrained sequence model for windows of seqLen.
type ModelFactory func(seqLen int, seed int64) domsvc.SequenceModel

// Orchestrator is the per-symbol forecasting engine: it fetches recent
// history, trains or reuses a cached sequence model and rolls it forward
// autoregressively, with a trend extrapolation fallback.
type Orchestrator struct {
	history  drepo.HistoryStore
	cache    *ModelCache
	fallback *TrendExtrapolator
	metrics  drepo.Metrics
	logger   *xlogger.Logger
	cfg      Config
	newModel ModelFactory

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithModelFactory overrides the sequence model implementation.
func WithModelFactory(f ModelFactory) Option {
	return func(o *Orchestrator) { o.newModel = f }
}

// NewOrchestrator creates the forecasting engine.
func NewOrchestrator(history drepo.HistoryStore, metrics drepo.Metrics, logger *xlogger.Logger, cfg Config, opts ...Option) *Orchestrator {
	cfg = cfg.withDefaults()
	o := &Orchestrator{
		history:  history,
		cache:    NewModelCache(cfg.ModelTTL),
		fallback: NewTrendExtrapolator(cfg.Seed, cfg.Noise),
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		newModel: func(seqLen int, seed int64) domsvc.SequenceModel {
			return NewLinearModel(seqLen, cfg.LearningRate, seed)
		},
		rng: rand.New(rand.NewSource(cfg.Seed)),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Forecast produces horizonDays of daily price predictions for symbol.
func (o *Orchestrator) Forecast(ctx context.Context, symbol string, horizonDays int) (models.ForecastResult, error) {
	if strings.TrimSpace(symbol) == "" {
		return models.ForecastResult{}, ErrEmptySymbol
	}
	if horizonDays <= 0 {
		return models.ForecastResult{}, ErrInvalidHorizon
	}

	start := o.now()
	obs, err := o.history.FetchRecent(ctx, symbol, o.cfg.HistoryLimit)
	if err != nil {
		o.logger.Warn("history fetch failed, falling back",
			xlogger.String("symbol", symbol), xlogger.Error(err))
		o.metrics.RecordError("history_fetch")
		return o.fall(symbol, horizonDays, nil), nil
	}

	if len(obs) < o.cfg.SequenceLength {
		o.logger.Info("insufficient history, falling back",
			xlogger.String("symbol", symbol), xlogger.Int("observations", len(obs)))
		return o.fall(symbol, horizonDays, obs), nil
	}

	windowStats := stats.Compute(obs)

	tm, hit, err := o.getOrTrain(ctx, symbol, obs, windowStats)
	if err != nil {
		o.logger.Warn("training failed, falling back",
			xlogger.String("symbol", symbol), xlogger.Error(err))
		o.metrics.RecordError("training")
		return o.fall(symbol, horizonDays, obs), nil
	}
	if hit {
		o.metrics.RecordCacheHit(symbol)
	}

	result, err := o.predict(tm, symbol, horizonDays, obs, windowStats, len(obs))
	if err != nil {
		o.logger.Warn("prediction failed, falling back",
			xlogger.String("symbol", symbol), xlogger.Error(err))
		o.metrics.RecordError("prediction")
		return o.fall(symbol, horizonDays, obs), nil
	}

	o.metrics.RecordForecast(result.Model, symbol)
	o.metrics.RecordLatency("forecast", o.now().Sub(start).Seconds())
	o.logger.Info("forecast complete",
		xlogger.String("symbol", symbol),
		xlogger.Int("horizon_days", horizonDays),
		xlogger.Any("confidence", result.Confidence))
	return result, nil
}

// getOrTrain returns a valid cached model or trains one; the bool
// reports whether the cache served it without training.
func (o *Orchestrator) getOrTrain(ctx context.Context, symbol string, obs []models.Observation, s models.StockStatistics) (*TrainedModel, bool, error) {
	if m, ok := o.cache.Get(symbol); ok {
		return m, true, nil
	}
	o.metrics.RecordCacheMiss(symbol)
	m, err := o.cache.GetOrTrain(symbol, func() (*TrainedModel, error) {
		return o.train(ctx, symbol, obs, s)
	})
	return m, false, err
}

// train fits a fresh model and derives residual metrics by replaying the
// training set through it, denormalized to price units.
func (o *Orchestrator) train(ctx context.Context, symbol string, obs []models.Observation, s models.StockStatistics) (*TrainedModel, error) {
	samples := features.BuildTrainingSet(obs, s, o.cfg.SequenceLength)
	if len(samples) == 0 {
		return nil, fmt.Errorf("no training pairs for %d observations", len(obs))
	}

	start := o.now()
	model := o.newModel(o.cfg.SequenceLength, o.cfg.Seed)
	for epoch := 0; epoch < o.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("training aborted at epoch %d: %w", epoch, err)
		}
		if err := model.Train(samples); err != nil {
			return nil, fmt.Errorf("epoch %d: %w", epoch, err)
		}
	}
	o.metrics.RecordTrainingRun(symbol)
	o.metrics.RecordLatency("training", o.now().Sub(start).Seconds())

	tm := &TrainedModel{
		Model:     model,
		Stats:     s,
		TrainedAt: o.now(),
	}

	residuals := make([]float64, 0, len(samples))
	var sumAbs, sumSq, sumPct, mseNorm float64
	for _, sample := range samples {
		predNorm, err := model.Predict(sample.Window)
		if err != nil {
			return nil, fmt.Errorf("residual replay: %w", err)
		}
		diff := predNorm - sample.Label
		mseNorm += diff * diff

		pred := stats.DenormalizePrice(predNorm, s)
		actual := stats.DenormalizePrice(sample.Label, s)
		resid := pred - actual
		residuals = append(residuals, resid)
		sumAbs += math.Abs(resid)
		sumSq += resid * resid
		if actual != 0 {
			sumPct += math.Abs(resid) / actual
		}
	}

	n := float64(len(residuals))
	mae := sumAbs / n
	rmse := math.Sqrt(sumSq / n)
	mape := sumPct / n * 100
	tm.MAE = &mae
	tm.RMSE = &rmse
	tm.MAPE = &mape
	tm.ResidualStd = stddev(residuals)
	tm.Accuracy = clamp(1-mseNorm/n, 0, 0.95)

	o.logger.Info("model trained",
		xlogger.String("symbol", symbol),
		xlogger.Int("samples", len(samples)),
		xlogger.Any("accuracy", tm.Accuracy))
	return tm, nil
}

// predict rolls the model forward autoregressively: each predicted price
// becomes the next synthetic observation, the window slides by one.
func (o *Orchestrator) predict(tm *TrainedModel, symbol string, horizonDays int, obs []models.Observation, windowStats models.StockStatistics, dataPoints int) (models.ForecastResult, error) {
	window := features.RecentWindow(obs, tm.Stats, o.cfg.SequenceLength)
	if window == nil {
		return models.ForecastResult{}, fmt.Errorf("history shorter than window")
	}

	now := o.now()
	prevPrice := obs[len(obs)-1].Price
	prices := make([]float64, 0, horizonDays)
	dates := make([]time.Time, 0, horizonDays)

	for day := 1; day <= horizonDays; day++ {
		norm, err := tm.Model.Predict(window)
		if err != nil {
			return models.ForecastResult{}, fmt.Errorf("day %d: %w", day, err)
		}
		price := stats.DenormalizePrice(norm, tm.Stats)
		price += o.perturbation(windowStats.Volatility, price)
		if price < 0.01 {
			price = 0.01
		}
		prices = append(prices, price)
		dates = append(dates, now.AddDate(0, 0, day))

		next := features.Build(
			models.Observation{Symbol: symbol, Price: price},
			&models.Observation{Price: prevPrice},
			tm.Stats,
		)
		window = append(window[1:], next)
		prevPrice = price
	}

	lower, upper := o.bounds(prices, tm, windowStats)

	return models.ForecastResult{
		Symbol:          symbol,
		PredictedPrices: prices,
		PredictionDates: dates,
		Confidence:      confidence(tm.Accuracy, windowStats, dataPoints),
		Model:           models.ModelSequence,
		LowerBounds:     lower,
		UpperBounds:     upper,
		MAE:             tm.MAE,
		MAPE:            tm.MAPE,
		RMSE:            tm.RMSE,
		GeneratedAt:     now,
	}, nil
}

// bounds derives a 95%-style prediction interval from the training
// residual spread, falling back to volatility-scaled average price when
// the residual std is degenerate.
func (o *Orchestrator) bounds(prices []float64, tm *TrainedModel, s models.StockStatistics) ([]float64, []float64) {
	residualStd := tm.ResidualStd
	if residualStd <= 0 {
		residualStd = s.Volatility * s.AvgPrice
	}
	const z = 1.96
	const horizonScale = 0.5 // dampen the interval for short horizons

	lower := make([]float64, len(prices))
	upper := make([]float64, len(prices))
	for i, p := range prices {
		margin := z * residualStd * horizonScale
		lower[i] = math.Max(p-margin, 0.01)
		upper[i] = p + margin
	}
	return lower, upper
}

// perturbation is the optional volatility-scaled random term added to
// each autoregressive step. Disabled via config for reproducible runs.
func (o *Orchestrator) perturbation(volatility, price float64) float64 {
	if !o.cfg.Noise {
		return 0
	}
	o.mu.Lock()
	v := (o.rng.Float64() - 0.5) * volatility * price * 0.1
	o.mu.Unlock()
	return v
}

func (o *Orchestrator) fall(symbol string, horizonDays int, obs []models.Observation) models.ForecastResult {
	result := o.fallback.Forecast(symbol, horizonDays, obs)
	o.metrics.RecordForecast(result.Model, symbol)
	return result
}

// confidence combines training accuracy with data sufficiency,
// volatility and trend strength, clamped to [0.3, 0.95].
func confidence(accuracy float64, s models.StockStatistics, dataPoints int) float64 {
	dataQuality := math.Min(float64(dataPoints)/100, 1)
	volatilityFactor := math.Max(0.5, 1-s.Volatility)
	trendFactor := 0.8
	if math.Abs(s.Trend) > 0.01 {
		trendFactor = 1.0
	}
	return clamp(accuracy*dataQuality*volatilityFactor*trendFactor, 0.3, 0.95)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	variance := 0.0
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance)
}

var _ domsvc.Forecaster = (*Orchestrator)(nil)
