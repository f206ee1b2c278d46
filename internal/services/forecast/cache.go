package forecast

import (
	"sync"
	"time"

	"FinCast/internal/domain/models"
	domsvc "FinCast/internal/domain/service"

	"golang.org/x/sync/singleflight"
)

// TrainedModel is a fitted model together with the statistics of the
// window it was fitted on and its training-set residual metrics.
// Entries are replaced wholesale on retrain, never mutated.
type TrainedModel struct {
	Model       domsvc.SequenceModel
	Stats       models.StockStatistics
	TrainedAt   time.Time
	Accuracy    float64
	MAE         *float64
	MAPE        *float64
	RMSE        *float64
	ResidualStd float64
}

// ModelCache maps symbol -> TrainedModel with a time-to-live. Reads for
// distinct symbols never block each other; training for the same symbol
// is collapsed so at most one run is in flight per key.
type ModelCache struct {
	mu      sync.RWMutex
	entries map[string]*TrainedModel
	ttl     time.Duration
	group   singleflight.Group
	now     func() time.Time
}

// NewModelCache creates a cache whose entries soft-expire after ttl.
func NewModelCache(ttl time.Duration) *ModelCache {
	return &ModelCache{
		entries: make(map[string]*TrainedModel),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached entry for symbol if it has not expired.
func (c *ModelCache) Get(symbol string) (*TrainedModel, bool) {
	c.mu.RLock()
	m, ok := c.entries[symbol]
	c.mu.RUnlock()
	if !ok || c.now().Sub(m.TrainedAt) >= c.ttl {
		return nil, false
	}
	return m, true
}

// Put replaces the entry for symbol.
func (c *ModelCache) Put(symbol string, m *TrainedModel) {
	c.mu.Lock()
	c.entries[symbol] = m
	c.mu.Unlock()
}

// GetOrTrain returns a valid cached model or runs train. Concurrent
// callers for the same symbol share one in-flight training run; a
// failed run leaves the cache untouched so a stale entry is never
// replaced by a broken one.
func (c *ModelCache) GetOrTrain(symbol string, train func() (*TrainedModel, error)) (*TrainedModel, error) {
	if m, ok := c.Get(symbol); ok {
		return m, nil
	}
	v, err, _ := c.group.Do(symbol, func() (interface{}, error) {
		// A concurrent caller may have finished training while we
		// waited for the flight slot.
		if m, ok := c.Get(symbol); ok {
			return m, nil
		}
		m, err := train()
		if err != nil {
			return nil, err
		}
		c.Put(symbol, m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TrainedModel), nil
}
