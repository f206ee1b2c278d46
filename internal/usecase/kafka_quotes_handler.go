package usecase

import (
	"context"
	"encoding/json"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	pkgkafka "FinCast/pkg/kafka"
)

// KafkaQuotesHandler consumes quote messages and writes them to the
// history store.
type KafkaQuotesHandler struct {
	topic   string
	store   drepo.HistoryStore
	metrics drepo.Metrics
}

func NewKafkaQuotesHandler(topic string, store drepo.HistoryStore, metrics drepo.Metrics) *KafkaQuotesHandler {
	return &KafkaQuotesHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaQuotesHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, price, volume, timestamp}
func (h *KafkaQuotesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol    string  `json:"symbol"`
		Price     float64 `json:"price"`
		Volume    int64   `json:"volume"`
		Timestamp int64   `json:"timestamp"` // ms
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	ts := time.UnixMilli(m.Timestamp)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(ts).Seconds())

	start := time.Now()
	err := h.store.Store(ctx, &models.Observation{
		Symbol:    m.Symbol,
		Price:     m.Price,
		Volume:    m.Volume,
		Timestamp: ts,
	})
	h.metrics.RecordLatency("history_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaQuotesHandler)(nil)
