package repository

import (
	"context"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	"FinCast/pkg/kafka"
	"FinCast/pkg/logger"
)

// quoteMessage is the wire form of an observation on the quote topic.
type quoteMessage struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume    int64   `json:"volume"`
	Timestamp int64   `json:"timestamp"`
}

// KafkaPublisher forwards observations to a Kafka topic keyed by symbol.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
	metrics  drepo.Metrics
	logger   *logger.Logger
}

// NewKafkaPublisher creates a Kafka-backed observation publisher.
func NewKafkaPublisher(producer *kafka.Producer, topic string, metrics drepo.Metrics, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		metrics:  metrics,
		logger:   log,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, o *models.Observation) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(o.Symbol), toQuoteMessage(o)); err != nil {
		p.metrics.RecordError("kafka_publish")
		return fmt.Errorf("publish quote %s: %w", o.Symbol, err)
	}
	p.metrics.RecordMessageSent("kafka", o.Symbol)
	return nil
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, obs []*models.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(obs))
	for _, o := range obs {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(o.Symbol),
			Value: toQuoteMessage(o),
		})
	}
	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		p.metrics.RecordError("kafka_publish")
		return fmt.Errorf("publish quote batch: %w", err)
	}
	for _, o := range obs {
		p.metrics.RecordMessageSent("kafka", o.Symbol)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

func toQuoteMessage(o *models.Observation) quoteMessage {
	return quoteMessage{
		Symbol:    o.Symbol,
		Price:     o.Price,
		Volume:    o.Volume,
		Timestamp: o.Timestamp.UnixMilli(),
	}
}

func fromQuoteMessage(m quoteMessage) *models.Observation {
	return &models.Observation{
		Symbol:    m.Symbol,
		Price:     m.Price,
		Volume:    m.Volume,
		Timestamp: time.UnixMilli(m.Timestamp),
	}
}

var _ drepo.Publisher = (*KafkaPublisher)(nil)
