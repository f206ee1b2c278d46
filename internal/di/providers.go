package di

import (
	"context"
	"fmt"
	"time"

	drepo "FinCast/internal/domain/repository"
	"FinCast/internal/handler/api"
	internalrepo "FinCast/internal/repository"
	"FinCast/internal/service/finnhub"
	"FinCast/internal/services/forecast"
	"FinCast/internal/usecase"
	"FinCast/pkg/cache"
	pkgch "FinCast/pkg/clickhouse"
	"FinCast/pkg/config"
	xhttp "FinCast/pkg/http"
	pkgkafka "FinCast/pkg/kafka"
	"FinCast/pkg/logger"
	"FinCast/pkg/metrics"
	"FinCast/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideHistoryStore creates the observation store, cache-wrapped when
// Redis is enabled.
func ProvideHistoryStore(cfg *config.Config, chClient *pkgch.Client, log *logger.Logger) (drepo.HistoryStore, error) {
	store := internalrepo.NewClickHouseHistory(chClient, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, err
	}

	if !cfg.Redis.Enabled {
		return store, nil
	}

	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	layered := cache.NewLayeredCache(redisCache)
	return internalrepo.NewCachedHistory(store, layered, cfg.Redis.TTL, log), nil
}

// ProvidePublisher selects the ingest backend: Kafka when configured,
// otherwise direct writes to the history store.
func ProvidePublisher(cfg *config.Config, store drepo.HistoryStore, m drepo.Metrics, log *logger.Logger) (drepo.Publisher, error) {
	if cfg.Backend.Type != "kafka" {
		return internalrepo.NewStorePublisher(store, m), nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic, m, log), nil
}

// ProvideKafkaConsumer creates the quote consumer, nil when the backend
// writes directly to storage.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.GroupID),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideQuotesHandler registers the handler for the quote topic.
func ProvideQuotesHandler(cfg *config.Config, store drepo.HistoryStore, m drepo.Metrics) *usecase.KafkaQuotesHandler {
	return usecase.NewKafkaQuotesHandler(cfg.Kafka.Topic, store, m)
}

// ProvideQuoteStream creates the Finnhub WebSocket stream.
func ProvideQuoteStream(cfg *config.Config, log *logger.Logger) drepo.QuoteStream {
	return finnhub.New(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.WebSocketURL,
		cfg.Finnhub.Symbols,
		cfg.Finnhub.ReconnectDelay,
		cfg.Finnhub.PingInterval,
		log,
	)
}

// ProvideQuoteBackfill creates the startup history backfill.
func ProvideQuoteBackfill(cfg *config.Config, store drepo.HistoryStore, log *logger.Logger) *usecase.QuoteBackfill {
	rest := finnhub.NewRESTClient(cfg.Finnhub.APIKey, cfg.Finnhub.RESTURL, 10*time.Second)
	return usecase.NewQuoteBackfill(rest, store, cfg.Finnhub.Symbols, log)
}

// ProvideQuoteCollector creates the quote collector use case.
func ProvideQuoteCollector(stream drepo.QuoteStream, pub drepo.Publisher, m drepo.Metrics, log *logger.Logger) *usecase.QuoteCollector {
	return usecase.NewQuoteCollector(stream, pub, m, log)
}

// ProvideForecaster creates the forecasting orchestrator.
func ProvideForecaster(cfg *config.Config, store drepo.HistoryStore, m drepo.Metrics, log *logger.Logger) *forecast.Orchestrator {
	return forecast.NewOrchestrator(store, m, log, forecast.Config{
		SequenceLength: cfg.Forecast.SequenceLength,
		HistoryLimit:   cfg.Forecast.HistoryLimit,
		Epochs:         cfg.Forecast.Epochs,
		LearningRate:   cfg.Forecast.LearningRate,
		ModelTTL:       cfg.Forecast.ModelTTL,
		Noise:          cfg.Forecast.Noise,
		Seed:           cfg.Forecast.Seed,
	})
}

// ProvideHistoryUsecase creates the history use case.
func ProvideHistoryUsecase(store drepo.HistoryStore) *usecase.HistoryUsecase {
	return usecase.NewHistoryUsecase(store)
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(log *logger.Logger, f *forecast.Orchestrator, h *usecase.HistoryUsecase, c *usecase.QuoteCollector) xhttp.Handler {
	return api.NewForecastEchoHandler(log, f, h, c)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	collector *usecase.QuoteCollector,
	backfill *usecase.QuoteBackfill,
	consumer *pkgkafka.Consumer,
	qh *usecase.KafkaQuotesHandler,
	chClient *pkgch.Client,
	httpHandler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, collector, backfill, consumer, qh, chClient, httpHandler)
}
