//go:build wireinject
// +build wireinject

package di

import (
	"FinCast/pkg/config"
	"FinCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,

		// Repositories
		ProvideHistoryStore,
		ProvidePublisher,
		ProvideQuoteStream,

		// Use cases
		ProvideQuoteCollector,
		ProvideQuoteBackfill,
		ProvideForecaster,
		ProvideHistoryUsecase,
		ProvideKafkaConsumer,
		ProvideQuotesHandler,

		// HTTP edge
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
