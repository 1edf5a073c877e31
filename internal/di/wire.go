//go:build wireinject
// +build wireinject

package di

import (
	"SentiPull/pkg/config"
	"SentiPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideClickHouseClient,
		ProvideSnapshotCache,

		// Repositories and sources
		ProvidePostSource,
		ProvideHistoryStore,
		ProvideSnapshotWriter,
		ProvideSinks,

		// Use cases
		ProvideSentiment,
		ProvideAggregator,
		ProvideFetchLimiter,
		ProvidePipeline,

		// Dashboard
		ProvideHub,
		ProvideDashboardHandler,
		ProvideHTTPServer,

		// Application
		ProvideApp,
	)
	return &server.App{}, nil
}
