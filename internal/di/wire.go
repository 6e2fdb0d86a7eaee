//go:build wireinject
// +build wireinject

package di

import (
	"YieldProjector/internal/domain/repository"
	"YieldProjector/pkg/config"
	"YieldProjector/pkg/metrics"
	"YieldProjector/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),

		// Market data
		ProvideHTTPClient,
		ProvideProviderRegistry,
		ProvideGateway,

		// Projection
		ProvideEngine,
		ProvideCache,
		ProvideProjectionService,

		// HTTP
		ProvideRateLimiter,
		ProvideHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
