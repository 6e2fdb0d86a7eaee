package di

import (
	"fmt"

	"YieldProjector/internal/domain/repository"
	"YieldProjector/internal/handler/api"
	icache "YieldProjector/internal/service/cache"
	"YieldProjector/internal/service/projection"
	"YieldProjector/internal/service/provider"
	"YieldProjector/internal/service/ratelimit"
	"YieldProjector/internal/usecase"
	"YieldProjector/pkg/config"
	xhttp "YieldProjector/pkg/http"
	applogger "YieldProjector/pkg/logger"
	"YieldProjector/pkg/metrics"
	"YieldProjector/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideHTTPClient creates the shared outbound client bounded by providers.timeout and
// providers.max_body_bytes.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.Providers.Timeout),
		xhttp.WithMaxBody(cfg.Providers.MaxBodyBytes),
	)
}

// ProvideProviderRegistry builds every known upstream adapter.
func ProvideProviderRegistry(cfg *config.Config, client *xhttp.Client, m repository.Metrics) *provider.Registry {
	return provider.NewRegistry(cfg, client, m)
}

// ProvideGateway resolves the configured provider chains.
func ProvideGateway(cfg *config.Config, reg *provider.Registry, m repository.Metrics, l *applogger.Logger) (*usecase.MarketDataGateway, error) {
	stats, err := reg.Chain(cfg.Providers.Stats)
	if err != nil {
		return nil, fmt.Errorf("stats providers: %w", err)
	}
	history, err := reg.Chain(cfg.Providers.History)
	if err != nil {
		return nil, fmt.Errorf("history providers: %w", err)
	}
	return usecase.NewMarketDataGateway(stats, history, m, l), nil
}

// ProvideEngine creates the projection engine.
func ProvideEngine(cfg *config.Config) (*projection.Engine, error) {
	loc, err := cfg.Projection.Location()
	if err != nil {
		return nil, fmt.Errorf("projection timezone: %w", err)
	}
	return projection.NewEngine(projection.Config{
		FallbackWindow: cfg.Projection.FallbackWindow,
		Location:       loc,
		Compounding:    projection.Compounding(cfg.Projection.Compounding),
	}), nil
}

// ProvideCache creates the snapshot cache backend.
func ProvideCache(cfg *config.Config) (icache.BytesCache, error) {
	return icache.New(cfg)
}

// ProvideProjectionService creates the projection use case for the configured token.
func ProvideProjectionService(
	cfg *config.Config,
	gw *usecase.MarketDataGateway,
	engine *projection.Engine,
	cache icache.BytesCache,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ProjectionService {
	return usecase.NewProjectionService(usecase.ServiceConfig{
		TokenAddress: cfg.Token.Address,
		Platform:     cfg.Token.Platform,
		CacheTTL:     cfg.Cache.TTL,
	}, gw, engine, cache, m, l)
}

// ProvideRateLimiter creates the per-client API limiter.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.API.RatePerSecond, cfg.API.Burst)
}

// ProvideHandler creates the Echo handler.
func ProvideHandler(cfg *config.Config, l *applogger.Logger, svc *usecase.ProjectionService, rl *ratelimit.Limiter) (*api.ProjectionEchoHandler, error) {
	loc, err := cfg.Projection.Location()
	if err != nil {
		return nil, fmt.Errorf("projection timezone: %w", err)
	}
	return api.NewProjectionEchoHandler(l, svc, rl, api.HandlerConfig{
		DefaultAPR: cfg.Projection.DefaultAPR,
		Location:   loc,
	}), nil
}

// ProvideHTTPServer creates the Echo server with routes registered.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.ProjectionEchoHandler) *xhttp.Server {
	path := ""
	if cfg.Metrics.Enabled {
		path = cfg.Metrics.Path
	}
	return xhttp.NewServer(h, l,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(path, prometheus.DefaultRegisterer, prometheus.DefaultGatherer),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	svc *usecase.ProjectionService,
	rl *ratelimit.Limiter,
	cache icache.BytesCache,
) *server.App {
	app := server.New(cfg, l, srv, svc, rl)
	if c, ok := cache.(server.Closer); ok {
		app.AddCloser(c)
	}
	return app
}
