package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"YieldProjector/internal/service/ratelimit"
	"YieldProjector/internal/usecase"
	"YieldProjector/pkg/config"
	xhttp "YieldProjector/pkg/http"
	applogger "YieldProjector/pkg/logger"

	"github.com/robfig/cron/v3"
)

// refreshTimeout bounds one scheduled warm refresh.
const refreshTimeout = 30 * time.Second

// Closer is an infrastructure client released on shutdown.
type Closer interface {
	Close() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	svc        *usecase.ProjectionService
	rl         *ratelimit.Limiter
	scheduler  *cron.Cron
	closers    []Closer
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, httpServer *xhttp.Server, svc *usecase.ProjectionService, rl *ratelimit.Limiter) *App {
	return &App{cfg: cfg, l: l, httpServer: httpServer, svc: svc, rl: rl}
}

// AddCloser registers a client to close during shutdown, in registration order.
func (a *App) AddCloser(c Closer) { a.closers = append(a.closers, c) }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the application and blocks until ctx is done or the HTTP server fails.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.startScheduler(ctx); err != nil {
		return err
	}

	errc := a.httpServer.Start()
	a.l.Info("app started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("token", a.cfg.Token.Address),
		applogger.String("platform", a.cfg.Token.Platform),
		applogger.Strings("stats_providers", a.cfg.Providers.Stats),
		applogger.Strings("history_providers", a.cfg.Providers.History),
	)

	var runErr error
	select {
	case <-ctx.Done():
		a.l.Info("shutdown signal received")
	case err, ok := <-errc:
		if ok && err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// startScheduler registers the warm refresh and client-bucket sweep jobs. No scheduler
// is started when neither is enabled.
func (a *App) startScheduler(ctx context.Context) error {
	sched := cron.New(cron.WithLogger(cronLogger{a.l}))
	jobs := 0

	if a.cfg.Refresh.Enabled && a.svc != nil {
		_, err := sched.AddFunc(a.cfg.Refresh.Schedule, func() {
			rctx, cancel := context.WithTimeout(ctx, refreshTimeout)
			defer cancel()
			if _, err := a.svc.Refresh(rctx); err != nil {
				a.l.Warn("scheduled refresh failed", applogger.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("refresh schedule %q: %w", a.cfg.Refresh.Schedule, err)
		}
		jobs++
		a.l.Info("scheduled refresh enabled", applogger.String("schedule", a.cfg.Refresh.Schedule))
	}

	if a.rl != nil && a.cfg.API.IdleTTL > 0 && a.cfg.API.SweepEvery > 0 {
		sched.Schedule(cron.Every(a.cfg.API.SweepEvery), cron.FuncJob(a.sweepClients))
		jobs++
	}

	if jobs == 0 {
		return nil
	}
	a.scheduler = sched
	a.scheduler.Start()
	return nil
}

// sweepClients drops rate-limit buckets of clients idle longer than api.idle_ttl.
func (a *App) sweepClients() {
	if n := a.rl.Evict(a.cfg.API.IdleTTL); n > 0 {
		a.l.Debug("ratelimit sweep",
			applogger.Int("evicted", n),
			applogger.Int("remaining", a.rl.Len()),
		)
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.l.Info("shutting down...")

	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
	}

	var firstErr error
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.l.Warn("close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return firstErr
}

// cronLogger routes scheduler messages through the app logger.
type cronLogger struct {
	l *applogger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(kvFields(keysAndValues), applogger.Error(err))...)
}

func kvFields(kv []interface{}) []applogger.Field {
	fields := make([]applogger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, applogger.Any(key, kv[i+1]))
	}
	return fields
}
