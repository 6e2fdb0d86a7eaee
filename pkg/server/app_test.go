package server

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"YieldProjector/internal/service/projection"
	"YieldProjector/internal/service/ratelimit"
	"YieldProjector/internal/usecase"
	"YieldProjector/pkg/config"
	xhttp "YieldProjector/pkg/http"
	applogger "YieldProjector/pkg/logger"
)

type closeRecorder struct{ closed bool }

func (c *closeRecorder) Close() error {
	c.closed = true
	return errors.New("already closed")
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	reg := prometheus.NewRegistry()
	srv := xhttp.NewServer(nil, applogger.Nop(),
		xhttp.WithHost("127.0.0.1"),
		xhttp.WithPort(0),
		xhttp.WithMetrics("", reg, reg),
	)
	return New(cfg, applogger.Nop(), srv, nil, nil)
}

func TestRunContextStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	app := newTestApp(t, cfg)
	closer := &closeRecorder{}
	app.AddCloser(closer)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.True(t, closer.closed)
}

func TestRunContextRejectsBadSchedule(t *testing.T) {
	cfg := config.Default()
	cfg.Refresh.Enabled = true
	cfg.Refresh.Schedule = "every now and then"
	app := newTestApp(t, cfg)
	app.svc = usecase.NewProjectionService(usecase.ServiceConfig{},
		usecase.NewMarketDataGateway(nil, nil, nil, nil),
		projection.NewEngine(projection.Config{}), nil, nil, nil)

	err := app.RunContext(context.Background())
	assert.ErrorContains(t, err, "every now and then")
}

func TestSchedulerSkippedWithoutService(t *testing.T) {
	cfg := config.Default()
	cfg.Refresh.Enabled = true
	app := newTestApp(t, cfg)

	require.NoError(t, app.startScheduler(context.Background()))
	assert.Nil(t, app.scheduler)
}

func TestSchedulerSweepsIdleClients(t *testing.T) {
	cfg := config.Default()
	cfg.API.IdleTTL = time.Millisecond
	cfg.API.SweepEvery = time.Second
	app := newTestApp(t, cfg)
	app.rl = ratelimit.New(1, 1)

	for i := 0; i < 500; i++ {
		app.rl.Allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	require.Equal(t, 500, app.rl.Len())

	require.NoError(t, app.startScheduler(context.Background()))
	require.NotNil(t, app.scheduler)
	defer func() { <-app.scheduler.Stop().Done() }()

	require.Eventually(t, func() bool { return app.rl.Len() == 0 }, 5*time.Second, 50*time.Millisecond)
}

func TestSweepDisabledWithoutIdleTTL(t *testing.T) {
	cfg := config.Default()
	cfg.API.IdleTTL = 0
	app := newTestApp(t, cfg)
	app.rl = ratelimit.New(1, 1)

	require.NoError(t, app.startScheduler(context.Background()))
	assert.Nil(t, app.scheduler)
}

func TestSweepClientsKeepsActiveBuckets(t *testing.T) {
	cfg := config.Default()
	cfg.API.IdleTTL = time.Hour
	app := newTestApp(t, cfg)
	app.rl = ratelimit.New(1, 1)
	app.rl.Allow("10.0.0.1")

	app.sweepClients()
	assert.Equal(t, 1, app.rl.Len())
}

func TestKVFields(t *testing.T) {
	fields := kvFields([]interface{}{"a", 1, 2, "b", "dangling"})
	require.Len(t, fields, 2)
	k, v := fields[0].GetKeyValue()
	assert.Equal(t, "a", k)
	assert.Equal(t, 1, v)
	k, _ = fields[1].GetKeyValue()
	assert.Equal(t, "2", k)
}
