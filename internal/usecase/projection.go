package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"YieldProjector/internal/domain/models"
	drepo "YieldProjector/internal/domain/repository"
	icache "YieldProjector/internal/service/cache"
	"YieldProjector/internal/service/projection"
	applogger "YieldProjector/pkg/logger"
)

// ErrRefreshSuperseded is returned by a refresh cancelled because a newer one started.
var ErrRefreshSuperseded = errors.New("refresh superseded by a newer request")

// ServiceConfig identifies the tracked token and how long snapshots stay cached.
type ServiceConfig struct {
	TokenAddress string
	Platform     string
	CacheTTL     time.Duration
}

// ProjectParams are the user-facing projection inputs.
type ProjectParams struct {
	Principal          float64
	AnnualYieldPercent float64
	StartDate          time.Time
	Compounding        projection.Compounding
}

// ProjectionResult is a projection plus the market context it was computed from.
type ProjectionResult struct {
	models.Projection
	Stats        models.CurrentStats `json:"stats"`
	SeriesSource string              `json:"seriesSource,omitempty"`
	Degraded     bool                `json:"degraded"`
	FetchedAt    time.Time           `json:"fetchedAt"`
}

type ProjectionService struct {
	cfg     ServiceConfig
	gw      *MarketDataGateway
	engine  *projection.Engine
	cache   icache.BytesCache
	metrics drepo.Metrics
	l       *applogger.Logger

	mu            sync.Mutex
	refreshSeq    uint64
	cancelRefresh context.CancelFunc
}

func NewProjectionService(cfg ServiceConfig, gw *MarketDataGateway, engine *projection.Engine, cache icache.BytesCache, metrics drepo.Metrics, l *applogger.Logger) *ProjectionService {
	if cache == nil {
		cache = icache.Nop{}
	}
	if metrics == nil {
		metrics = drepo.NopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &ProjectionService{cfg: cfg, gw: gw, engine: engine, cache: cache, metrics: metrics, l: l}
}

func (s *ProjectionService) cacheKey() string {
	return "snapshot:" + s.cfg.Platform + ":" + s.cfg.TokenAddress
}

// Snapshot returns the cached snapshot for the configured token, fetching it on a miss.
// Cache errors are logged and bypassed.
func (s *ProjectionService) Snapshot(ctx context.Context) *models.Snapshot {
	if snap, ok := s.cached(ctx); ok {
		return snap
	}
	snap := s.gw.Snapshot(ctx, s.cfg.Platform, s.cfg.TokenAddress)
	s.store(ctx, snap)
	return snap
}

// Refresh forces a refetch and cancels any refresh still in flight.
func (s *ProjectionService) Refresh(ctx context.Context) (*models.Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancelRefresh != nil {
		s.cancelRefresh()
	}
	s.refreshSeq++
	seq := s.refreshSeq
	s.cancelRefresh = cancel
	s.mu.Unlock()

	snap := s.gw.Snapshot(ctx, s.cfg.Platform, s.cfg.TokenAddress)

	s.mu.Lock()
	superseded := s.refreshSeq != seq
	if !superseded {
		s.cancelRefresh = nil
	}
	s.mu.Unlock()

	if superseded {
		s.l.Debug("projection.refresh superseded")
		return nil, ErrRefreshSuperseded
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	s.store(ctx, snap)
	s.l.Info("projection.refresh done",
		applogger.String("stats_source", snap.StatsSource),
		applogger.String("series_source", snap.SeriesSource),
		applogger.Int("points", len(snap.Series)),
		applogger.Int("failures", len(snap.Failures)),
	)
	return snap, nil
}

// Project runs the engine over the current snapshot. The current price is the fallback
// base price when the window's first point has none.
func (s *ProjectionService) Project(ctx context.Context, p ProjectParams) *ProjectionResult {
	start := time.Now()
	snap := s.Snapshot(ctx)

	proj := s.engine.Project(snap.Series, projection.Params{
		Principal:          p.Principal,
		AnnualYieldPercent: p.AnnualYieldPercent,
		StartDate:          p.StartDate,
		FallbackPrice:      snap.Stats.CurrentPrice,
		Compounding:        p.Compounding,
	})

	s.metrics.RecordProjection(len(proj.Points))
	s.metrics.RecordLatency("projection", time.Since(start).Seconds())

	return &ProjectionResult{
		Projection:   proj,
		Stats:        snap.Stats,
		SeriesSource: snap.SeriesSource,
		Degraded:     snap.Degraded(),
		FetchedAt:    snap.FetchedAt,
	}
}

func (s *ProjectionService) cached(ctx context.Context) (*models.Snapshot, bool) {
	b, ok, err := s.cache.GetBytes(ctx, s.cacheKey())
	if err != nil {
		s.l.Warn("projection.cache get failed", applogger.Error(err))
		return nil, false
	}
	s.metrics.RecordCache(ok)
	if !ok {
		return nil, false
	}
	var snap models.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		s.l.Warn("projection.cache decode failed", applogger.Error(err))
		return nil, false
	}
	if snap.Series == nil {
		snap.Series = []models.PricePoint{}
	}
	return &snap, true
}

// store skips snapshots that carry no data at all; those are refetched on the next call.
func (s *ProjectionService) store(ctx context.Context, snap *models.Snapshot) {
	if snap.Stats.IsZero() && len(snap.Series) == 0 {
		return
	}
	b, err := json.Marshal(snap)
	if err != nil {
		s.l.Warn("projection.cache encode failed", applogger.Error(err))
		return
	}
	if err := s.cache.SetBytes(ctx, s.cacheKey(), b, s.cfg.CacheTTL); err != nil {
		s.l.Warn("projection.cache set failed", applogger.Error(err))
	}
}
