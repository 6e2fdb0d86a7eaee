package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"YieldProjector/internal/domain/models"
	drepo "YieldProjector/internal/domain/repository"
	applogger "YieldProjector/pkg/logger"
)

// MarketDataGateway hides provider identity and failures from callers. Its fetch methods
// never return errors: every transport or schema failure degrades to zero stats or an
// empty series. No retries are made; callers re-invoke to retry.
type MarketDataGateway struct {
	stats   []drepo.PriceProvider
	history []drepo.PriceProvider
	metrics drepo.Metrics
	l       *applogger.Logger
	now     func() time.Time
}

func NewMarketDataGateway(stats, history []drepo.PriceProvider, metrics drepo.Metrics, l *applogger.Logger) *MarketDataGateway {
	if metrics == nil {
		metrics = drepo.NopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &MarketDataGateway{stats: stats, history: history, metrics: metrics, l: l, now: time.Now}
}

// FetchCurrentStats returns the first successful provider's snapshot, or zero stats.
func (g *MarketDataGateway) FetchCurrentStats(ctx context.Context, tokenAddress string) models.CurrentStats {
	stats, _, _ := g.currentStats(ctx, tokenAddress)
	return stats
}

// FetchHistoricalSeries returns the first non-empty provider series sorted ascending, or
// an empty (non-nil) slice.
func (g *MarketDataGateway) FetchHistoricalSeries(ctx context.Context, platformID, tokenAddress string) []models.PricePoint {
	series, _, _ := g.historicalSeries(ctx, platformID, tokenAddress)
	return series
}

// Snapshot issues both fetches concurrently and records which provider answered and
// which ones failed.
func (g *MarketDataGateway) Snapshot(ctx context.Context, platformID, tokenAddress string) *models.Snapshot {
	start := time.Now()
	snap := &models.Snapshot{
		TokenAddress: tokenAddress,
		Platform:     platformID,
		FetchedAt:    g.now(),
	}

	var (
		wg                    sync.WaitGroup
		statsFails, histFails map[string]string
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		snap.Stats, snap.StatsSource, statsFails = g.currentStats(ctx, tokenAddress)
	}()
	go func() {
		defer wg.Done()
		snap.Series, snap.SeriesSource, histFails = g.historicalSeries(ctx, platformID, tokenAddress)
	}()
	wg.Wait()

	for k, v := range statsFails {
		snap.AddFailure(k, v)
	}
	for k, v := range histFails {
		snap.AddFailure(k, v)
	}

	if snap.Stats.CurrentPrice > 0 {
		g.metrics.RecordLastPrice(tokenAddress, snap.Stats.CurrentPrice)
	}
	g.metrics.RecordLatency("snapshot", time.Since(start).Seconds())
	return snap
}

func (g *MarketDataGateway) currentStats(ctx context.Context, tokenAddress string) (models.CurrentStats, string, map[string]string) {
	failures := map[string]string{}
	for _, p := range g.stats {
		stats, err := p.FetchCurrentStats(ctx, tokenAddress)
		if err == nil {
			return stats, p.Name(), failures
		}
		failures[p.Name()+".stats"] = err.Error()
		g.l.Warn("gateway.stats provider failed",
			applogger.String("provider", p.Name()),
			applogger.String("token", tokenAddress),
			applogger.Error(err),
		)
		if ctx.Err() != nil {
			break
		}
	}
	return models.CurrentStats{}, "", failures
}

func (g *MarketDataGateway) historicalSeries(ctx context.Context, platformID, tokenAddress string) ([]models.PricePoint, string, map[string]string) {
	failures := map[string]string{}
	for _, p := range g.history {
		series, err := p.FetchHistoricalSeries(ctx, platformID, tokenAddress)
		if err != nil {
			if !errors.Is(err, drepo.ErrHistoryUnsupported) {
				failures[p.Name()+".history"] = err.Error()
				g.l.Warn("gateway.history provider failed",
					applogger.String("provider", p.Name()),
					applogger.String("platform", platformID),
					applogger.String("token", tokenAddress),
					applogger.Error(err),
				)
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(series) == 0 {
			g.l.Debug("gateway.history provider returned no points", applogger.String("provider", p.Name()))
			continue
		}
		return SortSeries(series), p.Name(), failures
	}
	return []models.PricePoint{}, "", failures
}

// SortSeries returns a copy of series ordered ascending by timestamp. Upstream ordering is
// not guaranteed, and the projection engine depends on ascending input.
func SortSeries(series []models.PricePoint) []models.PricePoint {
	out := make([]models.PricePoint, len(series))
	copy(out, series)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}
