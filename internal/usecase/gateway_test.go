package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"YieldProjector/internal/domain/models"
	drepo "YieldProjector/internal/domain/repository"
	"YieldProjector/internal/service/provider"
	xhttp "YieldProjector/pkg/http"
)

const testToken = "0xToken"

type stubProvider struct {
	name   string
	stats  models.CurrentStats
	series []models.PricePoint
	err    error
	calls  atomic.Int32
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) FetchCurrentStats(context.Context, string) (models.CurrentStats, error) {
	s.calls.Add(1)
	return s.stats, s.err
}

func (s *stubProvider) FetchHistoricalSeries(context.Context, string, string) ([]models.PricePoint, error) {
	s.calls.Add(1)
	return s.series, s.err
}

type lastPriceMetrics struct {
	drepo.NopMetrics
	price float64
}

func (m *lastPriceMetrics) RecordLastPrice(_ string, price float64) { m.price = price }

func chain(ps ...drepo.PriceProvider) []drepo.PriceProvider { return ps }

func TestFetchCurrentStatsFallsThrough(t *testing.T) {
	broken := &stubProvider{name: "a", err: errors.New("boom")}
	good := &stubProvider{name: "b", stats: models.CurrentStats{CurrentPrice: 2, Volume24h: 10}}
	unused := &stubProvider{name: "c", stats: models.CurrentStats{CurrentPrice: 99}}

	g := NewMarketDataGateway(chain(broken, good, unused), nil, nil, nil)
	stats := g.FetchCurrentStats(context.Background(), testToken)

	assert.Equal(t, 2.0, stats.CurrentPrice)
	assert.Equal(t, 10.0, stats.Volume24h)
	assert.EqualValues(t, 0, unused.calls.Load())
}

func TestFetchCurrentStatsAllFailReturnsZero(t *testing.T) {
	g := NewMarketDataGateway(chain(
		&stubProvider{name: "a", err: errors.New("down")},
		&stubProvider{name: "b", err: drepo.ErrEmptyPayload},
	), nil, nil, nil)

	assert.True(t, g.FetchCurrentStats(context.Background(), testToken).IsZero())
}

func TestFetchHistoricalSeriesSortsAscending(t *testing.T) {
	p := &stubProvider{name: "h", series: []models.PricePoint{
		{Timestamp: 3000, Price: 3},
		{Timestamp: 1000, Price: 1},
		{Timestamp: 2000, Price: 2},
		{Timestamp: 1000, Price: 1.5},
	}}
	g := NewMarketDataGateway(nil, chain(p), nil, nil)

	got := g.FetchHistoricalSeries(context.Background(), "eth", testToken)
	require.Len(t, got, 4)
	assert.Equal(t, []models.PricePoint{
		{Timestamp: 1000, Price: 1},
		{Timestamp: 1000, Price: 1.5},
		{Timestamp: 2000, Price: 2},
		{Timestamp: 3000, Price: 3},
	}, got)
	assert.Equal(t, int64(3000), p.series[0].Timestamp, "provider slice must not be reordered")
}

func TestFetchHistoricalSeriesSkipsEmptyAndUnsupported(t *testing.T) {
	unsupported := &stubProvider{name: "a", err: drepo.ErrHistoryUnsupported}
	empty := &stubProvider{name: "b", series: []models.PricePoint{}}
	good := &stubProvider{name: "c", series: []models.PricePoint{{Timestamp: 1, Price: 1}}}

	g := NewMarketDataGateway(nil, chain(unsupported, empty, good), nil, nil)
	snap := g.Snapshot(context.Background(), "eth", testToken)

	assert.Len(t, snap.Series, 1)
	assert.Equal(t, "c", snap.SeriesSource)
	assert.False(t, snap.Degraded(), "unsupported history is not a failure")
}

func TestFetchHistoricalSeriesAllFailReturnsEmpty(t *testing.T) {
	g := NewMarketDataGateway(nil, chain(&stubProvider{name: "a", err: drepo.ErrNoPool}), nil, nil)

	got := g.FetchHistoricalSeries(context.Background(), "eth", testToken)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSnapshotRecordsProvenance(t *testing.T) {
	m := &lastPriceMetrics{}
	g := NewMarketDataGateway(
		chain(&stubProvider{name: "dex", err: errors.New("timeout")}, &stubProvider{name: "gecko", stats: models.CurrentStats{CurrentPrice: 1.25}}),
		chain(&stubProvider{name: "gecko", series: []models.PricePoint{{Timestamp: 2, Price: 2}, {Timestamp: 1, Price: 1}}}),
		m, nil,
	)

	snap := g.Snapshot(context.Background(), "eth", testToken)

	assert.Equal(t, testToken, snap.TokenAddress)
	assert.Equal(t, "eth", snap.Platform)
	assert.Equal(t, "gecko", snap.StatsSource)
	assert.Equal(t, "gecko", snap.SeriesSource)
	assert.Equal(t, int64(1), snap.Series[0].Timestamp)
	assert.Equal(t, map[string]string{"dex.stats": "timeout"}, snap.Failures)
	assert.True(t, snap.Degraded())
	assert.Equal(t, 1.25, m.price)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestGatewayOverFailingUpstreams(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()

	client := xhttp.NewClient()
	for name, base := range map[string]string{"status 500": failing.URL, "connection refused": closed.URL} {
		t.Run(name, func(t *testing.T) {
			gecko := provider.NewGeckoTerminal(base, "eth", 30, client, 0, 0, nil)
			dex := provider.NewDexScreener(base, client, 0, 0, nil)
			g := NewMarketDataGateway(chain(dex, gecko), chain(gecko), nil, nil)

			assert.Equal(t, models.CurrentStats{}, g.FetchCurrentStats(context.Background(), testToken))
			series := g.FetchHistoricalSeries(context.Background(), "eth", testToken)
			assert.NotNil(t, series)
			assert.Empty(t, series)

			snap := g.Snapshot(context.Background(), "eth", testToken)
			assert.Contains(t, snap.Failures, "dexscreener.stats")
			assert.Contains(t, snap.Failures, "geckoterminal.stats")
			assert.Contains(t, snap.Failures, "geckoterminal.history")
		})
	}
}

func TestGatewayOverDescendingUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/networks/eth/tokens/" + testToken + "/pools":
			w.Write([]byte(`{"data":[{"attributes":{"address":"0xPool"}}]}`))
		case "/networks/eth/pools/0xPool/ohlcv/day":
			w.Write([]byte(`{"data":{"attributes":{"ohlcv_list":[
				[1700172800,0,0,0,3,0],[1700000000,0,0,0,1,0],[1700086400,0,0,0,2,0]
			]}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	gecko := provider.NewGeckoTerminal(server.URL, "eth", 30, nil, 0, 0, nil)
	got := NewMarketDataGateway(nil, chain(gecko), nil, nil).FetchHistoricalSeries(context.Background(), "eth", testToken)

	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Timestamp, got[i].Timestamp)
	}
	assert.Equal(t, []float64{1, 2, 3}, []float64{got[0].Price, got[1].Price, got[2].Price})
}
