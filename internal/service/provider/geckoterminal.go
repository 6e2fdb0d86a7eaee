package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"YieldProjector/internal/domain/models"
	drepo "YieldProjector/internal/domain/repository"
	xhttp "YieldProjector/pkg/http"

	"github.com/tidwall/gjson"
)

// GeckoTerminal reads the on-chain pool indexer. It is the only adapter with history:
// resolve the token's top pool, then read that pool's daily OHLCV bars.
type GeckoTerminal struct {
	up         upstream
	platform   string
	ohlcvLimit int
}

func NewGeckoTerminal(baseURL, platform string, ohlcvLimit int, client *xhttp.Client, ratePerSec float64, burst int, m drepo.Metrics) *GeckoTerminal {
	if ohlcvLimit <= 0 {
		ohlcvLimit = 365
	}
	g := &GeckoTerminal{
		up:         newUpstream("geckoterminal", baseURL, client, ratePerSec, burst, m),
		platform:   platform,
		ohlcvLimit: ohlcvLimit,
	}
	g.up.headers["Accept"] = "application/json;version=20230302"
	return g
}

func (g *GeckoTerminal) Name() string { return g.up.name }

func (g *GeckoTerminal) FetchCurrentStats(ctx context.Context, tokenAddress string) (models.CurrentStats, error) {
	path := fmt.Sprintf("/networks/%s/tokens/%s", url.PathEscape(g.platform), url.PathEscape(tokenAddress))
	body, err := g.up.get(ctx, opStats, path, nil)
	if err != nil {
		return models.CurrentStats{}, err
	}

	attrs := gjson.GetBytes(body, "data.attributes")
	if !attrs.IsObject() {
		return models.CurrentStats{}, fmt.Errorf("geckoterminal stats: %w", drepo.ErrEmptyPayload)
	}

	return statsFrom(attrs,
		[]string{"price_usd", "priceUsd"},
		[]string{"price_change_percentage.h24"},
		[]string{"fdv_usd", "market_cap_usd"},
		[]string{"total_volume_usd", "volume_usd.h24"},
	), nil
}

// FetchHistoricalSeries returns the top pool's daily closes in upstream order.
func (g *GeckoTerminal) FetchHistoricalSeries(ctx context.Context, platformID, tokenAddress string) ([]models.PricePoint, error) {
	if platformID == "" {
		platformID = g.platform
	}

	pool, err := g.topPool(ctx, platformID, tokenAddress)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/networks/%s/pools/%s/ohlcv/day", url.PathEscape(platformID), url.PathEscape(pool))
	body, err := g.up.get(ctx, opHistory, path, map[string][]string{
		"limit": {strconv.Itoa(g.ohlcvLimit)},
	})
	if err != nil {
		return nil, err
	}

	list := gjson.GetBytes(body, "data.attributes.ohlcv_list")
	if !list.IsArray() {
		return nil, fmt.Errorf("geckoterminal ohlcv %s: %w", pool, drepo.ErrEmptyPayload)
	}
	return closesFromOHLCV(list), nil
}

func (g *GeckoTerminal) topPool(ctx context.Context, platformID, tokenAddress string) (string, error) {
	path := fmt.Sprintf("/networks/%s/tokens/%s/pools", url.PathEscape(platformID), url.PathEscape(tokenAddress))
	body, err := g.up.get(ctx, opPools, path, nil)
	if err != nil {
		return "", err
	}

	addr := gjson.GetBytes(body, "data.0.attributes.address").String()
	if addr == "" {
		return "", fmt.Errorf("geckoterminal pools %s: %w", tokenAddress, drepo.ErrNoPool)
	}
	return addr, nil
}

var _ drepo.PriceProvider = (*GeckoTerminal)(nil)
