package provider

import (
	"context"
	"fmt"

	"YieldProjector/internal/domain/models"
	drepo "YieldProjector/internal/domain/repository"
	xhttp "YieldProjector/pkg/http"

	"github.com/tidwall/gjson"
)

// Aggregator reads an exchange-aggregator price-info endpoint keyed by chain id.
// The payload's data may be an object or a one-element array; both are accepted.
type Aggregator struct {
	up      upstream
	chainID string
}

func NewAggregator(baseURL, chainID, apiKey string, client *xhttp.Client, ratePerSec float64, burst int, m drepo.Metrics) *Aggregator {
	a := &Aggregator{
		up:      newUpstream("aggregator", baseURL, client, ratePerSec, burst, m),
		chainID: chainID,
	}
	if apiKey != "" {
		a.up.headers["X-API-Key"] = apiKey
	}
	return a
}

func (a *Aggregator) Name() string { return a.up.name }

func (a *Aggregator) FetchCurrentStats(ctx context.Context, tokenAddress string) (models.CurrentStats, error) {
	body, err := a.up.get(ctx, opStats, "", map[string][]string{
		"chainId":      {a.chainID},
		"tokenAddress": {tokenAddress},
	})
	if err != nil {
		return models.CurrentStats{}, err
	}

	root := gjson.ParseBytes(body)
	if code := root.Get("code"); code.Exists() && code.String() != "0" {
		return models.CurrentStats{}, fmt.Errorf("aggregator stats: code %s: %s", code.String(), root.Get("msg").String())
	}

	data := root.Get("data")
	if data.IsArray() {
		data = data.Get("0")
	}
	if !data.IsObject() {
		return models.CurrentStats{}, fmt.Errorf("aggregator stats: %w", drepo.ErrEmptyPayload)
	}

	return statsFrom(data,
		[]string{"priceUsd", "price"},
		[]string{"priceChange24h", "priceChange24H"},
		[]string{"fdv", "marketCap"},
		[]string{"volume24h", "volume24H"},
	), nil
}

// FetchHistoricalSeries is not offered by this upstream.
func (a *Aggregator) FetchHistoricalSeries(context.Context, string, string) ([]models.PricePoint, error) {
	return nil, drepo.ErrHistoryUnsupported
}

var _ drepo.PriceProvider = (*Aggregator)(nil)
