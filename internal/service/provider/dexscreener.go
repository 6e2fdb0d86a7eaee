package provider

import (
	"context"
	"fmt"
	"net/url"

	"YieldProjector/internal/domain/models"
	drepo "YieldProjector/internal/domain/repository"
	xhttp "YieldProjector/pkg/http"

	"github.com/tidwall/gjson"
)

// DexScreener reads the aggregator token-pairs endpoint. pairs[0] is the most liquid pair.
type DexScreener struct {
	up upstream
}

func NewDexScreener(baseURL string, client *xhttp.Client, ratePerSec float64, burst int, m drepo.Metrics) *DexScreener {
	return &DexScreener{up: newUpstream("dexscreener", baseURL, client, ratePerSec, burst, m)}
}

func (d *DexScreener) Name() string { return d.up.name }

func (d *DexScreener) FetchCurrentStats(ctx context.Context, tokenAddress string) (models.CurrentStats, error) {
	body, err := d.up.get(ctx, opStats, "/tokens/"+url.PathEscape(tokenAddress), nil)
	if err != nil {
		return models.CurrentStats{}, err
	}
	if !gjson.ValidBytes(body) {
		return models.CurrentStats{}, fmt.Errorf("dexscreener stats: %w", drepo.ErrEmptyPayload)
	}

	pair := gjson.GetBytes(body, "pairs.0")
	if !pair.IsObject() {
		return models.CurrentStats{}, fmt.Errorf("dexscreener stats: no pairs: %w", drepo.ErrEmptyPayload)
	}

	return statsFrom(pair,
		[]string{"priceUsd", "price_usd"},
		[]string{"priceChange.h24", "price_change_24h"},
		[]string{"fdv", "marketCap"},
		[]string{"volume.h24", "volume24h"},
	), nil
}

// FetchHistoricalSeries is not offered by this upstream.
func (d *DexScreener) FetchHistoricalSeries(context.Context, string, string) ([]models.PricePoint, error) {
	return nil, drepo.ErrHistoryUnsupported
}

var _ drepo.PriceProvider = (*DexScreener)(nil)
