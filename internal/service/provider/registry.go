package provider

import (
	"fmt"

	drepo "YieldProjector/internal/domain/repository"
	"YieldProjector/pkg/config"
	xhttp "YieldProjector/pkg/http"
)

// Registry builds every known adapter once and hands out ordered chains by name.
type Registry struct {
	byName map[string]drepo.PriceProvider
}

// NewRegistry constructs all adapters from configuration, sharing one HTTP client.
func NewRegistry(cfg *config.Config, client *xhttp.Client, m drepo.Metrics) *Registry {
	p := cfg.Providers
	r := &Registry{byName: map[string]drepo.PriceProvider{}}
	r.Register(NewDexScreener(p.DexScreener.BaseURL, client, p.DexScreener.RatePerSecond, p.DexScreener.Burst, m))
	r.Register(NewGeckoTerminal(p.GeckoTerminal.BaseURL, cfg.Token.Platform, p.GeckoTerminal.OHLCVLimit, client,
		p.GeckoTerminal.RatePerSecond, p.GeckoTerminal.Burst, m))
	r.Register(NewAggregator(p.Aggregator.BaseURL, cfg.Token.ChainID, p.Aggregator.APIKey, client,
		p.Aggregator.RatePerSecond, p.Aggregator.Burst, m))
	return r
}

// Register adds or replaces an adapter under its Name().
func (r *Registry) Register(p drepo.PriceProvider) {
	r.byName[p.Name()] = p
}

// Chain resolves names in order. Unknown names are an error.
func (r *Registry) Chain(names []string) ([]drepo.PriceProvider, error) {
	out := make([]drepo.PriceProvider, 0, len(names))
	for _, n := range names {
		p, ok := r.byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown provider %q", n)
		}
		out = append(out, p)
	}
	return out, nil
}
