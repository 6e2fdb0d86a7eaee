package models

import "time"

// PricePoint is one normalized daily observation. Timestamp is epoch milliseconds (UTC).
type PricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

// Time returns the point's timestamp as a time.Time in UTC.
func (p PricePoint) Time() time.Time { return time.UnixMilli(p.Timestamp).UTC() }

// CurrentStats is the provider-independent market snapshot. Every field is 0 when unobtainable.
type CurrentStats struct {
	CurrentPrice   float64 `json:"currentPrice"`
	PriceChange24h float64 `json:"priceChange24h"`
	MarketCap      float64 `json:"marketCap"`
	Volume24h      float64 `json:"volume24h"`
}

// IsZero reports whether no field carries data.
func (s CurrentStats) IsZero() bool {
	return s == CurrentStats{}
}

// Snapshot bundles one refresh cycle together with its provenance, so callers can tell a
// provider-reported zero from a zero produced by failure.
type Snapshot struct {
	TokenAddress string            `json:"tokenAddress"`
	Platform     string            `json:"platform"`
	Stats        CurrentStats      `json:"stats"`
	Series       []PricePoint      `json:"series"`
	StatsSource  string            `json:"statsSource,omitempty"`
	SeriesSource string            `json:"seriesSource,omitempty"`
	Failures     map[string]string `json:"failures,omitempty"`
	FetchedAt    time.Time         `json:"fetchedAt"`
}

// Degraded reports whether at least one provider failed during the refresh.
func (s *Snapshot) Degraded() bool { return len(s.Failures) > 0 }

// AddFailure records why a provider call failed, keyed by "<provider>.<op>".
func (s *Snapshot) AddFailure(key, reason string) {
	if s.Failures == nil {
		s.Failures = make(map[string]string)
	}
	s.Failures[key] = reason
}
