package repository

import (
	"context"
	"errors"

	"YieldProjector/internal/domain/models"
)

var (
	// ErrHistoryUnsupported is returned by providers that expose no historical endpoint.
	ErrHistoryUnsupported = errors.New("provider has no historical series")
	// ErrNoPool is returned when pool discovery yields no pool for the token.
	ErrNoPool = errors.New("no trading pool found")
	// ErrEmptyPayload is returned when a provider responds without the expected data.
	ErrEmptyPayload = errors.New("provider returned no usable data")
)

// PriceProvider is one upstream market-data source normalized to the canonical shapes.
// Implementations return errors; callers decide how to degrade.
type PriceProvider interface {
	Name() string
	FetchCurrentStats(ctx context.Context, tokenAddress string) (models.CurrentStats, error)
	FetchHistoricalSeries(ctx context.Context, platformID, tokenAddress string) ([]models.PricePoint, error)
}

// Metrics records provider and projection activity.
type Metrics interface {
	RecordProviderRequest(provider, op string)
	RecordProviderError(provider, op string)
	RecordLatency(op string, seconds float64)
	RecordLastPrice(token string, price float64)
	RecordProjection(points int)
	RecordCache(hit bool)
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) RecordProviderRequest(string, string) {}
func (NopMetrics) RecordProviderError(string, string)   {}
func (NopMetrics) RecordLatency(string, float64)        {}
func (NopMetrics) RecordLastPrice(string, float64)      {}
func (NopMetrics) RecordProjection(int)                 {}
func (NopMetrics) RecordCache(bool)                     {}
