// Package projection turns a price series and yield parameters into a compounding valuation
// curve. It performs no I/O.
package projection

import (
	"math"
	"time"

	"YieldProjector/internal/domain/models"
	"YieldProjector/pkg/util"
)

// Compounding selects how the exponent advances along the series.
type Compounding string

const (
	// CompoundPerPoint advances one step per data point, gaps included.
	CompoundPerPoint Compounding = "point"
	// CompoundPerDay advances by whole calendar days elapsed since the first point.
	CompoundPerDay Compounding = "calendar"
)

const (
	daysPerYear = 365

	labelLayout = "Jan 2"
)

// Config holds engine-wide settings.
type Config struct {
	// FallbackWindow is how many trailing points are used when the start date is after
	// all history. Zero or negative means the whole series.
	FallbackWindow int
	Location       *time.Location
	Compounding    Compounding
}

// Params are the per-call inputs.
type Params struct {
	Principal          float64
	AnnualYieldPercent float64
	// StartDate is normalized to midnight in the engine location. Zero means no filter.
	StartDate     time.Time
	FallbackPrice float64
	// Compounding overrides the engine default when set.
	Compounding Compounding
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Compounding == "" {
		cfg.Compounding = CompoundPerPoint
	}
	return &Engine{cfg: cfg}
}

// DailyRate is the rate that, compounded once a day for 365 days, reproduces the nominal
// annual yield.
func DailyRate(annualYieldPercent float64) float64 {
	if math.IsNaN(annualYieldPercent) || math.IsInf(annualYieldPercent, 0) {
		return 0
	}
	growth := 1 + annualYieldPercent/100
	if growth <= 0 {
		return -1
	}
	return math.Pow(growth, 1.0/daysPerYear) - 1
}

// Project computes the valuation curve for series, which must be ascending by timestamp.
// Degenerate input (empty series, no usable base price) yields an empty projection.
func (e *Engine) Project(series []models.PricePoint, p Params) models.Projection {
	window := e.window(series, p.StartDate)
	if len(window) == 0 {
		return emptyProjection()
	}

	basePrice := window[0].Price
	if !usable(basePrice) {
		basePrice = p.FallbackPrice
	}
	if !usable(basePrice) {
		return emptyProjection()
	}

	principal := sanitizePrincipal(p.Principal)
	r := DailyRate(p.AnnualYieldPercent)
	initialTokens := principal / basePrice

	mode := p.Compounding
	if mode == "" {
		mode = e.cfg.Compounding
	}

	first := window[0].Time()
	points := make([]models.ProjectionPoint, len(window))
	for i, pt := range window {
		step := i
		if mode == CompoundPerDay {
			step = util.DaysBetween(first, pt.Time(), e.cfg.Location)
			if step < 0 {
				step = 0
			}
		}
		multiplier := math.Pow(1+r, float64(step))
		balance := initialTokens * multiplier
		local := pt.Time().In(e.cfg.Location)
		points[i] = models.ProjectionPoint{
			DateLabel:    local.Format(labelLayout),
			FullDate:     local.Format(util.DateLayout),
			Timestamp:    pt.Timestamp,
			Price:        pt.Price,
			TokenBalance: balance,
			UsdValue:     balance * pt.Price,
			Multiplier:   multiplier,
		}
	}

	last := points[len(points)-1]
	net := last.UsdValue - principal
	var roi float64
	if principal > 0 {
		roi = net / principal * 100
	}
	return models.Projection{
		Points: points,
		Summary: &models.ProjectionSummary{
			TotalUsdValue:    last.UsdValue,
			NetProfitUsd:     net,
			TotalRoiPercent:  roi,
			Multiplier:       last.Multiplier,
			DailyEstimateUsd: last.UsdValue * r,
			InitialTokens:    initialTokens,
			BasePrice:        basePrice,
			DailyRate:        r,
		},
	}
}

// window applies the start-date filter and, when it leaves nothing, the trailing fallback.
func (e *Engine) window(series []models.PricePoint, start time.Time) []models.PricePoint {
	if len(series) == 0 {
		return nil
	}
	if start.IsZero() {
		return series
	}
	cutoff := util.StartOfDay(start, e.cfg.Location).UnixMilli()
	for i, pt := range series {
		if pt.Timestamp >= cutoff {
			return series[i:]
		}
	}
	if n := e.cfg.FallbackWindow; n > 0 && n < len(series) {
		return series[len(series)-n:]
	}
	return series
}

func emptyProjection() models.Projection {
	return models.Projection{Points: []models.ProjectionPoint{}}
}

func usable(price float64) bool {
	return price > 0 && !math.IsInf(price, 0)
}

func sanitizePrincipal(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
