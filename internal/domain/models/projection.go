package models

// ProjectionPoint is one day of the valuation curve.
type ProjectionPoint struct {
	DateLabel    string  `json:"dateLabel"`
	FullDate     string  `json:"fullDate"`
	Timestamp    int64   `json:"timestamp"`
	Price        float64 `json:"price"`
	TokenBalance float64 `json:"tokenBalance"`
	UsdValue     float64 `json:"usdValue"`
	Multiplier   float64 `json:"multiplier"`
}

// ProjectionSummary is derived from the last point and the principal.
// TotalRoiPercent is 0 when the principal is 0.
type ProjectionSummary struct {
	TotalUsdValue    float64 `json:"totalUsdValue"`
	NetProfitUsd     float64 `json:"netProfitUsd"`
	TotalRoiPercent  float64 `json:"totalRoiPercent"`
	Multiplier       float64 `json:"multiplier"`
	DailyEstimateUsd float64 `json:"dailyEstimateUsd"`
	InitialTokens    float64 `json:"initialTokens"`
	BasePrice        float64 `json:"basePrice"`
	DailyRate        float64 `json:"dailyRate"`
}

// Projection is the engine output. Summary is nil exactly when Points is empty.
type Projection struct {
	Points  []ProjectionPoint  `json:"points"`
	Summary *ProjectionSummary `json:"summary"`
}

// Empty reports whether the projection carries no data.
func (p Projection) Empty() bool { return len(p.Points) == 0 }
