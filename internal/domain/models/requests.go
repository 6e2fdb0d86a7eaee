package models

// Requests for the projection HTTP endpoints.

type ProjectionRequest struct {
	Principal   float64 `query:"principal" json:"principal" validate:"gte=0"`
	APR         float64 `query:"apr" json:"apr" validate:"gte=0,lte=1000000"`
	Start       string  `query:"start" json:"start" validate:"omitempty,datetime=2006-01-02"`
	Compounding string  `query:"compounding" json:"compounding" validate:"omitempty,oneof=point calendar"`
}

type HistoryRequest struct {
	Limit int `query:"limit" json:"limit" validate:"gte=0,lte=5000"`
}
