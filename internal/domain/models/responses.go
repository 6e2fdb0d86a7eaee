package models

import "time"

type StatsResponse struct {
	Stats     CurrentStats      `json:"stats"`
	Source    string            `json:"source,omitempty"`
	Failures  map[string]string `json:"failures,omitempty"`
	FetchedAt time.Time         `json:"fetchedAt"`
}

type HistoryResponse struct {
	Points []PricePoint `json:"points"`
	Source string       `json:"source,omitempty"`
}
