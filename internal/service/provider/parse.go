package provider

import (
	"math"
	"strings"

	"YieldProjector/internal/domain/models"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// maxEpochSeconds is 9999-12-31T23:59:59Z. Larger upstream timestamps are garbage.
const maxEpochSeconds = 253402300799

// number reads a JSON value that may be a number or a numeric string.
// Anything else, including non-finite values, reads as 0.
func number(r gjson.Result) float64 {
	var f float64
	switch r.Type {
	case gjson.Number:
		f = r.Num
	case gjson.String:
		d, err := decimal.NewFromString(strings.TrimSpace(r.Str))
		if err != nil {
			return 0
		}
		f = d.InexactFloat64()
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// firstNumber returns the first present value among alias paths under root.
func firstNumber(root gjson.Result, paths ...string) float64 {
	for _, p := range paths {
		if r := root.Get(p); r.Exists() && r.Type != gjson.Null {
			return number(r)
		}
	}
	return 0
}

// statsFrom maps a provider object onto CurrentStats using per-field alias lists.
func statsFrom(obj gjson.Result, price, change, mcap, volume []string) models.CurrentStats {
	return models.CurrentStats{
		CurrentPrice:   firstNumber(obj, price...),
		PriceChange24h: firstNumber(obj, change...),
		MarketCap:      firstNumber(obj, mcap...),
		Volume24h:      firstNumber(obj, volume...),
	}
}

// closesFromOHLCV projects [ts, open, high, low, close, volume] rows to close prices.
// Timestamps are seconds upstream and milliseconds in the result. Short rows, rows without
// a timestamp in (0, maxEpochSeconds] and rows with a negative close are skipped.
func closesFromOHLCV(list gjson.Result) []models.PricePoint {
	rows := list.Array()
	out := make([]models.PricePoint, 0, len(rows))
	for _, row := range rows {
		if !row.IsArray() {
			continue
		}
		cols := row.Array()
		if len(cols) < 5 {
			continue
		}
		ts := number(cols[0])
		closePrice := number(cols[4])
		if ts <= 0 || ts > maxEpochSeconds || closePrice < 0 {
			continue
		}
		out = append(out, models.PricePoint{
			Timestamp: int64(math.Round(ts * 1000)),
			Price:     closePrice,
		})
	}
	return out
}
