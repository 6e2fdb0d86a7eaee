package util

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date format accepted on the API.
const DateLayout = "2006-01-02"

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseDate parses a calendar date (YYYY-MM-DD) or any ParseTime form, and returns
// midnight of that day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, true
	}
	if t, ok := ParseTime(s); ok {
		return StartOfDay(t, loc), true
	}
	return time.Time{}, false
}

// StartOfDay truncates t to local midnight in loc. Truncate is not used because it
// works on absolute time and ignores the zone offset.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DaysBetween counts whole calendar days from a to b in loc (negative if b is before a).
// DST-length days still count as one.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	a0 := StartOfDay(a, loc)
	b0 := StartOfDay(b, loc)
	ay, am, ad := a0.Date()
	by, bm, bd := b0.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}
