package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseDateMidnightInLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	got, ok := ParseDate("2024-03-05", loc)
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}

	if _, ok := ParseDate("05/03/2024", loc); ok {
		t.Fatalf("expected failure for unsupported layout")
	}
}

func TestStartOfDayUsesZoneOffset(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 02:00 UTC on the 6th is still the 5th in UTC-5.
	in := time.Date(2024, 3, 6, 2, 0, 0, 0, time.UTC)
	got := StartOfDay(in, loc)
	if got.Day() != 5 || got.Hour() != 0 {
		t.Fatalf("unexpected start of day %v", got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 1, 30, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, 2, 2, 1, 0, 0, 0, time.UTC)
	if d := DaysBetween(a, b, time.UTC); d != 3 {
		t.Fatalf("expected 3 days, got %d", d)
	}
	if d := DaysBetween(b, a, time.UTC); d != -3 {
		t.Fatalf("expected -3 days, got %d", d)
	}
}
