package clock

import (
	"errors"
	"testing"
	"time"

	"calbridge/internal/model"
)

func TestParse_AcceptedForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want ClockTime
	}{
		{"8:05", ClockTime{8, 5}},
		{"08:05", ClockTime{8, 5}},
		{"23:59", ClockTime{23, 59}},
		{"08:05:30", ClockTime{8, 5}},
		{"8:05 AM", ClockTime{8, 5}},
		{"8:05 pm", ClockTime{20, 5}},
		{"12:00 am", ClockTime{0, 0}},
		{"12:30PM", ClockTime{12, 30}},
	}

	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParse_Rejected(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"", "25:00", "8.30", "noon", "8:61", "08-30"} {
		if _, err := Parse(bad); !errors.Is(err, ErrInvalidTime) {
			t.Fatalf("Parse(%q): expected ErrInvalidTime, got %v", bad, err)
		}
	}
}

func TestString_ZeroPadded(t *testing.T) {
	t.Parallel()

	if got := (ClockTime{Hour: 8, Minute: 5}).String(); got != "08:05" {
		t.Fatalf("unexpected formatting: %q", got)
	}
	if got := (ClockTime{Hour: 0, Minute: 0}).String(); got != "00:00" {
		t.Fatalf("unexpected formatting: %q", got)
	}
}

func TestCombine_WallClockInZone(t *testing.T) {
	t.Parallel()

	prague, err := time.LoadLocation("Europe/Prague")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}

	d := model.Date{Year: 2025, Month: time.June, Day: 15}
	got := Combine(d, ClockTime{Hour: 8, Minute: 0}, prague)

	if got.Hour() != 8 || got.Location() != prague {
		t.Fatalf("unexpected combined time: %v", got)
	}
	// June is CEST (UTC+2), so 08:00 in Prague is 06:00 UTC.
	if utc := got.In(time.UTC); utc.Hour() != 6 {
		t.Fatalf("expected 06:00 UTC, got %v", utc)
	}
}

func TestCombineRaw_InvalidTime(t *testing.T) {
	t.Parallel()

	d := model.Date{Year: 2025, Month: time.June, Day: 15}
	if _, err := CombineRaw(d, "not a time", time.UTC); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}
}

func TestDurationBetween_Overnight(t *testing.T) {
	t.Parallel()

	start := ClockTime{Hour: 22, Minute: 0}
	end := ClockTime{Hour: 6, Minute: 0}
	if got := DurationBetween(start, end); got != 8*time.Hour {
		t.Fatalf("expected 8h, got %v", got)
	}

	if got := DurationBetween(ClockTime{9, 0}, ClockTime{10, 30}); got != 90*time.Minute {
		t.Fatalf("expected 1h30m, got %v", got)
	}

	if got := DurationBetween(ClockTime{9, 0}, ClockTime{9, 0}); got != 0 {
		t.Fatalf("expected zero duration, got %v", got)
	}
}
