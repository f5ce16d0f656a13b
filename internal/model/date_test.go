package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2025-06-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year != 2025 || d.Month != time.June || d.Day != 15 {
		t.Fatalf("unexpected date: %+v", d)
	}
	if d.String() != "2025-06-15" {
		t.Fatalf("unexpected formatting: %q", d.String())
	}

	for _, bad := range []string{"", "2025-13-01", "20250615", "yesterday", "2025-06-15T08:00"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseDate(%q): expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestDateAddDays(t *testing.T) {
	t.Parallel()

	d := Date{Year: 2025, Month: time.January, Day: 31}
	if got := d.AddDays(1); got.String() != "2025-02-01" {
		t.Fatalf("unexpected rollover: %s", got)
	}
	if got := d.AddDays(-31); got.String() != "2024-12-31" {
		t.Fatalf("unexpected year rollback: %s", got)
	}
}

func TestDateOrdering(t *testing.T) {
	t.Parallel()

	a := Date{Year: 2025, Month: time.June, Day: 14}
	b := Date{Year: 2025, Month: time.June, Day: 15}
	if !a.Before(b) || b.Before(a) || !b.After(a) {
		t.Fatal("ordering broken")
	}
	if !a.Equal(a) || a.Equal(b) {
		t.Fatal("equality broken")
	}
}

func TestHasSkipDate(t *testing.T) {
	t.Parallel()

	skips := []Date{{Year: 2025, Month: time.October, Day: 23}}
	if !HasSkipDate(skips, Date{Year: 2025, Month: time.October, Day: 23}) {
		t.Fatal("expected match")
	}
	if HasSkipDate(skips, Date{Year: 2025, Month: time.October, Day: 30}) {
		t.Fatal("unexpected match")
	}
}
