package render

import (
	"testing"
	"time"

	"calbridge/internal/model"
)

func TestExpandRuleBased_WeeklyAcrossDSTEnd(t *testing.T) {
	t.Parallel()

	s := pragueSettings(t)
	loc := s.displayZone()

	ev := model.RuleBased{
		Details: model.Details{
			Title:     "Weekly sync",
			Timezone:  "Europe/Prague",
			StartTime: "08:00",
			EndTime:   "09:00",
		},
		StartDate: model.Date{Year: 2025, Month: time.October, Day: 16},
		Rule:      "FREQ=WEEKLY;BYDAY=TH",
		SkipDates: []model.Date{
			{Year: 2025, Month: time.October, Day: 23},
			{Year: 2025, Month: time.October, Day: 30},
		},
	}

	rangeStart := time.Date(2025, time.October, 15, 0, 0, 0, 0, loc)
	rangeEnd := time.Date(2025, time.November, 14, 0, 0, 0, 0, loc)

	occs, err := ExpandRuleBased("ev1", ev, rangeStart, rangeEnd, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantDates := []string{"2025-10-16", "2025-11-06", "2025-11-13"}
	if len(occs) != len(wantDates) {
		t.Fatalf("expected %d occurrences, got %d: %+v", len(wantDates), len(occs), occs)
	}
	for i, occ := range occs {
		if got := model.DateOf(occ.Start).String(); got != wantDates[i] {
			t.Fatalf("occurrence %d on %s, want %s", i, got, wantDates[i])
		}
		// Wall clock holds at 08:00 on both sides of the October 26 DST end.
		if occ.Start.In(loc).Hour() != 8 || occ.Start.In(loc).Minute() != 0 {
			t.Fatalf("occurrence %d starts at %s, want 08:00 local", i, occ.Start.In(loc))
		}
		if occ.End.Sub(occ.Start) != time.Hour {
			t.Fatalf("occurrence %d duration %s, want 1h", i, occ.End.Sub(occ.Start))
		}
		if occ.Title != "Weekly sync" {
			t.Fatalf("unexpected title %q", occ.Title)
		}
	}
}

func TestExpandRuleBased_EndDateCutsTail(t *testing.T) {
	t.Parallel()

	s := pragueSettings(t)
	loc := s.displayZone()

	end := model.Date{Year: 2025, Month: time.June, Day: 10}
	ev := model.RuleBased{
		Details:   model.Details{Title: "Daily", Timezone: "Europe/Prague", StartTime: "12:00"},
		StartDate: model.Date{Year: 2025, Month: time.June, Day: 8},
		EndDate:   &end,
		Rule:      "FREQ=DAILY",
	}

	occs, err := ExpandRuleBased("ev2", ev,
		time.Date(2025, time.June, 8, 0, 0, 0, 0, loc),
		time.Date(2025, time.June, 30, 0, 0, 0, 0, loc), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(occs) != 3 {
		t.Fatalf("expected 3 occurrences through the end date, got %d", len(occs))
	}
	if last := model.DateOf(occs[2].Start).String(); last != "2025-06-10" {
		t.Fatalf("last occurrence on %s, want 2025-06-10", last)
	}
}

func TestExpandRuleBased_AllDay(t *testing.T) {
	t.Parallel()

	s := pragueSettings(t)
	loc := s.displayZone()

	ev := model.RuleBased{
		Details:   model.Details{Title: "Holiday", AllDay: true, Timezone: "utc"},
		StartDate: model.Date{Year: 2025, Month: time.June, Day: 2},
		Rule:      "FREQ=WEEKLY;BYDAY=MO",
	}

	occs, err := ExpandRuleBased("ev3", ev,
		time.Date(2025, time.June, 1, 0, 0, 0, 0, loc),
		time.Date(2025, time.June, 9, 23, 0, 0, 0, loc), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(occs) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(occs))
	}
	if d := occs[0].End.Sub(occs[0].Start); d != 24*time.Hour {
		t.Fatalf("all-day occurrence spans %s, want 24h", d)
	}
	if !occs[0].AllDay {
		t.Fatalf("expected all-day flag to carry through")
	}
}

func TestExpandRuleBased_InvertedRange(t *testing.T) {
	t.Parallel()

	s := pragueSettings(t)
	ev := model.RuleBased{
		Details:   model.Details{Title: "x", Timezone: "utc", StartTime: "08:00"},
		StartDate: model.Date{Year: 2025, Month: time.June, Day: 2},
		Rule:      "FREQ=DAILY",
	}

	if _, err := ExpandRuleBased("ev4", ev, time.Now(), time.Now().Add(-time.Hour), s); err == nil {
		t.Fatalf("expected error for inverted range")
	}
}
