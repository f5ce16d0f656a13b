package model

import "time"

// Event is the canonical in-memory representation of one calendar event or
// recurring pattern. It is a closed sum: the only variants are Single,
// Recurring and RuleBased, and a caller must type-switch to reach any
// variant-specific field. Keeping the shapes separate means the compiler
// rules out reading a recurrence field off a one-shot event.
type Event interface {
	event()
}

// Details holds the fields every variant carries.
type Details struct {
	Title       string
	Category    string // derived from the display title, see ParseTitle
	SubCategory string

	// Timezone is an IANA zone name. Empty means floating time, interpreted
	// in whatever zone the viewer is in. RuleBased events must not be
	// floating; importers fall back to "utc" rather than leave it empty.
	Timezone string

	AllDay    bool
	StartTime string // "HH:mm"; empty iff AllDay
	EndTime   string // optional even for timed events
}

// Single is a one-shot event on a specific date, possibly spanning to an
// inclusive EndDate.
type Single struct {
	Details

	Date    Date
	EndDate *Date // inclusive; nil for same-day events

	// Completed is nil when the event is not a task, empty for an
	// incomplete task, and a completion timestamp once done.
	Completed *string
}

// Recurring is a structured repeating pattern. Exactly one pattern group is
// set: DaysOfWeek (weekly), DayOfMonth (monthly), Month+DayOfMonth (yearly),
// or RepeatOn (nth weekday of the month).
type Recurring struct {
	Details

	StartRecur Date
	EndRecur   *Date

	DaysOfWeek []Weekday
	DayOfMonth *int
	Month      *time.Month
	RepeatOn   *NthWeekday

	// RepeatInterval stretches the pattern period; 1 or 0 means every period.
	RepeatInterval int

	// SkipDates lists the calendar dates whose occurrence is suppressed.
	SkipDates []Date
}

// NthWeekday designates e.g. "the second Tuesday" (Week 2) or "the last
// Friday" (Week -1) of a month.
type NthWeekday struct {
	Week    int // 1..5, or -1 for the last week
	Weekday Weekday
}

// RuleBased carries a raw RRULE pattern, typically produced by an iCalendar
// import. The pattern string excludes DTSTART; the anchor is StartDate plus
// StartTime in Timezone.
type RuleBased struct {
	Details

	StartDate Date
	EndDate   *Date

	// Rule is the raw RRULE body (FREQ=...;BYDAY=...), without "RRULE:".
	Rule string

	SkipDates []Date
}

func (Single) event()    {}
func (Recurring) event() {}
func (RuleBased) event() {}

// Interval returns the effective repeat interval, treating unset as 1.
func (r Recurring) Interval() int {
	if r.RepeatInterval < 1 {
		return 1
	}
	return r.RepeatInterval
}

// HasSkipDate reports whether d is in skips, matched by date only.
func HasSkipDate(skips []Date, d Date) bool {
	for _, s := range skips {
		if s.Equal(d) {
			return true
		}
	}
	return false
}
