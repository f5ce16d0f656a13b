package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"calbridge/internal/clock"
	appLog "calbridge/internal/log"
	"calbridge/internal/model"
)

const (
	dtstartLayout = "20060102T150405"
	exDateLayout  = "2006-01-02T15:04:05.000Z"
)

// FakeUTC places the wall-clock fields of d and t into a UTC-flagged
// instant. No offset arithmetic happens: 08:00 stays 08:00.
//
// The recurrence-expansion library represents each generated occurrence by
// storing the occurrence's local wall-clock fields inside a UTC value, so
// it never re-derives DST offsets per occurrence. EXDATE entries are only
// recognized as matching when expressed in that same convention; a true UTC
// conversion of the exception date would miss in any zone with a non-zero
// offset, and the removed occurrence would reappear.
func FakeUTC(d model.Date, t clock.ClockTime) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, 0, 0, time.UTC)
}

// rruleText builds the wire form fed both to the renderer and to the
// recurrence library: a DTSTART anchored to the display zone followed by
// the raw pattern. Anchoring by TZID keeps expansion on the zone's own DST
// rules instead of a fixed offset.
func rruleText(zone string, dtstart time.Time, pattern string) string {
	return "DTSTART;TZID=" + zone + ":" + dtstart.Format(dtstartLayout) + "\nRRULE:" + pattern
}

// ruleAnchor computes the DTSTART wall-clock for a rule-based event in the
// display zone. When the stored timezone differs from the display zone the
// clock is shifted through the absolute instant first, so the DTSTART
// always reads "this wall-clock moment, labelled with the display zone".
func ruleAnchor(startDate model.Date, startTime, eventZone string, s Settings) (model.Date, clock.ClockTime, error) {
	var startClock clock.ClockTime
	if startTime != "" {
		var err error
		startClock, err = clock.Parse(startTime)
		if err != nil {
			return model.Date{}, clock.ClockTime{}, err
		}
	}

	display := s.displayZone()
	eventLoc, lerr := s.zones().Load(eventZone)
	if lerr != nil {
		appLog.Warn("render: unknown event timezone, using UTC", "timezone", eventZone)
	}
	if eventLoc.String() == display.String() {
		return startDate, startClock, nil
	}

	instant := clock.Combine(startDate, startClock, eventLoc).In(display)
	return model.DateOf(instant), clock.At(instant), nil
}

// recurrencePattern renders a structured Recurring pattern as raw RRULE
// text. startClock is the (display-zone) DTSTART clock, needed so UNTIL can
// use the library's fake-UTC occurrence convention.
func recurrencePattern(e model.Recurring, startClock clock.ClockTime) (string, error) {
	var b strings.Builder

	switch {
	case len(e.DaysOfWeek) > 0:
		tokens := make([]string, 0, len(e.DaysOfWeek))
		for _, wd := range e.DaysOfWeek {
			if !wd.Valid() {
				return "", fmt.Errorf("%w: weekday %q", ErrMalformedRecurrencePattern, string(wd))
			}
			tokens = append(tokens, string(wd))
		}
		b.WriteString("FREQ=WEEKLY;BYDAY=")
		b.WriteString(strings.Join(tokens, ","))
	case e.DayOfMonth != nil && e.Month != nil:
		fmt.Fprintf(&b, "FREQ=YEARLY;BYMONTH=%d;BYMONTHDAY=%d", int(*e.Month), *e.DayOfMonth)
	case e.DayOfMonth != nil:
		fmt.Fprintf(&b, "FREQ=MONTHLY;BYMONTHDAY=%d", *e.DayOfMonth)
	case e.RepeatOn != nil:
		if !e.RepeatOn.Weekday.Valid() {
			return "", fmt.Errorf("%w: weekday %q", ErrMalformedRecurrencePattern, string(e.RepeatOn.Weekday))
		}
		fmt.Fprintf(&b, "FREQ=MONTHLY;BYDAY=%+d%s", e.RepeatOn.Week, string(e.RepeatOn.Weekday))
	default:
		return "", fmt.Errorf("%w: no pattern fields set", ErrMalformedRecurrencePattern)
	}

	if e.Interval() > 1 {
		fmt.Fprintf(&b, ";INTERVAL=%d", e.Interval())
	}
	if e.EndRecur != nil {
		// UNTIL in the expansion library's own fake-UTC convention.
		b.WriteString(";UNTIL=")
		b.WriteString(FakeUTC(*e.EndRecur, startClock).Format("20060102T150405Z"))
	}

	return b.String(), nil
}

// validateRule runs the rule text through the recurrence library once, so a
// bad pattern surfaces here instead of inside the renderer.
func validateRule(text string) error {
	if _, err := rrule.StrToRRuleSet(text); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecurrencePattern, err)
	}
	return nil
}
