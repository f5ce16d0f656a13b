package render

import (
	"fmt"
	"time"

	"calbridge/internal/clock"
	appLog "calbridge/internal/log"
	"calbridge/internal/model"
	"calbridge/internal/tzconvert"
)

const localStampLayout = "2006-01-02T15:04"

// ToRendererEvent converts one Event Record into its renderer-facing form.
// A nil event with a non-nil error means this record is undisplayable
// (unparseable time or pattern); callers log it and keep going, the batch
// never aborts on one bad record.
func ToRendererEvent(id string, ev model.Event, s Settings) (*Event, error) {
	switch e := ev.(type) {
	case model.Single:
		return singleToEvent(id, e, s)
	case model.Recurring:
		return recurringToEvent(id, e, s)
	case model.RuleBased:
		return ruleToEvent(id, e.StartDate, e.Rule, e.SkipDates, e.Details, s)
	default:
		return nil, fmt.Errorf("unknown event variant %T", ev)
	}
}

func singleToEvent(id string, e model.Single, s Settings) (*Event, error) {
	out := &Event{
		ID:     id,
		Title:  model.ConstructTitle(e.Category, e.SubCategory, e.Title),
		AllDay: e.AllDay,
	}

	if e.AllDay {
		out.Start = e.Date.String()
		if e.EndDate != nil {
			// Renderer end dates are exclusive; the internal EndDate is
			// inclusive.
			out.End = e.EndDate.AddDays(1).String()
		}
		return out, nil
	}

	// A stored timezone is honored by re-expressing the clock fields in the
	// display zone before formatting; floating events render as-is.
	shown := e
	if e.Timezone != "" {
		eventLoc, lerr := s.zones().Load(e.Timezone)
		if lerr != nil {
			appLog.Warn("render: unknown event timezone, using UTC", "id", id, "timezone", e.Timezone)
		}
		converted, err := tzconvert.ConvertEvent(e, eventLoc, s.displayZone())
		if err != nil {
			return nil, err
		}
		shown = converted.(model.Single)
	}

	startClock, err := clock.Parse(shown.StartTime)
	if err != nil {
		return nil, err
	}
	out.Start = clock.Combine(shown.Date, startClock, s.displayZone()).Format(localStampLayout)

	if shown.EndTime != "" {
		endClock, err := clock.Parse(shown.EndTime)
		if err != nil {
			return nil, err
		}
		endDate := shown.Date
		if shown.EndDate != nil {
			endDate = *shown.EndDate
		}
		out.End = clock.Combine(endDate, endClock, s.displayZone()).Format(localStampLayout)
	}

	return out, nil
}

func recurringToEvent(id string, e model.Recurring, s Settings) (*Event, error) {
	// Weekly patterns without exceptions map onto the renderer's native
	// daysOfWeek fields. Anything else (monthly, yearly, nth-weekday, or a
	// pattern carrying skip dates) must go through the RRULE path, which is
	// the only renderer surface that can express it.
	if len(e.DaysOfWeek) > 0 && len(e.SkipDates) == 0 && e.Interval() == 1 {
		out := &Event{
			ID:         id,
			Title:      model.ConstructTitle(e.Category, e.SubCategory, e.Title),
			AllDay:     e.AllDay,
			StartRecur: e.StartRecur.String(),
		}
		for _, wd := range e.DaysOfWeek {
			idx := wd.Index()
			if idx < 0 {
				return nil, fmt.Errorf("%w: weekday %q", ErrMalformedRecurrencePattern, string(wd))
			}
			out.DaysOfWeek = append(out.DaysOfWeek, idx)
		}
		if e.EndRecur != nil {
			out.EndRecur = e.EndRecur.String()
		}
		if !e.AllDay {
			startClock, err := clock.Parse(e.StartTime)
			if err != nil {
				return nil, err
			}
			out.StartTime = startClock.String()
			if e.EndTime != "" {
				endClock, err := clock.Parse(e.EndTime)
				if err != nil {
					return nil, err
				}
				out.EndTime = endClock.String()
			}
		}
		return out, nil
	}

	_, startClock, err := ruleAnchor(e.StartRecur, e.StartTime, e.Timezone, s)
	if err != nil {
		return nil, err
	}
	pattern, err := recurrencePattern(e, startClock)
	if err != nil {
		return nil, err
	}
	return ruleToEvent(id, e.StartRecur, pattern, e.SkipDates, e.Details, s)
}

func ruleToEvent(id string, startDate model.Date, pattern string, skips []model.Date, d model.Details, s Settings) (*Event, error) {
	anchorDate, startClock, err := ruleAnchor(startDate, d.StartTime, d.Timezone, s)
	if err != nil {
		return nil, err
	}

	display := s.displayZone()
	dtstart := clock.Combine(anchorDate, startClock, display)
	text := rruleText(display.String(), dtstart, pattern)
	if err := validateRule(text); err != nil {
		return nil, err
	}

	out := &Event{
		ID:     id,
		Title:  model.ConstructTitle(d.Category, d.SubCategory, d.Title),
		AllDay: d.AllDay,
		RRule:  text,
	}

	// Every skip date keeps the DTSTART clock, stamped fake-UTC, so it
	// matches the expansion library's occurrence representation exactly.
	for _, skip := range skips {
		out.ExDate = append(out.ExDate, FakeUTC(skip, startClock).Format(exDateLayout))
	}

	if !d.AllDay && d.EndTime != "" {
		endClock, err := clock.Parse(d.EndTime)
		if err != nil {
			return nil, err
		}
		out.Duration = formatClockSpan(clock.DurationBetween(startClock, endClock))
	}

	return out, nil
}

// formatClockSpan renders a duration as an "HH:mm" time-of-day span.
func formatClockSpan(d time.Duration) string {
	mins := int(d.Minutes())
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
