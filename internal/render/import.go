package render

import (
	"fmt"
	"strings"
	"time"

	"calbridge/internal/clock"
	"calbridge/internal/model"
)

// FromRendererEvent maps a renderer edit (drag, resize, form submit) back
// into an Event Record. Recurring patterns are rebuilt from the renderer's
// exposed pattern fields; RRULE text is never re-parsed into a pattern, so
// rule-backed events are rejected and the caller keeps the stored rule
// untouched.
func FromRendererEvent(re Event) (model.Event, error) {
	if re.RRule != "" {
		return nil, fmt.Errorf("%w: rule-backed events expose no editable pattern fields", ErrMalformedRecurrencePattern)
	}
	if len(re.DaysOfWeek) > 0 {
		return recurringFromEvent(re)
	}
	return singleFromEvent(re)
}

func singleFromEvent(re Event) (model.Event, error) {
	parsed := model.ParseTitle(re.Title)
	out := model.Single{
		Details: model.Details{
			Title:       parsed.Title,
			Category:    parsed.Category,
			SubCategory: parsed.SubCategory,
			AllDay:      re.AllDay,
		},
	}

	startDate, startClock, dateOnly, err := parseLocalStamp(re.Start)
	if err != nil {
		return nil, err
	}
	out.Date = startDate
	out.AllDay = re.AllDay || dateOnly

	if out.AllDay {
		if re.End != "" {
			endDate, _, _, err := parseLocalStamp(re.End)
			if err != nil {
				return nil, err
			}
			// Undo the renderer's exclusive end-date convention.
			endDate = endDate.AddDays(-1)
			if startDate.Before(endDate) {
				out.EndDate = &endDate
			}
		}
		return out, nil
	}

	out.StartTime = startClock.String()
	if re.End != "" {
		endDate, endClock, _, err := parseLocalStamp(re.End)
		if err != nil {
			return nil, err
		}
		out.EndTime = endClock.String()
		if !endDate.Equal(startDate) {
			out.EndDate = &endDate
		}
	}

	return out, nil
}

func recurringFromEvent(re Event) (model.Event, error) {
	parsed := model.ParseTitle(re.Title)
	out := model.Recurring{
		Details: model.Details{
			Title:       parsed.Title,
			Category:    parsed.Category,
			SubCategory: parsed.SubCategory,
			AllDay:      re.AllDay,
		},
	}

	for _, idx := range re.DaysOfWeek {
		wd := model.WeekdayFromIndex(idx)
		if wd == "" {
			return nil, fmt.Errorf("%w: weekday index %d", ErrMalformedRecurrencePattern, idx)
		}
		out.DaysOfWeek = append(out.DaysOfWeek, wd)
	}

	if re.StartRecur != "" {
		d, err := model.ParseDate(re.StartRecur)
		if err != nil {
			return nil, err
		}
		out.StartRecur = d
	}
	if re.EndRecur != "" {
		d, err := model.ParseDate(re.EndRecur)
		if err != nil {
			return nil, err
		}
		out.EndRecur = &d
	}

	if !re.AllDay && re.StartTime != "" {
		startClock, err := clock.Parse(re.StartTime)
		if err != nil {
			return nil, err
		}
		out.StartTime = startClock.String()
		if re.EndTime != "" {
			endClock, err := clock.Parse(re.EndTime)
			if err != nil {
				return nil, err
			}
			out.EndTime = endClock.String()
		}
	}

	return out, nil
}

// parseLocalStamp reads the renderer's local ISO stamps: a bare date, or a
// date-time with or without seconds. dateOnly reports the bare-date form.
func parseLocalStamp(s string) (model.Date, clock.ClockTime, bool, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "T") {
		d, err := model.ParseDate(s)
		return d, clock.ClockTime{}, true, err
	}
	for _, layout := range []string{localStampLayout, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOf(t), clock.At(t), false, nil
		}
	}
	return model.Date{}, clock.ClockTime{}, false, fmt.Errorf("%w: %q", model.ErrInvalidDate, s)
}
