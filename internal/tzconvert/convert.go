// Package tzconvert rewrites a single event's wall-clock fields from one
// timezone into another via the absolute instant they denote.
package tzconvert

import (
	"time"

	"calbridge/internal/clock"
	"calbridge/internal/model"
)

// ConvertEvent re-expresses a timed Single event's date and clock times from
// source to target. The start and the end are each converted through their
// own absolute instant, so a date rollover on one side never drags the other
// along, and the end may land on a different date than the start.
//
// All-day events and Recurring/RuleBased patterns pass through unchanged:
// patterns carry an intrinsic timezone and are converted lazily at expansion
// time, never eagerly.
func ConvertEvent(ev model.Event, source, target *time.Location) (model.Event, error) {
	single, ok := ev.(model.Single)
	if !ok || single.AllDay {
		return ev, nil
	}

	startClock, err := clock.Parse(single.StartTime)
	if err != nil {
		return nil, err
	}
	startInstant := clock.Combine(single.Date, startClock, source).In(target)

	out := single
	out.Date = model.DateOf(startInstant)
	out.StartTime = clock.At(startInstant).String()
	out.EndDate = nil

	if single.EndTime != "" {
		endClock, err := clock.Parse(single.EndTime)
		if err != nil {
			return nil, err
		}
		// The end anchors on EndDate when the event spans days; otherwise it
		// shares the start's date even if the clock crosses midnight.
		endAnchor := single.Date
		if single.EndDate != nil {
			endAnchor = *single.EndDate
		}
		endInstant := clock.Combine(endAnchor, endClock, source).In(target)
		out.EndTime = clock.At(endInstant).String()
		if endDate := model.DateOf(endInstant); !endDate.Equal(out.Date) {
			out.EndDate = &endDate
		}
	}

	return out, nil
}
