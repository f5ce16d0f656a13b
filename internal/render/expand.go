package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"calbridge/internal/clock"
	appLog "calbridge/internal/log"
	"calbridge/internal/model"
)

// defaultMaxOccurrences caps a single pattern's expansion so a pathological
// rule cannot produce an unbounded occurrence list.
const defaultMaxOccurrences = 5000

// Occurrence is one concrete instance of a pattern after expansion into the
// display timezone.
type Occurrence struct {
	ID     string
	Title  string
	AllDay bool
	Start  time.Time
	End    time.Time
}

// ExpandRuleBased materializes a rule-based event's occurrences within
// [rangeStart, rangeEnd]. The rule is anchored exactly as in
// ToRendererEvent, so expansion follows the display zone's DST rules, and
// skip dates suppress occurrences by calendar date alone.
func ExpandRuleBased(id string, e model.RuleBased, rangeStart, rangeEnd time.Time, s Settings) ([]Occurrence, error) {
	if rangeEnd.Before(rangeStart) {
		return nil, errors.New("expand: range end before range start")
	}

	anchorDate, startClock, err := ruleAnchor(e.StartDate, e.StartTime, e.Timezone, s)
	if err != nil {
		return nil, err
	}

	display := s.displayZone()
	dtstart := clock.Combine(anchorDate, startClock, display)
	set, err := rrule.StrToRRuleSet(rruleText(display.String(), dtstart, e.Rule))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecurrencePattern, err)
	}

	duration := 24 * time.Hour
	if !e.AllDay {
		duration = 0
		if e.EndTime != "" {
			endClock, perr := clock.Parse(e.EndTime)
			if perr != nil {
				return nil, perr
			}
			duration = clock.DurationBetween(startClock, endClock)
		}
	}

	skips := make(map[model.Date]bool, len(e.SkipDates))
	for _, d := range e.SkipDates {
		skips[d] = true
	}

	starts := set.Between(rangeStart.In(display), rangeEnd.In(display), true)
	if len(starts) > defaultMaxOccurrences {
		appLog.Warn("expand: occurrence cap hit, truncating", "id", id, "cap", defaultMaxOccurrences)
		starts = starts[:defaultMaxOccurrences]
	}

	title := model.ConstructTitle(e.Category, e.SubCategory, e.Title)
	out := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		occDate := model.DateOf(start)
		if skips[occDate] {
			continue
		}
		if e.EndDate != nil && occDate.After(*e.EndDate) {
			continue
		}
		out = append(out, Occurrence{
			ID:     id,
			Title:  title,
			AllDay: e.AllDay,
			Start:  start,
			End:    start.Add(duration),
		})
	}

	return out, nil
}
