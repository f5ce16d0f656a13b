// Package clock parses, formats and combines wall-clock times. A ClockTime
// carries no date and no zone; it only becomes an instant through Combine.
package clock

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"calbridge/internal/model"
)

// ErrInvalidTime reports a clock-time string that matches none of the
// accepted forms.
var ErrInvalidTime = errors.New("invalid clock time")

// ClockTime is an hour/minute pair on a 24-hour clock.
type ClockTime struct {
	Hour   int
	Minute int
}

// Accepted textual forms, tried in order: 24-hour with and without seconds,
// then 12-hour with a meridiem marker (with or without a space).
var clockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM"}

// Parse parses "H:mm", "HH:mm", "HH:mm:ss" or a 12-hour "h:mm am/pm" form.
func Parse(s string) (ClockTime, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

// At extracts the clock time of t in t's own location.
func At(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}

// String renders the canonical zero-padded 24-hour "HH:mm" form.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns the offset from midnight in minutes.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Combine interprets d and c as wall-clock time in loc, producing an
// absolute instant. DST gaps and overlaps resolve by loc's rules for that
// specific date.
func Combine(d model.Date, c ClockTime, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, loc)
}

// CombineRaw parses s and combines it with d in loc.
func CombineRaw(d model.Date, s string, loc *time.Location) (time.Time, error) {
	c, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return Combine(d, c, loc), nil
}

// DurationBetween returns end minus start as a pure clock difference,
// independent of calendar dates. An end before the start is taken to cross
// midnight and gains 24h.
func DurationBetween(start, end ClockTime) time.Duration {
	mins := end.Minutes() - start.Minutes()
	if mins < 0 {
		mins += 24 * 60
	}
	return time.Duration(mins) * time.Minute
}
