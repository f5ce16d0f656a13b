// Package render converts canonical Event Records to and from the JSON
// contract consumed by the external calendar-rendering surface, including
// the RRULE/EXDATE wire form for rule-based patterns.
package render

import (
	"errors"
	"time"

	"calbridge/internal/tzconvert"
)

// ErrMalformedRecurrencePattern reports RRULE text the recurrence library
// refuses to parse.
var ErrMalformedRecurrencePattern = errors.New("malformed recurrence pattern")

// Event is the renderer-facing record. Exactly one of three field groups is
// populated: Start/End for one-shot events, DaysOfWeek/StartRecur/... for
// simple weekly patterns, or RRule/ExDate/Duration for rule-backed ones.
type Event struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	AllDay bool   `json:"allDay"`

	// One-shot events. Local ISO stamps in the display timezone; date-only
	// for all-day events, with an exclusive End per renderer convention.
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`

	// Simple weekly patterns.
	DaysOfWeek []int  `json:"daysOfWeek,omitempty"`
	StartRecur string `json:"startRecur,omitempty"`
	EndRecur   string `json:"endRecur,omitempty"`
	StartTime  string `json:"startTime,omitempty"`
	EndTime    string `json:"endTime,omitempty"`

	// Rule-backed patterns. RRule is the full DTSTART-anchored rule text;
	// ExDate entries are fake-UTC ISO instants (see FakeUTC); Duration is
	// an "HH:mm" clock span.
	RRule    string   `json:"rrule,omitempty"`
	ExDate   []string `json:"exdate,omitempty"`
	Duration string   `json:"duration,omitempty"`
}

// Settings carries the display-side context for a conversion pass.
type Settings struct {
	// DisplayZone is the timezone chosen for rendering, independent of any
	// event's stored timezone. Nil falls back to time.Local.
	DisplayZone *time.Location

	// Zones resolves event-side timezone names. Nil gets a private cache.
	Zones *tzconvert.LocationCache
}

func (s Settings) displayZone() *time.Location {
	if s.DisplayZone == nil {
		return time.Local
	}
	return s.DisplayZone
}

func (s Settings) zones() *tzconvert.LocationCache {
	if s.Zones == nil {
		return tzconvert.NewLocationCache()
	}
	return s.Zones
}
