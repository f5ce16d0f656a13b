// Package ics turns raw iCalendar text into canonical Event Records and
// fetches subscribed ICS feeds.
package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"calbridge/internal/clock"
	appLog "calbridge/internal/log"
	"calbridge/internal/model"
	"calbridge/internal/tzconvert"
)

// ErrOrphanException reports a RECURRENCE-ID component whose UID has no
// base event, or whose base event is not itself recurring.
var ErrOrphanException = errors.New("recurrence exception without recurring base event")

// Imported pairs an Event Record with the identifier downstream stores key
// it by: the VEVENT's UID, or a generated one when the feed omits it.
type Imported struct {
	ID    string
	Event model.Event
}

// ImportEvents parses one iCalendar payload into Event Records.
//
// Per-component failures are contained: a bad VEVENT is logged and skipped,
// never aborting the batch. Recurrence-exception components (RECURRENCE-ID)
// are collected in a second pass and folded into their base event's skip
// list by calendar date.
func ImportEvents(body []byte, zones *tzconvert.LocationCache) ([]Imported, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if zones == nil {
		zones = tzconvert.NewLocationCache()
	}

	type exception struct {
		uid  string
		date model.Date
	}

	out := make([]Imported, 0)
	baseByUID := make(map[string]int) // UID -> index of a RuleBased record in out
	exceptions := make([]exception, 0)

	for _, ve := range cal.Events() {
		uid := propValue(ve, ical.ComponentPropertyUniqueId)
		if uid == "" {
			uid = uuid.NewString()
		}

		// RECURRENCE-ID marks a "this instance only" component; its date is
		// merged into the base event's skip list after the first pass.
		if rid := ve.GetProperty("RECURRENCE-ID"); rid != nil {
			at, _, _, perr := parseStamp(rid.Value, tzidParam(rid), zones)
			if perr != nil {
				appLog.Error("ics: bad RECURRENCE-ID, dropping exception", perr, "uid", uid)
				continue
			}
			exceptions = append(exceptions, exception{uid: uid, date: model.DateOf(at)})
			continue
		}

		rec, perr := parseVEvent(ve, zones)
		if perr != nil {
			appLog.Error("ics: vevent skipped", perr, "uid", uid)
			continue
		}
		if _, isRule := rec.(model.RuleBased); isRule {
			baseByUID[uid] = len(out)
		}
		out = append(out, Imported{ID: uid, Event: rec})
	}

	for _, ex := range exceptions {
		idx, ok := baseByUID[ex.uid]
		if !ok {
			appLog.Warn("ics: orphan recurrence exception dropped",
				"uid", ex.uid, "date", ex.date.String(), "reason", ErrOrphanException)
			continue
		}
		base := out[idx].Event.(model.RuleBased)
		if !model.HasSkipDate(base.SkipDates, ex.date) {
			base.SkipDates = append(base.SkipDates, ex.date)
		}
		out[idx].Event = base
	}

	return out, nil
}

func parseVEvent(ve *ical.VEvent, zones *tzconvert.LocationCache) (model.Event, error) {
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return nil, errors.New("missing DTSTART")
	}
	start, allDay, tzName, err := parseStamp(dtStart.Value, tzidParam(dtStart), zones)
	if err != nil {
		return nil, err
	}
	if dateValueParam(dtStart) {
		allDay = true
	}

	details := model.Details{
		// SUMMARY is kept verbatim; category splitting is a display-layer
		// concern, not an import-time one.
		Title:    propValue(ve, ical.ComponentPropertySummary),
		AllDay:   allDay,
		Timezone: tzName,
	}
	if !allDay {
		details.StartTime = clock.At(start).String()
	}
	startDate := model.DateOf(start)

	var endAt *time.Time
	if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
		end, _, _, eerr := parseStamp(p.Value, tzidParam(p), zones)
		if eerr != nil {
			return nil, eerr
		}
		endAt = &end
	} else if p := ve.GetProperty("DURATION"); p != nil {
		// String name: not every library version exposes a constant for it.
		if dur, derr := parseICSDuration(p.Value); derr == nil {
			end := start.Add(dur)
			endAt = &end
		} else {
			appLog.Warn("ics: unparseable DURATION ignored", "value", p.Value)
		}
	}
	if endAt != nil && endAt.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s",
			model.ErrInvalidDate, endAt.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	if rruleProp := ve.GetProperty(ical.ComponentPropertyRrule); rruleProp != nil {
		ev := model.RuleBased{
			Details:   details,
			StartDate: startDate,
			Rule:      rruleProp.Value,
			SkipDates: exceptionDates(ve, zones),
		}
		if !allDay && endAt != nil {
			ev.EndTime = clock.At(*endAt).String()
		}
		return ev, nil
	}

	ev := model.Single{Details: details, Date: startDate}
	if endAt != nil {
		if allDay {
			// The iCalendar all-day end date is exclusive; the internal
			// EndDate is inclusive.
			endDate := model.DateOf(*endAt).AddDays(-1)
			if startDate.Before(endDate) {
				ev.EndDate = &endDate
			}
		} else {
			ev.EndTime = clock.At(*endAt).String()
			if endDate := model.DateOf(*endAt); !endDate.Equal(startDate) {
				ev.EndDate = &endDate
			}
		}
	}
	return ev, nil
}

// exceptionDates collects all EXDATE entries as plain calendar dates. The
// time-of-day on an EXDATE is discarded: occurrences are suppressed by date.
func exceptionDates(ve *ical.VEvent, zones *tzconvert.LocationCache) []model.Date {
	var out []model.Date
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			at, _, _, err := parseStamp(part, tzidParam(p), zones)
			if err != nil {
				appLog.Warn("ics: unparseable EXDATE entry ignored", "value", part)
				continue
			}
			d := model.DateOf(at)
			if !model.HasSkipDate(out, d) {
				out = append(out, d)
			}
		}
	}
	return out
}

// parseStamp parses an iCalendar DATE or DATE-TIME value with its TZID
// parameter context. The returned time is in the value's own zone, and
// tzName is the zone the record should store: the TZID when it resolved,
// "utc" for absent TZID / trailing Z / unknown zones.
func parseStamp(v, tzid string, zones *tzconvert.LocationCache) (time.Time, bool, string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false, "", fmt.Errorf("%w: empty value", model.ErrInvalidDate)
	}

	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse("20060102T150405Z", v)
		if err != nil {
			return time.Time{}, false, "", fmt.Errorf("%w: %q", model.ErrInvalidDate, v)
		}
		return t, false, "utc", nil
	}

	if strings.Contains(v, "T") {
		loc, name := resolveZone(tzid, zones)
		t, err := time.ParseInLocation("20060102T150405", v, loc)
		if err != nil {
			return time.Time{}, false, "", fmt.Errorf("%w: %q", model.ErrInvalidDate, v)
		}
		return t, false, name, nil
	}

	// Date-only form: an all-day value.
	loc, name := resolveZone(tzid, zones)
	t, err := time.ParseInLocation("20060102", v, loc)
	if err != nil {
		return time.Time{}, false, "", fmt.Errorf("%w: %q", model.ErrInvalidDate, v)
	}
	return t, true, name, nil
}

// resolveZone maps a TZID to a usable location. Unknown zones degrade to
// UTC with a diagnostic instead of failing the record.
func resolveZone(tzid string, zones *tzconvert.LocationCache) (*time.Location, string) {
	if tzid == "" {
		return time.UTC, "utc"
	}
	loc, err := zones.Load(tzid)
	if err != nil {
		appLog.Warn("ics: unknown timezone, falling back to UTC", "tzid", tzid)
		return loc, "utc"
	}
	return loc, tzid
}

func propValue(ve *ical.VEvent, name ical.ComponentProperty) string {
	if p := ve.GetProperty(name); p != nil {
		return p.Value
	}
	return ""
}

func tzidParam(p *ical.IANAProperty) string {
	if p == nil || p.ICalParameters == nil {
		return ""
	}
	if vs, ok := p.ICalParameters["TZID"]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func dateValueParam(p *ical.IANAProperty) bool {
	if p == nil || p.ICalParameters == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 {
		return strings.EqualFold(vs[0], "DATE")
	}
	return false
}

// parseICSDuration parses the RFC 5545 duration subset that shows up in
// feeds: [+|-]P[nW][nD][T[nH][nM][nS]].
func parseICSDuration(v string) (time.Duration, error) {
	s := strings.TrimSpace(strings.ToUpper(v))
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	s = s[1:]

	var total time.Duration
	inTime := false
	num := 0
	digits := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
			digits = true
		case r == 'T':
			inTime = true
		case r == 'W' && !inTime:
			total += time.Duration(num) * 7 * 24 * time.Hour
			num, digits = 0, false
		case r == 'D' && !inTime:
			total += time.Duration(num) * 24 * time.Hour
			num, digits = 0, false
		case r == 'H' && inTime:
			total += time.Duration(num) * time.Hour
			num, digits = 0, false
		case r == 'M' && inTime:
			total += time.Duration(num) * time.Minute
			num, digits = 0, false
		case r == 'S' && inTime:
			total += time.Duration(num) * time.Second
			num, digits = 0, false
		default:
			return 0, fmt.Errorf("invalid duration %q", v)
		}
	}
	if digits {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	if neg {
		total = -total
	}
	return total, nil
}
