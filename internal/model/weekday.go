package model

import "time"

// Weekday is a two-letter iCalendar weekday code (BYDAY token).
type Weekday string

const (
	Sunday    Weekday = "SU"
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
)

var weekdayOrder = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// Index returns the renderer's numeric weekday, 0 = Sunday .. 6 = Saturday,
// or -1 for an unknown code.
func (w Weekday) Index() int {
	for i, c := range weekdayOrder {
		if c == w {
			return i
		}
	}
	return -1
}

func (w Weekday) Valid() bool { return w.Index() >= 0 }

// WeekdayOf maps a time.Weekday to its code.
func WeekdayOf(d time.Weekday) Weekday {
	return weekdayOrder[int(d)%7]
}

// WeekdayFromIndex maps a renderer index back to a code; returns "" when the
// index is out of range.
func WeekdayFromIndex(i int) Weekday {
	if i < 0 || i >= len(weekdayOrder) {
		return ""
	}
	return weekdayOrder[i]
}
