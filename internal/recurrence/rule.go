// Package recurrence decides whether a recurring task occurs on a given
// calendar date. It is pure: no store access, no clock access.
package recurrence

import (
	"fmt"
	"time"
)

// DateLayout is the only accepted calendar-date format.
const DateLayout = "2006-01-02"

// Frequency is the closed set of recurrence units.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// ParseFrequency validates a wire-format recurrence type.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(s); f {
	case Daily, Weekly, Monthly, Yearly:
		return f, nil
	default:
		return "", fmt.Errorf("unknown recurrence type %q", s)
	}
}

// ParseDate parses a strict YYYY-MM-DD date into a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Rule is a recurrence schedule anchored at a start date. A nil End means
// the series is open-ended.
type Rule struct {
	Frequency Frequency
	Interval  int
	Start     time.Time
	End       *time.Time
}

// OccursOn reports whether the rule produces an occurrence on target.
// Both bounds are date-only comparisons; time-of-day is ignored. An
// unrecognized frequency is an error, not a silent miss.
func (r Rule) OccursOn(target time.Time) (bool, error) {
	start := midnight(r.Start)
	day := midnight(target)

	if day.Before(start) {
		return false, nil
	}
	if r.End != nil && day.After(midnight(*r.End)) {
		return false, nil
	}

	interval := r.Interval
	if interval < 1 {
		interval = 1
	}

	switch r.Frequency {
	case Daily:
		days := int(day.Sub(start).Hours() / 24)
		return days%interval == 0, nil

	case Weekly:
		if day.Weekday() != start.Weekday() {
			return false, nil
		}
		weeks := int(day.Sub(start).Hours() / (24 * 7))
		return weeks%interval == 0, nil

	case Monthly:
		// Months shorter than the anchor day never match; there is no
		// rollover to month-end.
		if day.Day() != start.Day() {
			return false, nil
		}
		months := (day.Year()-start.Year())*12 + int(day.Month()) - int(start.Month())
		return months%interval == 0, nil

	case Yearly:
		if day.Month() != start.Month() || day.Day() != start.Day() {
			return false, nil
		}
		return (day.Year()-start.Year())%interval == 0, nil

	default:
		return false, fmt.Errorf("unknown recurrence type %q", r.Frequency)
	}
}

// midnight normalizes t to a UTC midnight so day arithmetic is exact
// regardless of the zone or time-of-day it arrived with.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
