package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/innerlevel/internal/constants"
)

// LoadLocation resolves a configured timezone name. Empty and "Local" mean
// the system zone.
func LoadLocation(timezone string) (*time.Location, error) {
	switch timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	return time.LoadLocation(timezone)
}

// ParseDate parses a YYYY-MM-DD string into midnight UTC of that calendar day.
// Calendar arithmetic on the result is free of DST effects.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// CalendarDay truncates t to its calendar day, keeping the day as seen in t's
// own location, and returns it as midnight UTC.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(CalendarDay(b).Sub(CalendarDay(a)).Hours() / 24)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}
