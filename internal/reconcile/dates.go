package reconcile

import (
	"fmt"
	"time"
)

// DateFormat is the canonical calendar-day format used everywhere in the
// engine. All conversions between time.Time and date strings go through
// FormatDate/ParseDate so that the "today" boundary always follows the
// local calendar day, never a UTC-shifted instant.
const DateFormat = "2006-01-02"

// FormatDate renders t as a local calendar day.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// ParseDate parses a YYYY-MM-DD string into a local-midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateFormat, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Today returns the current local calendar day.
func Today() string {
	return FormatDate(time.Now())
}

// DatesBetween enumerates every calendar date from start to end inclusive,
// ascending. Returns an empty slice when start is after end.
func DatesBetween(start, end string) ([]string, error) {
	from, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseDate(end)
	if err != nil {
		return nil, err
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, FormatDate(d))
	}
	return dates, nil
}
