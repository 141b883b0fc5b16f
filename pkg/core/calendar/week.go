// Package calendar provides the date arithmetic shared across the rostering
// engine: Monday-aligned week indexing, month keys, and date-range iteration.
//
// The week index is load-bearing: every date within the same Monday–Sunday
// span must map to the same index, because weekly rotation and the
// consecutive-duty pattern both key off it.
package calendar

import "time"

// DateLayout is the canonical calendar-date format used across the engine
const DateLayout = "2006-01-02"

// Midnight normalizes a timestamp to its calendar date at 00:00 UTC
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the most recent Monday on or before the given date.
// Sunday maps to the previous Monday (six days back), keeping the week span
// Monday–Sunday.
func WeekStart(t time.Time) time.Time {
	d := Midnight(t)
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return d.AddDate(0, 0, -offset)
}

// WeekNumber returns the number of whole weeks between the date's week start
// and the Unix epoch's week start (Monday 1969-12-29). Two dates share a
// week number exactly when they fall in the same Monday–Sunday span.
func WeekNumber(t time.Time) int {
	epochWeekStart := time.Date(1969, time.December, 29, 0, 0, 0, 0, time.UTC)
	days := int(WeekStart(t).Sub(epochWeekStart).Hours() / 24)
	return days / 7
}

// SameWeek reports whether two dates fall in the same Monday–Sunday span
func SameWeek(a, b time.Time) bool {
	return WeekNumber(a) == WeekNumber(b)
}

// SameMonth reports whether two dates share calendar month and year
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// DateKey renders a calendar date as YYYY-MM-DD
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DatesBetween returns every calendar date in [start, end], ascending.
// Returns nil when end precedes start.
func DatesBetween(start, end time.Time) []time.Time {
	from, to := Midnight(start), Midnight(end)
	if to.Before(from) {
		return nil
	}
	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// DaysApart returns the whole calendar days from a to b (negative when b is
// earlier)
func DaysApart(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)).Hours() / 24)
}
