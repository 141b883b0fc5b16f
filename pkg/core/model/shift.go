package model

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// Shift defines a recurring duty time slot within a day.
// Times are HH:MM strings; an EndTime at or before StartTime means the shift
// runs overnight past midnight.
type Shift struct {
	ID        string
	Name      string
	StartTime string
	EndTime   string
}

// StartMinute returns the shift start as minute-of-day, 0 on parse failure
func (s *Shift) StartMinute() int {
	return parseMinute(s.StartTime)
}

// EndMinute returns the shift end as minute-of-day, 0 on parse failure
func (s *Shift) EndMinute() int {
	return parseMinute(s.EndTime)
}

// Overnight reports whether the shift wraps past midnight
func (s *Shift) Overnight() bool {
	return s.EndMinute() <= s.StartMinute()
}

// DurationMinutes returns the shift length in minutes, accounting for
// overnight wrap
func (s *Shift) DurationMinutes() int {
	start, end := s.StartMinute(), s.EndMinute()
	if end <= start {
		return minutesPerDay - start + end
	}
	return end - start
}

// Type derives a coarse label from the start time: morning before 12:00,
// afternoon before 18:00, night otherwise, overnight when the shift wraps
func (s *Shift) Type() string {
	if s.Overnight() {
		return "overnight"
	}
	switch start := s.StartMinute(); {
	case start < 12*60:
		return "morning"
	case start < 18*60:
		return "afternoon"
	default:
		return "night"
	}
}

// Overlaps reports whether two shifts intersect in minute-of-day terms.
// An overnight shift occupies [start, 24:00) plus [0:00, end); overlap is
// checked segment against segment, so the result is symmetric.
func (s *Shift) Overlaps(other *Shift) bool {
	for _, a := range s.segments() {
		for _, b := range other.segments() {
			if a.start < b.end && b.start < a.end {
				return true
			}
		}
	}
	return false
}

type minuteSpan struct {
	start, end int
}

func (s *Shift) segments() []minuteSpan {
	start, end := s.StartMinute(), s.EndMinute()
	if end <= start {
		return []minuteSpan{{start, minutesPerDay}, {0, end}}
	}
	return []minuteSpan{{start, end}}
}

// parseMinute converts an HH:MM string to minute-of-day. Malformed input
// yields 0 rather than an error; shift definitions are validated at the
// store boundary.
func parseMinute(hhmm string) int {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return h*60 + m
}

// ValidateShiftTime checks that a time string is a well-formed HH:MM value
func ValidateShiftTime(hhmm string) error {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid shift time %q: expected HH:MM", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return fmt.Errorf("invalid shift time %q: hour out of range", hhmm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return fmt.Errorf("invalid shift time %q: minute out of range", hhmm)
	}
	return nil
}
