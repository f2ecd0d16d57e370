// Package timeutil implements clock arithmetic on "HH:MM" strings as used by
// the timetable. Times are 24-hour wall clock values with no date attached;
// arithmetic wraps past midnight.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// Slot duration bounds in minutes.
const (
	MinDuration = 15
	MaxDuration = 240
)

// ParseClock parses a 24-hour "HH:MM" string into minutes since midnight.
// Both components must be exactly two digits; Atoi alone would accept signs.
func ParseClock(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 || !twoDigits(parts[0]) || !twoDigits(parts[1]) {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour*60 + minute, nil
}

func twoDigits(s string) bool {
	if len(s) != 2 {
		return false
	}
	return s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ComputeEndTime adds durationMinutes to a "HH:MM" start time, wrapping past
// midnight. It fails only when the start time is malformed.
func ComputeEndTime(startTime string, durationMinutes int) (string, error) {
	start, err := ParseClock(startTime)
	if err != nil {
		return "", err
	}
	return FormatClock(start + durationMinutes), nil
}

// ValidDuration reports whether a slot duration is within the allowed bounds.
func ValidDuration(durationMinutes int) bool {
	return durationMinutes >= MinDuration && durationMinutes <= MaxDuration
}

// ValidateHour12 reports whether value is a numeric 12-hour clock hour (1-12).
func ValidateHour12(value string) bool {
	hour, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return hour >= 1 && hour <= 12
}

// ValidateMinute reports whether value is a numeric minute (0-59).
func ValidateMinute(value string) bool {
	minute, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return minute >= 0 && minute <= 59
}
