// Package dateparse turns human time references such as "yesterday",
// "3d" or "2026-03-01" into the past instant they name.
package dateparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseSince parses input relative to the current time.
func ParseSince(input string) (time.Time, error) {
	return ParseSinceFrom(input, time.Now())
}

// ParseSinceFrom parses input relative to now. Results are in now's location.
//
// Supported formats:
//   - Exact dates: "2026-03-01" (start of that day)
//   - Timestamps: "2026-03-01T09:30:00Z"
//   - Ago offsets: "90m", "12h", "3d", "2w", "1mo", optionally prefixed with "-"
//   - Day names: "monday", "tuesday", etc. (most recent past occurrence)
//   - Keywords: "now", "today", "yesterday", "last-week", "last-month"
func ParseSinceFrom(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date input")
	}

	if t, err := time.ParseInLocation("2006-01-02", input, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, strings.ToUpper(input)); err == nil {
		return t.In(now.Location()), nil
	}

	today := startOfDay(now)
	switch input {
	case "now":
		return now, nil
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "last-week":
		return today.AddDate(0, 0, -7), nil
	case "last-month":
		return today.AddDate(0, -1, 0), nil
	}

	if t, ok, err := parseAgo(strings.TrimPrefix(input, "-"), now); ok {
		return t, err
	}

	dayMap := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	if target, ok := dayMap[input]; ok {
		daysBack := (int(now.Weekday()) - int(target) + 7) % 7
		if daysBack == 0 {
			daysBack = 7
		}
		return today.AddDate(0, 0, -daysBack), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", input)
}

// parseAgo handles "<n><unit>". ok is false when input does not have that shape.
func parseAgo(input string, now time.Time) (t time.Time, ok bool, err error) {
	i := 0
	for i < len(input) && input[i] >= '0' && input[i] <= '9' {
		i++
	}
	if i == 0 || i == len(input) {
		return time.Time{}, false, nil
	}
	n, err := strconv.Atoi(input[:i])
	if err != nil {
		return time.Time{}, true, fmt.Errorf("invalid offset %q: %w", input, err)
	}
	switch unit := input[i:]; unit {
	case "m", "min":
		return now.Add(-time.Duration(n) * time.Minute), true, nil
	case "h":
		return now.Add(-time.Duration(n) * time.Hour), true, nil
	case "d":
		return now.AddDate(0, 0, -n), true, nil
	case "w":
		return now.AddDate(0, 0, -7*n), true, nil
	case "mo":
		return now.AddDate(0, -n, 0), true, nil
	default:
		return time.Time{}, true, fmt.Errorf("unknown unit %q in %q (use m, h, d, w or mo)", unit, input)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
