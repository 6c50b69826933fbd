package dateparse

import (
	"testing"
	"time"
)

// Fixed reference time: Wednesday, 2026-02-18 12:00:00 UTC
var testNow = time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)

func TestParseSince_ExactDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2026-03-01", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-12-31", time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"2026-02-01T09:30:00Z", time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseSinceFrom(tt.input, testNow)
		if err != nil {
			t.Errorf("ParseSinceFrom(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseSinceFrom(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseSince_Ago(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"90m", testNow.Add(-90 * time.Minute)},
		{"12h", testNow.Add(-12 * time.Hour)},
		{"-12h", testNow.Add(-12 * time.Hour)},
		{"0d", testNow},
		{"3d", time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)},
		{"2w", time.Date(2026, 2, 4, 12, 0, 0, 0, time.UTC)},
		{"1mo", time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseSinceFrom(tt.input, testNow)
		if err != nil {
			t.Errorf("ParseSinceFrom(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseSinceFrom(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseSince_Keywords(t *testing.T) {
	midnight := time.Date(2026, 2, 18, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		input string
		want  time.Time
	}{
		{"now", testNow},
		{"today", midnight},
		{"Yesterday", midnight.AddDate(0, 0, -1)},
		{"last-week", midnight.AddDate(0, 0, -7)},
		{"last-month", time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseSinceFrom(tt.input, testNow)
		if err != nil {
			t.Errorf("ParseSinceFrom(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseSinceFrom(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseSince_DayNames(t *testing.T) {
	// testNow is a Wednesday
	tests := []struct {
		input string
		want  string
	}{
		{"monday", "2026-02-16"},
		{"tuesday", "2026-02-17"},
		{"wednesday", "2026-02-11"}, // same weekday goes back a week
		{"thursday", "2026-02-12"},
		{"sunday", "2026-02-15"},
	}
	for _, tt := range tests {
		got, err := ParseSinceFrom(tt.input, testNow)
		if err != nil {
			t.Errorf("ParseSinceFrom(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if s := got.Format("2006-01-02"); s != tt.want {
			t.Errorf("ParseSinceFrom(%q) = %s, want %s", tt.input, s, tt.want)
		}
	}
}

func TestParseSince_Errors(t *testing.T) {
	inputs := []string{"", "   ", "someday", "3y", "d", "12", "2026-13-01"}
	for _, input := range inputs {
		if _, err := ParseSinceFrom(input, testNow); err == nil {
			t.Errorf("ParseSinceFrom(%q): expected error", input)
		}
	}
}
