package ticket

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"JiraAmPm", "05/Mar/24 10:15 AM", time.Date(2024, 3, 5, 10, 15, 0, 0, time.UTC)},
		{"JiraPm", "5/Mar/24 3:45 PM", time.Date(2024, 3, 5, 15, 45, 0, 0, time.UTC)},
		{"JiraLowercaseMeridiem", "05/mar/24 10:15 pm", time.Date(2024, 3, 5, 22, 15, 0, 0, time.UTC)},
		{"JiraFourDigitYear", "05/Mar/2024 10:15 AM", time.Date(2024, 3, 5, 10, 15, 0, 0, time.UTC)},
		{"Jira24h", "05/Mar/24 22:15", time.Date(2024, 3, 5, 22, 15, 0, 0, time.UTC)},
		{"ISOWithT", "2024-03-05T10:15:30", time.Date(2024, 3, 5, 10, 15, 30, 0, time.UTC)},
		{"ISOWithSpace", "2024-03-05 10:15:30", time.Date(2024, 3, 5, 10, 15, 30, 0, time.UTC)},
		{"ISOZulu", "2024-03-05T10:15:30Z", time.Date(2024, 3, 5, 10, 15, 30, 0, time.UTC)},
		{"ISOOffsetColon", "2024-03-05T10:15:30+02:00", time.Date(2024, 3, 5, 8, 15, 30, 0, time.UTC)},
		{"JiraRestOffset", "2024-03-05T10:15:30.000+0200", time.Date(2024, 3, 5, 8, 15, 30, 0, time.UTC)},
		{"ISOMinutesZulu", "2024-01-15T10:00Z", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)},
		{"ISOMinutesOffset", "2024-01-15T10:00+01:00", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)},
		{"SpaceSeparatedOffset", "2024-01-15 10:00:00 +0000", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)},
		{"OffsetCrossesMidnight", "2024-02-01 00:30:00 +0200", time.Date(2024, 1, 31, 22, 30, 0, 0, time.UTC)},
		{"ISOMinutes", "2024-03-05 10:15", time.Date(2024, 3, 5, 10, 15, 0, 0, time.UTC)},
		{"DateOnly", "2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"DayFirst", "03/05/2024", time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)},
		{"DayFirstWithTime", "13/02/2024 09:30", time.Date(2024, 2, 13, 9, 30, 0, 0, time.UTC)},
		{"MonthFirstFallback", "02/13/2024", time.Date(2024, 2, 13, 0, 0, 0, 0, time.UTC)},
		{"ShortUS", "3/5/24 14:00", time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)},
		{"SurroundingSpace", "  2024-03-05  ", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if !ok {
				t.Fatalf("ParseDate(%q) reported absent", tt.input)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDate_Absent(t *testing.T) {
	for _, input := range []string{"", "   ", "not a date", "2024-13-45", "32/Mar/24 10:15 AM", "yesterday", "2024/03/05/01"} {
		if got, ok := ParseDate(input); ok {
			t.Errorf("ParseDate(%q) = %v, want absent", input, got)
		}
		if ParseDatePtr(input) != nil {
			t.Errorf("ParseDatePtr(%q) should be nil", input)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"Week", "1w", 7 * 86400},
		{"Day", "2d", 2 * 86400},
		{"Hours", "3h", 3 * 3600},
		{"Minutes", "30m", 1800},
		{"Seconds", "45s", 45},
		{"Compound", "1w 2d 3h 30m", 7*86400 + 2*86400 + 3*3600 + 1800},
		{"AnyOrder", "30m 1w", 7*86400 + 1800},
		{"NoSpaces", "2d4h", 2*86400 + 4*3600},
		{"UpperCase", "1H 15M", 3600 + 900},
		{"RepeatedUnitsSum", "1h 1h", 7200},
		{"PlainSeconds", "3600", 3600},
		{"Zero", "0", 0},
		{"DecimalSecondsTruncate", "90.7", 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDuration(tt.input)
			if !ok {
				t.Fatalf("ParseDuration(%q) reported absent", tt.input)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDuration_Absent(t *testing.T) {
	for _, input := range []string{"", "  ", "abc", "1w 2x", "2 days", "1h and 5m", "-30", "1.5h", "NaN", "Inf", "99999999999999999999h"} {
		if got, ok := ParseDuration(input); ok {
			t.Errorf("ParseDuration(%q) = %d, want absent", input, got)
		}
		if ParseDurationPtr(input) != nil {
			t.Errorf("ParseDurationPtr(%q) should be nil", input)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{-1, "n/a"},
		{0, "0m"},
		{30, "< 1m"},
		{1800, "30m"},
		{7*86400 + 2*86400 + 3*3600 + 1800, "1w 2d 3h 30m"},
		{86400, "1d"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}

	// Formatting then parsing preserves whole minutes.
	in := int64(7*86400 + 5*3600 + 15*60)
	back, ok := ParseDuration(FormatDuration(in))
	if !ok || back != in {
		t.Errorf("round trip of %d gave %d (ok=%v)", in, back, ok)
	}
}
