package ticket

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayouts is tried in order and the first layout that parses wins.
// Day-first numeric layouts precede month-first ones, so 03/05/2024 is 3 May.
var dateLayouts = []string{
	// Jira UI exports
	"2/Jan/06 3:04 PM",
	"2/Jan/06 15:04",
	"2/Jan/2006 3:04 PM",
	"2/Jan/2006 15:04",
	"2/Jan/06",
	"2/Jan/2006",
	// ISO-8601
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	// DD/MM/YYYY
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	// MM/DD/YYYY, reached only when the day-first reading is impossible
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	// M/D/YY, common in ServiceNow list exports
	"1/2/06 15:04:05",
	"1/2/06 15:04",
	"1/2/06 3:04 PM",
	"1/2/06",
}

// ParseDate converts a loosely formatted timestamp into UTC.
// Timestamps carrying an offset are converted; zone-less ones are read as UTC.
// Conversion can move the calendar date of an offset timestamp across
// midnight, and with it the month a ticket lands in on the trend.
// The boolean is false for empty or unparseable input.
func ParseDate(s string) (time.Time, bool) {
	s = strings.ToUpper(strings.Join(strings.Fields(s), " "))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseDatePtr is ParseDate for optional record fields.
func ParseDatePtr(s string) *time.Time {
	if t, ok := ParseDate(s); ok {
		return &t
	}
	return nil
}

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	// A week is seven calendar days.
	secondsPerWeek = 7 * secondsPerDay
)

var durationUnits = map[string]int64{
	"w": secondsPerWeek,
	"d": secondsPerDay,
	"h": secondsPerHour,
	"m": secondsPerMinute,
	"s": 1,
}

var durationToken = regexp.MustCompile(`(\d+)\s*([A-Za-z]+)`)

// ParseDuration reads either a compound duration ("1w 2d 3h 30m", any subset,
// any order, repeated units are summed) or a plain number of seconds.
// Any token it does not understand makes the whole value absent.
func ParseDuration(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, n >= 0
	}
	if !strings.ContainsAny(s, "wdhmsWDHMS") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || f < 0 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	}

	matches := durationToken.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return 0, false
	}

	var total int64
	pos := 0
	for _, m := range matches {
		if strings.TrimSpace(s[pos:m[0]]) != "" {
			return 0, false
		}
		pos = m[1]

		unit, ok := durationUnits[strings.ToLower(s[m[4]:m[5]])]
		if !ok {
			return 0, false
		}
		n, err := strconv.ParseInt(s[m[2]:m[3]], 10, 64)
		if err != nil || n > (math.MaxInt64-total)/unit {
			return 0, false
		}
		total += n * unit
	}
	if strings.TrimSpace(s[pos:]) != "" {
		return 0, false
	}
	return total, true
}

// ParseDurationPtr is ParseDuration for optional record fields.
func ParseDurationPtr(s string) *int64 {
	if n, ok := ParseDuration(s); ok {
		return &n
	}
	return nil
}

// FormatDuration renders seconds the way tracking tools display them, e.g. "1w 2d 3h 30m".
func FormatDuration(seconds int64) string {
	switch {
	case seconds < 0:
		return "n/a"
	case seconds == 0:
		return "0m"
	case seconds < secondsPerMinute:
		return "< 1m"
	}

	var parts []string
	for _, u := range []struct {
		suffix string
		size   int64
	}{{"w", secondsPerWeek}, {"d", secondsPerDay}, {"h", secondsPerHour}, {"m", secondsPerMinute}} {
		if n := seconds / u.size; n > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", n, u.suffix))
			seconds %= u.size
		}
	}
	return strings.Join(parts, " ")
}

// FormatDays renders a day count with one decimal.
func FormatDays(days float64) string {
	if days < 1 {
		return "< 1d"
	}
	return fmt.Sprintf("%.1fd", days)
}
