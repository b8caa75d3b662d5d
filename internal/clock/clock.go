package clock

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
)

// timeRE matches strict clock tokens like "10", "7:31", "10:30pm".
var timeRE = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(am|pm)?$`)

// Time is a time of day without a date component.
type Time struct {
	Hour   int
	Minute int
}

// FromMinutes builds a Time from minutes past midnight, normalized to a day.
func FromMinutes(m int) Time {
	m = ((m % 1440) + 1440) % 1440
	return Time{Hour: m / 60, Minute: m % 60}
}

// Minutes returns minutes past midnight.
func (t Time) Minutes() int {
	return t.Hour*60 + t.Minute
}

// String renders the time in 12-hour lowercase form, e.g. "07:15am".
func (t Time) String() string {
	h := t.Hour % 12
	if h == 0 {
		h = 12
	}
	suffix := "am"
	if t.Hour >= 12 {
		suffix = "pm"
	}
	return fmt.Sprintf("%02d:%02d%s", h, t.Minute, suffix)
}

// IsPlaceholder reports whether a token stands for "no value" in the log:
// a single period or an empty/whitespace-only string.
func IsPlaceholder(token string) bool {
	trimmed := strings.TrimSpace(token)
	return trimmed == "" || trimmed == "."
}

// Parse converts a free-form token into a time of day. Tokens matching
// H[:MM][am|pm] are handled directly; meridiem-less hours are taken mod 24.
// Anything else goes through a permissive date parser. Placeholder tokens
// and unparseable tokens report ok=false; Parse never fails loudly.
func Parse(token string) (Time, bool) {
	if IsPlaceholder(token) {
		return Time{}, false
	}
	token = strings.TrimSpace(token)

	if m := timeRE.FindStringSubmatch(strings.ToLower(token)); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		switch m[3] {
		case "pm":
			if hour != 12 {
				hour += 12
			}
		case "am":
			if hour == 12 {
				hour = 0
			}
		}
		if minute > 59 {
			return Time{}, false
		}
		return Time{Hour: hour % 24, Minute: minute}, true
	}

	parsed, err := dateparse.ParseAny(token)
	if err != nil {
		return Time{}, false
	}
	return Time{Hour: parsed.Hour(), Minute: parsed.Minute()}, true
}

// ParseDurationHours converts a token into a duration in hours.
// A clock-shaped token with a meridiem is read as hours since midnight,
// so a duration field fed "9:42pm" still yields a sensible count.
// "H:MM" with pure digit parts becomes H + MM/60, and anything else is
// tried as a plain float.
func ParseDurationHours(token string) (float64, bool) {
	if IsPlaceholder(token) {
		return 0, false
	}
	token = strings.TrimSpace(token)

	if m := timeRE.FindStringSubmatch(strings.ToLower(token)); m != nil && m[3] != "" {
		if t, ok := Parse(token); ok {
			return float64(t.Hour) + float64(t.Minute)/60, true
		}
	}

	if h, m, ok := strings.Cut(token, ":"); ok && isDigits(h) && isDigits(m) {
		hours, _ := strconv.Atoi(h)
		minutes, _ := strconv.Atoi(m)
		return float64(hours) + float64(minutes)/60, true
	}

	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
