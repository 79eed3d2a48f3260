package carbon

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseInstant parses an RFC 3339 timestamp or a YYYY-MM-DD date (midnight
// UTC). The result is in UTC.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, InvalidInputf("timestamp is required")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, InvalidInputf("invalid timestamp %q: want RFC 3339 or YYYY-MM-DD", s)
}

// ParseRangeEnd parses the inclusive upper bound of a date range. A
// date-only value covers that whole day and resolves to its last
// nanosecond.
func ParseRangeEnd(s string) (time.Time, error) {
	t, err := ParseInstant(s)
	if err != nil {
		return t, err
	}
	if _, dateErr := time.Parse(dateLayout, strings.TrimSpace(s)); dateErr == nil {
		return t.Add(24*time.Hour - time.Nanosecond), nil
	}
	return t, nil
}
