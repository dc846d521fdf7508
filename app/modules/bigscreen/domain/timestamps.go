package bigscreendomain

import (
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats the backend emits. Values without a zone
// are read as UTC. The second return is false for empty or unparsable input.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// firstTimestamp returns the first non-empty candidate.
func firstTimestamp(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// age reports how long ago value was relative to now.
func age(value string, now time.Time) (time.Duration, bool) {
	t, ok := ParseTimestamp(value)
	if !ok {
		return 0, false
	}
	return now.Sub(t), true
}
