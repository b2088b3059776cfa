package search

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// FreshnessWindow is how far back a news hit may be dated to count as fresh.
const FreshnessWindow = 7 * 24 * time.Hour

// ParseDate leniently parses raw. Timestamps without zone information are taken as UTC,
// zoned ones are converted to UTC. Empty or unparsable input reports false.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// IsFresh reports whether raw parses to a time within FreshnessWindow before now.
// Undated hits are never fresh.
func IsFresh(raw string, now time.Time) bool {
	t, ok := ParseDate(raw)
	if !ok {
		return false
	}
	return !t.Before(now.UTC().Add(-FreshnessWindow))
}
