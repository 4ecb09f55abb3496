// Package timespec parses the time bounds accepted by `capo list`.
package timespec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse resolves a time specification relative to the current time.
// See ParseAt for accepted forms.
func Parse(spec string) (int64, error) {
	return ParseAt(spec, time.Now())
}

// ParseAt resolves a time specification to Unix milliseconds. Accepted forms:
//   - RFC3339 timestamps: "2025-10-29T13:00:00Z"
//   - Calendar dates (UTC midnight): "2025-10-29"
//   - Go durations, meaning that long before now: "90m", "1h30m"
//   - Whole days or weeks before now: "3d", "2w"
func ParseAt(spec string, now time.Time) (int64, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, fmt.Errorf("empty time specification")
	}

	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t.UnixMilli(), nil
	}
	if t, err := time.Parse(time.DateOnly, spec); err == nil {
		return t.UnixMilli(), nil
	}

	if d, ok := parseCalendarSpan(spec); ok {
		return now.Add(-d).UnixMilli(), nil
	}
	if d, err := time.ParseDuration(spec); err == nil {
		return now.Add(-d).UnixMilli(), nil
	}

	return 0, fmt.Errorf("invalid time specification: %s (use a duration like '2h' or '3d', a date like '2025-10-29', or RFC3339)", spec)
}

// parseCalendarSpan handles "Nd" and "Nw", which time.ParseDuration rejects.
func parseCalendarSpan(spec string) (time.Duration, bool) {
	if len(spec) < 2 {
		return 0, false
	}
	var unit time.Duration
	switch spec[len(spec)-1] {
	case 'd':
		unit = 24 * time.Hour
	case 'w':
		unit = 7 * 24 * time.Hour
	default:
		return 0, false
	}
	n, err := strconv.Atoi(spec[:len(spec)-1])
	if err != nil || n < 0 {
		return 0, false
	}
	return time.Duration(n) * unit, true
}

// ParseRange parses --since and --until into millisecond bounds.
// Zero means unbounded. Both set requires since < until.
func ParseRange(since, until string) (sinceMs, untilMs int64, err error) {
	now := time.Now()

	if since != "" {
		if sinceMs, err = ParseAt(since, now); err != nil {
			return 0, 0, fmt.Errorf("invalid --since: %w", err)
		}
	}
	if until != "" {
		if untilMs, err = ParseAt(until, now); err != nil {
			return 0, 0, fmt.Errorf("invalid --until: %w", err)
		}
	}

	if sinceMs > 0 && untilMs > 0 && sinceMs >= untilMs {
		return 0, 0, fmt.Errorf("--since must be before --until")
	}
	return sinceMs, untilMs, nil
}
