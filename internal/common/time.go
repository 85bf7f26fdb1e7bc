package common

import (
	"fmt"
	"time"
)

// FormatAge returns a human-readable age string for a timestamp.
// Examples: "just now", "5m ago", "3h ago", "in 2d"
func FormatAge(t time.Time) string {
	return FormatDuration(time.Since(t))
}

// FormatRelative describes origin relative to now, both in Unix milliseconds.
func FormatRelative(origin, now int64) string {
	return FormatDuration(time.Duration(now-origin) * time.Millisecond)
}

// FormatDuration returns a coarse human-readable string for an elapsed
// duration. Negative durations lie in the future.
// Examples: "just now", "5m ago", "3h ago", "in 2d"
func FormatDuration(d time.Duration) string {
	future := d < 0
	if future {
		d = -d
	}

	var amount string
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		amount = fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		amount = fmt.Sprintf("%dh", int(d.Hours()))
	default:
		amount = fmt.Sprintf("%dd", int(d.Hours()/24))
	}

	if future {
		return "in " + amount
	}
	return amount + " ago"
}
