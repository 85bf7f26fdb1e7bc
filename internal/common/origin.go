package common

import (
	"strconv"
	"strings"
	"time"

	cerrors "github.com/spetersoncode/countdown/internal/errors"
)

// originLayouts are tried in order after the integer form. Layouts without a
// zone are read as UTC.
var originLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseOrigin parses a user-entered date into milliseconds since the Unix
// epoch. It accepts a bare integer millisecond count or one of the
// originLayouts.
func ParseOrigin(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, invalidDate(s)
	}

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}

	for _, layout := range originLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, invalidDate(s)
}

func invalidDate(s string) *cerrors.Error {
	return cerrors.InvalidInput("entered datetime is invalid").
		WithDetails("date", s).
		WithSuggestion("Use milliseconds since the epoch, RFC 3339, or YYYY-MM-DD[THH:MM[:SS]].")
}
