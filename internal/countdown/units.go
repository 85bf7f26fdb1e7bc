// Package countdown renders the distance between a timer origin and the
// current time as a breakdown of weeks, days, hours, minutes, seconds and
// milliseconds.
//
// All timestamps are int64 Unix milliseconds. The package has no state and
// every function is safe for concurrent use.
package countdown

import (
	"strings"

	cerrors "github.com/spetersoncode/countdown/internal/errors"
)

// TimeUnit is a display suffix paired with its length in milliseconds.
type TimeUnit struct {
	Suffix  string `json:"suffix"`
	Divisor int64  `json:"divisor_ms"`
}

// Unit identifies one entry of the canonical unit table.
type Unit uint8

// Units from coarsest to finest. The numeric order is the rendering order.
const (
	Week Unit = iota
	Day
	Hour
	Minute
	Second
	Millisecond

	numUnits
)

var timeUnits = [numUnits]TimeUnit{
	Week:        {Suffix: "w", Divisor: 1000 * 60 * 60 * 24 * 7},
	Day:         {Suffix: "d", Divisor: 1000 * 60 * 60 * 24},
	Hour:        {Suffix: "h", Divisor: 1000 * 60 * 60},
	Minute:      {Suffix: "m", Divisor: 1000 * 60},
	Second:      {Suffix: "s", Divisor: 1000},
	Millisecond: {Suffix: "ms", Divisor: 1},
}

var unitNames = [numUnits]string{"week", "day", "hour", "minute", "second", "millisecond"}

// Valid reports whether u names an entry of the unit table.
func (u Unit) Valid() bool {
	return u < numUnits
}

// TimeUnit returns the table entry for u. Invalid units return the zero value.
func (u Unit) TimeUnit() TimeUnit {
	if !u.Valid() {
		return TimeUnit{}
	}
	return timeUnits[u]
}

// String returns the long name of the unit.
func (u Unit) String() string {
	if !u.Valid() {
		return "unknown"
	}
	return unitNames[u]
}

// AllUnits returns every unit in canonical order.
func AllUnits() []Unit {
	units := make([]Unit, 0, numUnits)
	for u := Week; u < numUnits; u++ {
		units = append(units, u)
	}
	return units
}

// TimeUnits returns a copy of the canonical unit table.
func TimeUnits() []TimeUnit {
	out := make([]TimeUnit, numUnits)
	copy(out, timeUnits[:])
	return out
}

// ParseUnit parses a unit suffix ("w", "d", "h", "m", "s", "ms") or long name
// ("day", "hours", ...). Matching is case-insensitive.
func ParseUnit(s string) (Unit, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for u := Week; u < numUnits; u++ {
		if name == timeUnits[u].Suffix || name == unitNames[u] || name == unitNames[u]+"s" {
			return u, nil
		}
	}
	return 0, cerrors.InvalidInput("unknown time unit %q", s).
		WithSuggestion("Use one of: w, d, h, m, s, ms.")
}
