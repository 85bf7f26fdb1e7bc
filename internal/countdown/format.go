package countdown

import (
	"math"
	"strconv"
	"strings"

	cerrors "github.com/spetersoncode/countdown/internal/errors"
)

// maxSafeMillis is the largest integer a float64 holds exactly (2^53 - 1).
const maxSafeMillis = 1<<53 - 1

// Reduce folds a non-negative interval across units, coarsest first, and
// renders one "<count><suffix> " segment per unit. The trailing space is part
// of the output: Reduce(0, DefaultSpec.TimeUnits()) == "0d 0h 0m 0s ".
//
// Negative intervals are reduced by magnitude; the sign is Format's concern.
// A unit with a non-positive divisor renders a zero count and leaves the
// remainder untouched.
func Reduce(intervalMs int64, units []TimeUnit) string {
	return reduce(magnitude(intervalMs), units, "")
}

// Format renders an interval with the given spec. Intervals below zero get a
// single leading "-". Zero is treated as non-negative.
func Format(intervalMs int64, spec FormatSpec) string {
	sign := ""
	if intervalMs < 0 {
		sign = "-"
	}
	return reduce(magnitude(intervalMs), spec.TimeUnits(), sign)
}

// FormatOrigin renders origin - now. The difference is computed without
// overflow for any pair of int64 timestamps.
func FormatOrigin(origin, now int64, spec FormatSpec) string {
	return formatOrigin(origin, now, spec.TimeUnits())
}

// FormatAll renders every origin against now with every spec, preserving the
// order of both. The result has one row per origin and one column per spec.
// When specs is empty, DefaultSpec is used and each row has one column.
func FormatAll(now int64, origins []int64, specs []FormatSpec) ([][]string, error) {
	if len(specs) == 0 {
		specs = []FormatSpec{DefaultSpec}
	}

	tables := make([][]TimeUnit, len(specs))
	for i, s := range specs {
		if s.IsEmpty() {
			return nil, cerrors.InvalidInput("format spec %d selects no units", i).
				WithDetails("index", i)
		}
		tables[i] = s.TimeUnits()
	}

	rows := make([][]string, len(origins))
	for i, origin := range origins {
		row := make([]string, len(tables))
		for j, units := range tables {
			row[j] = formatOrigin(origin, now, units)
		}
		rows[i] = row
	}
	return rows, nil
}

// OriginsFromFloats converts float timestamps, as decoded from JSON or CBOR,
// into integer milliseconds. NaN, infinities, fractional values and values
// outside ±(2^53-1) are rejected.
func OriginsFromFloats(values []float64) ([]int64, error) {
	origins := make([]int64, len(values))
	for i, v := range values {
		ms, err := MillisFromFloat(v)
		if err != nil {
			return nil, cerrors.Wrap(err, cerrors.KindInvalidInput, "origin %d is invalid", i).
				WithDetails("index", i)
		}
		origins[i] = ms
	}
	return origins, nil
}

// MillisFromFloat converts a single float timestamp. See OriginsFromFloats.
func MillisFromFloat(v float64) (int64, error) {
	switch {
	case math.IsNaN(v):
		return 0, cerrors.InvalidInput("timestamp is NaN")
	case math.IsInf(v, 0):
		return 0, cerrors.InvalidInput("timestamp is infinite")
	case math.Trunc(v) != v:
		return 0, cerrors.InvalidInput("timestamp %v is not a whole number of milliseconds", v)
	case math.Abs(v) > maxSafeMillis:
		return 0, cerrors.InvalidInput("timestamp %v is outside the exact integer range", v)
	}
	return int64(v), nil
}

func formatOrigin(origin, now int64, units []TimeUnit) string {
	if origin >= now {
		return reduce(uint64(origin)-uint64(now), units, "")
	}
	return reduce(uint64(now)-uint64(origin), units, "-")
}

func reduce(remaining uint64, units []TimeUnit, prefix string) string {
	var b strings.Builder
	b.Grow(len(prefix) + len(units)*6)
	b.WriteString(prefix)

	var buf [20]byte
	for _, u := range units {
		var count uint64
		if u.Divisor > 0 {
			d := uint64(u.Divisor)
			count = remaining / d
			remaining %= d
		}
		b.Write(strconv.AppendUint(buf[:0], count, 10))
		b.WriteString(u.Suffix)
		b.WriteByte(' ')
	}
	return b.String()
}

// magnitude returns |v| as uint64, which is exact for math.MinInt64.
func magnitude(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}
