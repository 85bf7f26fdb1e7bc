package countdown

import "time"

// Clock provides the current time in Unix milliseconds. Use SystemClock in
// production and FixedClock in tests.
type Clock interface {
	NowMillis() int64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// NowMillis returns the current Unix time in milliseconds.
func (SystemClock) NowMillis() int64 { return time.Now().UnixMilli() }

// FixedClock always returns the same instant.
type FixedClock int64

// NowMillis returns the fixed instant.
func (c FixedClock) NowMillis() int64 { return int64(c) }

// FromTime converts t to Unix milliseconds.
func FromTime(t time.Time) int64 {
	return t.UnixMilli()
}

// ToTime converts Unix milliseconds to a UTC time.Time.
func ToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
