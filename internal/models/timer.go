package models

import (
	"fmt"
	"strconv"
	"unicode/utf16"
)

// Timer is a persisted countdown target.
type Timer struct {
	Key    string `json:"key" yaml:"key"`
	Name   string `json:"name" yaml:"name"`
	Origin int64  `json:"origin" yaml:"origin"`
}

// KeyPrefix prefixes every key derived from a timer name.
const KeyPrefix = "timer"

// HashName derives a timer key from its name: "timer" followed by a signed
// 32-bit polynomial hash (h = 31*h + c) over the first UTF-16 code unit of
// each code point.
func HashName(name string) string {
	var h int32
	for _, r := range name {
		unit := r
		if r >= 0x10000 {
			unit, _ = utf16.EncodeRune(r)
		}
		h = 31*h + int32(unit)
	}
	return KeyPrefix + strconv.FormatInt(int64(h), 10)
}

// NewTimer builds a timer whose key is derived from name.
func NewTimer(name string, origin int64) Timer {
	return Timer{Key: HashName(name), Name: name, Origin: origin}
}

// Validate validates the timer fields.
func (t Timer) Validate() error {
	if t.Key == "" {
		return fmt.Errorf("timer key cannot be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("timer name cannot be empty")
	}
	return nil
}

// SeedTimers returns the records used when no timers have been stored yet.
func SeedTimers() []Timer {
	return []Timer{
		{Key: "Timer 0", Name: "Timer 0 name", Origin: 0},
		{Key: "Timer 1", Name: "Timer 1 here", Origin: 1696174196000},
		{Key: "Timer 2", Name: "IYKYK", Origin: 1607025600000},
	}
}

// Origins extracts the origins of timers, preserving order.
func Origins(timers []Timer) []int64 {
	origins := make([]int64, len(timers))
	for i, t := range timers {
		origins[i] = t.Origin
	}
	return origins
}

// IndexOfKey returns the position of the timer with key, or -1.
func IndexOfKey(timers []Timer, key string) int {
	for i, t := range timers {
		if t.Key == key {
			return i
		}
	}
	return -1
}
