// Package timeutil handles the 12-hour "HH:MM AM|PM" clock convention used
// by automation trigger times.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const clockLayout = "03:04 PM"

// ParseClockMinutes parses a 12-hour clock string into total minutes since
// midnight. "12:00 AM" is 0, "12:00 PM" is 720. A missing leading zero on the
// hour is tolerated.
func ParseClockMinutes(s string) (int, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	t, err := time.Parse(clockLayout, normalized)
	if err != nil {
		t, err = time.Parse("3:04 PM", normalized)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid trigger time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders a time in the same 12-hour convention.
func FormatClock(t time.Time) string {
	return t.Format(clockLayout)
}

// MinutesSinceMidnight for a wall-clock time.
func MinutesSinceMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// SameDay reports whether two instants fall on the same calendar date in the
// location of b.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
