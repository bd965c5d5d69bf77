// Package clock provides an injectable time source plus the HHMM helpers
// used by delivery scheduling.
package clock

import "time"

// Clock supplies the current time. Services take a Clock so scheduling
// rules can be tested against a fixed instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystem returns a Clock reporting wall time in the given location.
func NewSystem(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}

// HHMM collapses a clock time into an integer of the form hour*100+minute,
// e.g. 09:30 -> 930 and 16:05 -> 1605. Delivery slots store their bounds in
// this encoding.
func HHMM(t time.Time) int {
	return t.Hour()*100 + t.Minute()
}

// SplitHHMM returns the hour and minute parts of an HHMM integer.
func SplitHHMM(v int) (hour, minute int) {
	return v / 100, v % 100
}

// ValidHHMM reports whether v encodes a real time of day.
func ValidHHMM(v int) bool {
	h, m := SplitHHMM(v)
	return v >= 0 && h <= 23 && m <= 59
}
