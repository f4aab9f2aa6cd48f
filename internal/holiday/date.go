package holiday

import (
	"fmt"
	"strings"
	"time"
)

// Date returns the civil date year-month-day as midnight UTC. All dates
// produced by this package use this form, so they compare with ==.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// civil drops the clock and zone of t, keeping its wall-clock date.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

func mustValidYear(year int) {
	if year < 1 {
		panic(fmt.Sprintf("holiday: year %d out of range", year))
	}
}

// WeekdaySet is an immutable set of weekdays. The zero value is empty.
type WeekdaySet struct {
	bits uint8
}

const allWeekdays = 1<<7 - 1

// NewWeekdaySet returns the set holding days. Values outside
// Sunday..Saturday are ignored.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			continue
		}
		s.bits |= 1 << uint(d)
	}
	return s
}

// Contains reports whether d is in the set.
func (s WeekdaySet) Contains(d time.Weekday) bool {
	if d < time.Sunday || d > time.Saturday {
		return false
	}
	return s.bits&(1<<uint(d)) != 0
}

func (s WeekdaySet) Len() int {
	n := 0
	for b := s.bits; b != 0; b &= b - 1 {
		n++
	}
	return n
}

func (s WeekdaySet) IsEmpty() bool { return s.bits == 0 }

// IsUniversal reports whether every day of the week is in the set.
func (s WeekdaySet) IsUniversal() bool { return s.bits == allWeekdays }

// Days returns the members in Sunday-first order.
func (s WeekdaySet) Days() []time.Weekday {
	out := make([]time.Weekday, 0, s.Len())
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

// Add always fails: a WeekdaySet obtained from a Calendar cannot be changed.
func (s WeekdaySet) Add(d time.Weekday) error {
	return unsupported("add weekday " + d.String())
}

// Remove always fails, see Add.
func (s WeekdaySet) Remove(d time.Weekday) error {
	return unsupported("remove weekday " + d.String())
}

func (s WeekdaySet) String() string {
	days := s.Days()
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	return "[" + strings.Join(names, " ") + "]"
}

// ParseWeekday accepts full or three-letter English weekday names in any case.
func ParseWeekday(s string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if v == name || v == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("holiday: unknown weekday %q", s)
}
