package holiday

import (
	"fmt"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/teambition/rrule-go"
)

// Observance computes the date a recurring holiday falls on in a given
// year. ok is false when the holiday is not observed that year, for
// example before the law establishing it took effect.
//
// Implementations must be pure; the same Observance is shared by every
// calendar that uses it. Years below 1 are a caller error and panic.
type Observance interface {
	Observe(year int) (date time.Time, ok bool)
}

// ObservanceFunc adapts a plain function to Observance.
type ObservanceFunc func(year int) (time.Time, bool)

func (f ObservanceFunc) Observe(year int) (time.Time, bool) {
	mustValidYear(year)
	return f(year)
}

// Last selects the final occurrence of a weekday in NthWeekday.
const Last = -1

// NthWeekday is the N-th given weekday of a month, such as the first
// Monday of September. N ranges over 1..5 or Last. An N-th occurrence the
// month does not have (a fifth Monday in a short month) is not observed.
type NthWeekday struct {
	Month   time.Month
	Weekday time.Weekday
	N       int
}

func (o NthWeekday) Observe(year int) (time.Time, bool) {
	mustValidYear(year)

	if o.N == Last {
		last := Date(year, o.Month+1, 0)
		back := (int(last.Weekday()) - int(o.Weekday) + 7) % 7
		return last.AddDate(0, 0, -back), true
	}
	if o.N < 1 || o.N > 5 {
		return time.Time{}, false
	}

	first := Date(year, o.Month, 1)
	offset := (int(o.Weekday) - int(first.Weekday()) + 7) % 7
	d := first.AddDate(0, 0, offset+(o.N-1)*7)
	if d.Month() != o.Month {
		return time.Time{}, false
	}
	return d, true
}

func (o NthWeekday) String() string {
	if o.N == Last {
		return fmt.Sprintf("last %s of %s", o.Weekday, o.Month)
	}
	return fmt.Sprintf("%s %s of %s", ordinal(o.N), o.Weekday, o.Month)
}

// FixedDate is the same month and day every year. Feb 29 is only
// observed in leap years.
type FixedDate struct {
	Month time.Month
	Day   int
}

func (o FixedDate) Observe(year int) (time.Time, bool) {
	mustValidYear(year)
	d := Date(year, o.Month, o.Day)
	if d.Month() != o.Month || d.Day() != o.Day {
		return time.Time{}, false
	}
	return d, true
}

// YearRange restricts an Observance to the years From..To inclusive.
// A zero bound is open.
type YearRange struct {
	From, To   int
	Observance Observance
}

// Since observes o from year onwards.
func Since(year int, o Observance) YearRange {
	return YearRange{From: year, Observance: o}
}

// Until observes o up to and including year.
func Until(year int, o Observance) YearRange {
	return YearRange{To: year, Observance: o}
}

// Between observes o in from..to inclusive.
func Between(from, to int, o Observance) YearRange {
	return YearRange{From: from, To: to, Observance: o}
}

func (o YearRange) Observe(year int) (time.Time, bool) {
	mustValidYear(year)
	if o.From > 0 && year < o.From {
		return time.Time{}, false
	}
	if o.To > 0 && year > o.To {
		return time.Time{}, false
	}
	return o.Observance.Observe(year)
}

// DateList observes a holiday only on explicitly listed dates, such as
// one-off closures. When a year lists several dates the earliest is used.
type DateList struct {
	byYear map[int]time.Time
}

// OnDates returns a DateList for dates; clock and zone are ignored.
func OnDates(dates ...time.Time) DateList {
	l := DateList{byYear: make(map[int]time.Time, len(dates))}
	for _, t := range dates {
		d := civil(t)
		if prev, ok := l.byYear[d.Year()]; ok && !d.Before(prev) {
			continue
		}
		l.byYear[d.Year()] = d
	}
	return l
}

func (o DateList) Observe(year int) (time.Time, bool) {
	mustValidYear(year)
	d, ok := o.byYear[year]
	return d, ok
}

// AnchorFunc returns the date a relative holiday is counted from.
type AnchorFunc func(year int) time.Time

// EasterSunday is the Western (Gregorian) Easter Sunday.
func EasterSunday(year int) time.Time {
	return civil(cal.CalcEasterOffset(&cal.Holiday{}, year))
}

// OffsetFrom is a holiday a fixed number of days away from an anchor date,
// for example Good Friday two days before Easter Sunday.
type OffsetFrom struct {
	Anchor AnchorFunc
	Days   int
}

// EasterOffset is shorthand for OffsetFrom{EasterSunday, days}.
func EasterOffset(days int) OffsetFrom {
	return OffsetFrom{Anchor: EasterSunday, Days: days}
}

func (o OffsetFrom) Observe(year int) (time.Time, bool) {
	mustValidYear(year)
	return civil(o.Anchor(year)).AddDate(0, 0, o.Days), true
}

// RRule observes the first occurrence, within the year, of an RFC 5545
// recurrence rule such as "FREQ=YEARLY;BYMONTH=9;BYDAY=1MO". The rule may
// carry a DTSTART, either inline or as a leading "DTSTART:..." line; it
// fixes the phase of INTERVAL and nothing is observed before it. Without
// one the rule is unbounded and INTERVAL counts from January 1, 2000, so
// "FREQ=YEARLY;INTERVAL=4" falls on leap years.
type RRule struct {
	text     string
	opt      rrule.ROption
	anchored bool
}

var rruleEpoch = Date(2000, time.January, 1)

// ParseRRule parses the RRULE value (with or without the "RRULE:" prefix).
func ParseRRule(s string) (*RRule, error) {
	text := strings.TrimPrefix(strings.TrimSpace(s), "RRULE:")
	opt, err := rrule.StrToROption(text)
	if err != nil {
		return nil, fmt.Errorf("holiday: parse rrule %q: %w", s, err)
	}
	anchored := !opt.Dtstart.IsZero()
	if !anchored {
		opt.Dtstart = rruleEpoch
	}
	if _, err := rrule.NewRRule(*opt); err != nil {
		return nil, fmt.Errorf("holiday: rrule %q: %w", s, err)
	}
	return &RRule{text: text, opt: *opt, anchored: anchored}, nil
}

func (o *RRule) Observe(year int) (time.Time, bool) {
	mustValidYear(year)

	opt := o.opt
	loc := opt.Dtstart.Location()
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	to := time.Date(year+1, time.January, 1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)
	if o.anchored && to.Before(opt.Dtstart) {
		return time.Time{}, false
	}
	if p := o.periodYears(); p > 0 {
		// Moving DTSTART by whole periods keeps the phase and spares
		// iterating every occurrence since the anchor.
		shift := floorMod(year-opt.Dtstart.Year(), p)
		start := year - shift
		if !o.anchored || start > opt.Dtstart.Year() {
			opt.Dtstart = opt.Dtstart.AddDate(start-opt.Dtstart.Year(), 0, 0)
		}
	} else if !o.anchored && year < opt.Dtstart.Year() {
		opt.Dtstart = time.Date(1, time.January, 1, 0, 0, 0, 0, loc)
	}
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return time.Time{}, false
	}
	hits := r.Between(from, to, true)
	if len(hits) == 0 {
		return time.Time{}, false
	}
	return civil(hits[0]), true
}

// periodYears is the number of years after which the rule repeats the
// same dates, or 0 when it does not line up with the calendar year or is
// bounded by COUNT.
func (o *RRule) periodYears() int {
	if o.opt.Count > 0 {
		return 0
	}
	n := o.opt.Interval
	if n < 1 {
		n = 1
	}
	switch o.opt.Freq {
	case rrule.YEARLY:
		return n
	case rrule.MONTHLY:
		return n / gcd(n, 12)
	default:
		return 0
	}
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func floorMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

func (o *RRule) String() string { return o.text }

func ordinal(n int) string {
	switch n {
	case 1:
		return "first"
	case 2:
		return "second"
	case 3:
		return "third"
	case 4:
		return "fourth"
	case 5:
		return "fifth"
	default:
		return fmt.Sprintf("%dth", n)
	}
}
