package holiday

import (
	"fmt"
	"time"
)

// Kind distinguishes the two ways a Holiday can recur.
type Kind int

const (
	// Fixed holidays fall on the same month and day every year.
	Fixed Kind = iota + 1
	// Floating holidays delegate to an Observance.
	Floating
)

func (k Kind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Floating:
		return "floating"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Holiday is a named rule resolving to at most one date per year.
// Within a calendar a holiday is identified by its Name alone.
type Holiday struct {
	name        string
	description string
	kind        Kind

	// Fixed
	month time.Month
	day   int

	// Floating
	observance Observance
}

// NewFixed returns a holiday on month/day every year. Feb 29 is rejected
// since it would not resolve in every year.
func NewFixed(name, description string, month time.Month, day int) (*Holiday, error) {
	if name == "" {
		return nil, newValidationError("name", "holiday name is empty")
	}
	if month < time.January || month > time.December {
		return nil, newValidationError("month", fmt.Sprintf("%d is not a month", month))
	}
	// 2001 is not a leap year, so Feb 29 fails here too.
	if d := Date(2001, month, day); day < 1 || d.Month() != month {
		return nil, newValidationError("day", fmt.Sprintf("%s %d does not exist every year", month, day))
	}
	return &Holiday{name: name, description: description, kind: Fixed, month: month, day: day}, nil
}

// NewFloating returns a holiday whose date is computed by o.
func NewFloating(name, description string, o Observance) (*Holiday, error) {
	if name == "" {
		return nil, newValidationError("name", "holiday name is empty")
	}
	if o == nil {
		return nil, newValidationError("observance", "floating holiday "+name+" has no observance")
	}
	return &Holiday{name: name, description: description, kind: Floating, observance: o}, nil
}

// MustFixed is like NewFixed but panics on error. It is meant for
// package-level holiday tables.
func MustFixed(name, description string, month time.Month, day int) *Holiday {
	h, err := NewFixed(name, description, month, day)
	if err != nil {
		panic(err)
	}
	return h
}

// MustFloating is like NewFloating but panics on error.
func MustFloating(name, description string, o Observance) *Holiday {
	h, err := NewFloating(name, description, o)
	if err != nil {
		panic(err)
	}
	return h
}

func (h *Holiday) Name() string        { return h.name }
func (h *Holiday) Description() string { return h.description }
func (h *Holiday) Kind() Kind          { return h.kind }

// MonthDay returns the literal date of a Fixed holiday; ok is false for
// Floating holidays.
func (h *Holiday) MonthDay() (month time.Month, day int, ok bool) {
	if h.kind != Fixed {
		return 0, 0, false
	}
	return h.month, h.day, true
}

// Observance returns the rule of a Floating holiday, or nil.
func (h *Holiday) Observance() Observance {
	return h.observance
}

// Resolve returns the unadjusted date of the holiday in year.
func (h *Holiday) Resolve(year int) (time.Time, bool) {
	mustValidYear(year)
	switch h.kind {
	case Fixed:
		return Date(year, h.month, h.day), true
	case Floating:
		return h.observance.Observe(year)
	default:
		return time.Time{}, false
	}
}

func (h *Holiday) String() string {
	return h.name
}

// HolidayDate is one holiday resolved and rolled for one year.
type HolidayDate struct {
	holiday *Holiday
	date    time.Time
}

func (hd HolidayDate) Holiday() *Holiday   { return hd.holiday }
func (hd HolidayDate) Date() time.Time     { return hd.date }
func (hd HolidayDate) Name() string        { return hd.holiday.name }
func (hd HolidayDate) Description() string { return hd.holiday.description }
func (hd HolidayDate) String() string      { return hd.date.Format(time.DateOnly) + " " + hd.holiday.name }
