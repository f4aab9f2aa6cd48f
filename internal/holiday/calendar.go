// Package holiday resolves named holidays to concrete dates for a year,
// rolls them off weekend days and merges independently defined calendars.
//
// Every type in this package is immutable once built and safe for
// concurrent use.
package holiday

import (
	"fmt"
	"slices"
	"time"
)

// StandardWeekend is Saturday and Sunday.
var StandardWeekend = NewWeekdaySet(time.Saturday, time.Sunday)

// Options describe a Calendar for New. Code and Name are required. A zero
// WeekendDays means StandardWeekend and a nil DateRoll means NoRoll.
type Options struct {
	Code        string
	Name        string
	Holidays    []*Holiday
	WeekendDays WeekdaySet
	DateRoll    DateRoll
}

// Calendar is a set of holidays together with the weekend days and roll
// policy used to adjust them.
type Calendar struct {
	code     string
	name     string
	holidays HolidaySet
	weekend  WeekdaySet
	roll     DateRoll
}

// New validates opts and returns the calendar. Holidays sharing a name
// are collapsed; the first one listed is kept.
func New(opts Options) (*Calendar, error) {
	if opts.Code == "" {
		return nil, newValidationError("code", "calendar code is empty")
	}
	if opts.Name == "" {
		return nil, newValidationError("name", "calendar name is empty")
	}
	for i, h := range opts.Holidays {
		if h == nil {
			return nil, newValidationError("holidays", fmt.Sprintf("entry %d is nil", i))
		}
	}

	weekend := opts.WeekendDays
	if weekend.IsEmpty() {
		weekend = StandardWeekend
	}
	if weekend.IsUniversal() {
		return nil, newValidationError("weekend days", "every day of the week is a weekend day")
	}

	roll := opts.DateRoll
	if roll == nil {
		roll = NoRoll
	}

	return &Calendar{
		code:     opts.Code,
		name:     opts.Name,
		holidays: newHolidaySet(opts.Holidays),
		weekend:  weekend,
		roll:     roll,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(opts Options) *Calendar {
	c, err := New(opts)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Calendar) Code() string { return c.code }
func (c *Calendar) Name() string { return c.name }

// Holidays returns a read-only view of the holiday set.
func (c *Calendar) Holidays() HolidaySet { return c.holidays }

// WeekendDays returns the weekend-day set.
func (c *Calendar) WeekendDays() WeekdaySet { return c.weekend }

func (c *Calendar) DateRoll() DateRoll { return c.roll }

func (c *Calendar) String() string {
	return fmt.Sprintf("HolidayCalendar[code='%s', name='%s']", c.code, c.name)
}

// Calculate resolves every holiday for year, rolls the results with the
// calendar's DateRoll and returns them in date order. Holidays not
// observed in year are left out. Holidays landing on the same date keep
// their definition order. The result is never nil.
func (c *Calendar) Calculate(year int) []HolidayDate {
	out := make([]HolidayDate, 0, c.holidays.Len())
	for _, h := range c.holidays.items {
		d, ok := h.Resolve(year)
		if !ok {
			continue
		}
		out = append(out, HolidayDate{holiday: h, date: c.roll.Apply(d, c.weekend)})
	}
	slices.SortStableFunc(out, func(a, b HolidayDate) int {
		return a.date.Compare(b.date)
	})
	return out
}

// MergeNamePolicy decides the name of a merged calendar.
type MergeNamePolicy int

const (
	// KeepLeftName keeps the receiver's name.
	KeepLeftName MergeNamePolicy = iota
	// JoinNames joins both names with " / ".
	JoinNames
)

// Merge is MergeWith(other, KeepLeftName).
func (c *Calendar) Merge(other *Calendar) *Calendar {
	return c.MergeWith(other, KeepLeftName)
}

// MergeWith returns a new calendar holding the holidays of both. The
// code is "<c>/<other>"; weekend days and roll policy come from c, and
// on a holiday name collision c's definition wins. If other is nil or c
// itself, c is returned as is.
func (c *Calendar) MergeWith(other *Calendar, policy MergeNamePolicy) *Calendar {
	if other == nil || other == c {
		return c
	}
	if c == nil {
		return other
	}

	name := c.name
	if policy == JoinNames {
		name = c.name + " / " + other.name
	}

	all := make([]*Holiday, 0, c.holidays.Len()+other.holidays.Len())
	all = append(all, c.holidays.items...)
	all = append(all, other.holidays.items...)

	return &Calendar{
		code:     c.code + "/" + other.code,
		name:     name,
		holidays: newHolidaySet(all),
		weekend:  c.weekend,
		roll:     c.roll,
	}
}

// MergeAll folds cals left to right with Merge, skipping nils. It returns
// nil when no calendar is given.
func MergeAll(cals ...*Calendar) *Calendar {
	var out *Calendar
	for _, c := range cals {
		if c == nil {
			continue
		}
		if out == nil {
			out = c
			continue
		}
		out = out.Merge(c)
	}
	return out
}

// IsWeekendUTC reports whether the UTC date of t is a weekend day.
func (c *Calendar) IsWeekendUTC(t time.Time) bool {
	return c.weekend.Contains(t.UTC().Weekday())
}

// IsWeekendUnixMilli is IsWeekendUTC for milliseconds since the Unix epoch.
func (c *Calendar) IsWeekendUnixMilli(ms int64) bool {
	return c.IsWeekendUTC(time.UnixMilli(ms))
}

// IsWeekendIn reports whether the date of t in loc is a weekend day. A nil
// loc means UTC.
func (c *Calendar) IsWeekendIn(t time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	return c.weekend.Contains(t.In(loc).Weekday())
}

// IsHoliday reports whether the date of t, read in t's own location, is
// a holiday after rolling. Rolled dates may cross into the neighbouring
// year, so the adjacent years are checked too.
func (c *Calendar) IsHoliday(t time.Time) (HolidayDate, bool) {
	day := civil(t)
	y := day.Year()
	for year := y - 1; year <= y+1; year++ {
		if year < 1 {
			continue
		}
		for _, hd := range c.Calculate(year) {
			if hd.date.Equal(day) {
				return hd, true
			}
		}
	}
	return HolidayDate{}, false
}

// IsBusinessDay reports whether the date of t is neither a weekend day nor
// a holiday.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	if c.weekend.Contains(t.Weekday()) {
		return false
	}
	_, holiday := c.IsHoliday(t)
	return !holiday
}

// HolidaySet is a read-only, name-keyed view of a calendar's holidays.
// Iteration order is definition order.
type HolidaySet struct {
	items []*Holiday
	index map[string]int
}

func newHolidaySet(hs []*Holiday) HolidaySet {
	s := HolidaySet{
		items: make([]*Holiday, 0, len(hs)),
		index: make(map[string]int, len(hs)),
	}
	for _, h := range hs {
		if _, dup := s.index[h.name]; dup {
			continue
		}
		s.index[h.name] = len(s.items)
		s.items = append(s.items, h)
	}
	return s
}

func (s HolidaySet) Len() int      { return len(s.items) }
func (s HolidaySet) IsEmpty() bool { return len(s.items) == 0 }

// Get returns the holiday called name.
func (s HolidaySet) Get(name string) (*Holiday, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

func (s HolidaySet) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// All returns a copy of the holidays.
func (s HolidaySet) All() []*Holiday {
	return slices.Clone(s.items)
}

// Names returns the holiday names in definition order.
func (s HolidaySet) Names() []string {
	out := make([]string, len(s.items))
	for i, h := range s.items {
		out[i] = h.name
	}
	return out
}

// Add always fails; calendars cannot be changed after construction.
func (s HolidaySet) Add(h *Holiday) error {
	name := "<nil>"
	if h != nil {
		name = h.name
	}
	return unsupported("add holiday " + name)
}

// Remove always fails, see Add.
func (s HolidaySet) Remove(name string) error {
	return unsupported("remove holiday " + name)
}
