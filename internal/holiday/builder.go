package holiday

import "time"

// Builder collects calendar settings fluently. Build validates them the
// same way New does; a Builder can be reused after Build.
//
//	c, err := holiday.NewBuilder().
//		Code("FRB").
//		Name("Federal Reserve Board").
//		Holiday(newYear, independence).
//		DateRoll(holiday.RollNearest).
//		Build()
type Builder struct {
	opts Options
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Code(code string) *Builder {
	b.opts.Code = code
	return b
}

func (b *Builder) Name(name string) *Builder {
	b.opts.Name = name
	return b
}

// Holiday appends holidays to the calendar.
func (b *Builder) Holiday(hs ...*Holiday) *Builder {
	b.opts.Holidays = append(b.opts.Holidays, hs...)
	return b
}

// WeekendDays replaces the weekend-day set.
func (b *Builder) WeekendDays(days ...time.Weekday) *Builder {
	b.opts.WeekendDays = NewWeekdaySet(days...)
	return b
}

// Weekend replaces the weekend-day set with s.
func (b *Builder) Weekend(s WeekdaySet) *Builder {
	b.opts.WeekendDays = s
	return b
}

func (b *Builder) DateRoll(r DateRoll) *Builder {
	b.opts.DateRoll = r
	return b
}

func (b *Builder) Build() (*Calendar, error) {
	opts := b.opts
	opts.Holidays = append([]*Holiday(nil), b.opts.Holidays...)
	return New(opts)
}
