package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"holidaycal/internal/holiday"
	"holidaycal/internal/ics"
	appLog "holidaycal/internal/log"
	"holidaycal/internal/registry"
)

// ErrUnknownRule is returned for a holiday kind this package cannot build.
var ErrUnknownRule = errors.New("unknown holiday rule")

// Holiday kinds accepted in HolidayDef.Kind.
const (
	KindFixed        = "fixed"
	KindNthWeekday   = "nth_weekday"
	KindLastWeekday  = "last_weekday"
	KindEasterOffset = "easter_offset"
	KindRRule        = "rrule"
)

// CalendarDef describes a user-defined calendar.
type CalendarDef struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`

	// Weekend lists weekday names; empty means Saturday and Sunday.
	Weekend []string `yaml:"weekend,omitempty" json:"weekend,omitempty"`

	// Roll is none, backward, forward or nearest.
	Roll string `yaml:"roll,omitempty" json:"roll,omitempty"`

	Holidays []HolidayDef `yaml:"holidays" json:"holidays"`

	// ICS is an http(s) URL or file path of an iCalendar feed. Each
	// distinct event summary becomes a holiday observed on the listed
	// dates only.
	ICS string `yaml:"ics,omitempty" json:"ics,omitempty"`

	// Include names calendars (built-in or defined earlier in the file)
	// whose holidays are added after this calendar's own. Own definitions
	// win on a name clash.
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`
}

// HolidayDef describes one holiday rule, for example
//
//	name: Labor Day
//	kind: nth_weekday
//	month: 9
//	weekday: monday
//	n: 1
//	since: 1894
type HolidayDef struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Kind        string `yaml:"kind" json:"kind"`

	Month   int    `yaml:"month,omitempty" json:"month,omitempty"`
	Day     int    `yaml:"day,omitempty" json:"day,omitempty"`
	Weekday string `yaml:"weekday,omitempty" json:"weekday,omitempty"`
	N       int    `yaml:"n,omitempty" json:"n,omitempty"`
	Offset  int    `yaml:"offset,omitempty" json:"offset,omitempty"`
	RRule   string `yaml:"rrule,omitempty" json:"rrule,omitempty"`

	// Since and Until bound the years the holiday is observed (inclusive).
	Since int `yaml:"since,omitempty" json:"since,omitempty"`
	Until int `yaml:"until,omitempty" json:"until,omitempty"`
}

// Registry returns the built-in calendars plus every calendar defined in
// c, in file order. ICS feeds are fetched through a cache in c.CacheDir.
func (c *Config) Registry(ctx context.Context) (*registry.Registry, error) {
	reg := registry.Builtin()
	fetcher := ics.NewFetcher(c.CacheDir)
	for i, def := range c.Calendars {
		cal, err := def.Build(ctx, reg, fetcher)
		if err != nil {
			return nil, fmt.Errorf("config: calendars[%d]: %w", i, err)
		}
		if err := reg.Add(cal); err != nil {
			return nil, fmt.Errorf("config: calendars[%d]: %w", i, err)
		}
		appLog.Debug("calendar defined", "code", cal.Code(), "holidays", cal.Holidays().Len())
	}
	return reg, nil
}

// Build turns the definition into a calendar. Included codes are looked
// up in reg; the ICS feed, if any, is loaded with f.
func (d CalendarDef) Build(ctx context.Context, reg *registry.Registry, f *ics.Fetcher) (*holiday.Calendar, error) {
	days := make([]time.Weekday, 0, len(d.Weekend))
	for _, s := range d.Weekend {
		wd, err := holiday.ParseWeekday(s)
		if err != nil {
			return nil, fmt.Errorf("calendar %q: %w", d.Code, err)
		}
		days = append(days, wd)
	}

	roll, err := holiday.RollByName(d.Roll)
	if err != nil {
		return nil, fmt.Errorf("calendar %q: %w", d.Code, err)
	}

	hs := make([]*holiday.Holiday, 0, len(d.Holidays))
	for _, hd := range d.Holidays {
		h, err := hd.Holiday()
		if err != nil {
			return nil, fmt.Errorf("calendar %q: %w", d.Code, err)
		}
		hs = append(hs, h)
	}
	if d.ICS != "" {
		if f == nil {
			f = ics.NewFetcher("")
		}
		feed, err := f.Holidays(ctx, ics.Source{ID: d.Code, Location: d.ICS})
		if err != nil {
			return nil, fmt.Errorf("calendar %q: %w", d.Code, err)
		}
		hs = append(hs, feed...)
	}
	for _, code := range d.Include {
		inc, ok := reg.Lookup(code)
		if !ok {
			return nil, fmt.Errorf("calendar %q: include %q: %w", d.Code, code, registry.ErrUnknownCalendar)
		}
		hs = append(hs, inc.Holidays().All()...)
	}

	return holiday.NewBuilder().
		Code(d.Code).
		Name(d.Name).
		Holiday(hs...).
		WeekendDays(days...).
		DateRoll(roll).
		Build()
}

// Holiday builds the holiday described by d.
func (d HolidayDef) Holiday() (*holiday.Holiday, error) {
	kind := strings.ToLower(strings.TrimSpace(d.Kind))
	if kind == KindFixed && d.Since == 0 && d.Until == 0 {
		h, err := holiday.NewFixed(d.Name, d.Description, time.Month(d.Month), d.Day)
		if err != nil {
			return nil, fmt.Errorf("holiday %q: %w", d.Name, err)
		}
		return h, nil
	}

	obs, err := d.Observance()
	if err != nil {
		return nil, err
	}
	h, err := holiday.NewFloating(d.Name, d.Description, obs)
	if err != nil {
		return nil, fmt.Errorf("holiday %q: %w", d.Name, err)
	}
	return h, nil
}

// Observance builds the rule of d, wrapped in a year range when Since or
// Until is set.
func (d HolidayDef) Observance() (holiday.Observance, error) {
	obs, err := d.baseObservance()
	if err != nil {
		return nil, fmt.Errorf("holiday %q: %w", d.Name, err)
	}
	if d.Since > 0 || d.Until > 0 {
		if d.Until > 0 && d.Since > d.Until {
			return nil, fmt.Errorf("holiday %q: since %d is after until %d", d.Name, d.Since, d.Until)
		}
		return holiday.Between(d.Since, d.Until, obs), nil
	}
	return obs, nil
}

func (d HolidayDef) baseObservance() (holiday.Observance, error) {
	month := time.Month(d.Month)
	needMonth := func() error {
		if month < time.January || month > time.December {
			return fmt.Errorf("month %d out of range", d.Month)
		}
		return nil
	}

	switch kind := strings.ToLower(strings.TrimSpace(d.Kind)); kind {
	case KindFixed:
		if err := needMonth(); err != nil {
			return nil, err
		}
		// Feb 29 is allowed here; it resolves in leap years only.
		if d.Day < 1 || holiday.Date(2000, month, d.Day).Month() != month {
			return nil, fmt.Errorf("%s %d does not exist", month, d.Day)
		}
		return holiday.FixedDate{Month: month, Day: d.Day}, nil

	case KindNthWeekday, KindLastWeekday:
		if err := needMonth(); err != nil {
			return nil, err
		}
		wd, err := holiday.ParseWeekday(d.Weekday)
		if err != nil {
			return nil, err
		}
		n := d.N
		if kind == KindLastWeekday {
			n = holiday.Last
		}
		if n != holiday.Last && (n < 1 || n > 5) {
			return nil, fmt.Errorf("ordinal %d out of range", d.N)
		}
		return holiday.NthWeekday{Month: month, Weekday: wd, N: n}, nil

	case KindEasterOffset:
		return holiday.EasterOffset(d.Offset), nil

	case KindRRule:
		r, err := holiday.ParseRRule(d.RRule)
		if err != nil {
			return nil, err
		}
		return r, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, d.Kind)
	}
}
