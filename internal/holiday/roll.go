package holiday

import (
	"fmt"
	"strings"
	"time"
)

// DateRoll moves a holiday that lands on a weekend day to a business day.
// Apply must be idempotent on dates outside the weekend set.
type DateRoll interface {
	Apply(date time.Time, weekend WeekdaySet) time.Time
	Name() string
}

// Predefined roll policies. They are comparable values.
var (
	NoRoll       DateRoll = noRoll{}
	RollBackward DateRoll = stepRoll{name: "backward", step: -1}
	RollForward  DateRoll = stepRoll{name: "forward", step: 1}
	// RollNearest moves to the closest business day, preferring the earlier
	// one on a tie: Saturday to Friday and Sunday to Monday for a standard
	// weekend, as US federal holidays are observed.
	RollNearest DateRoll = nearestRoll{}
)

type noRoll struct{}

func (noRoll) Apply(date time.Time, _ WeekdaySet) time.Time { return date }
func (noRoll) Name() string                                 { return "none" }

type stepRoll struct {
	name string
	step int
}

func (r stepRoll) Apply(date time.Time, weekend WeekdaySet) time.Time {
	// Bounded so a universal weekend set cannot loop.
	d := date
	for i := 0; i < 7 && weekend.Contains(d.Weekday()); i++ {
		d = d.AddDate(0, 0, r.step)
	}
	if weekend.Contains(d.Weekday()) {
		return date
	}
	return d
}

func (r stepRoll) Name() string { return r.name }

type nearestRoll struct{}

func (nearestRoll) Apply(date time.Time, weekend WeekdaySet) time.Time {
	if !weekend.Contains(date.Weekday()) {
		return date
	}
	for k := 1; k < 7; k++ {
		if d := date.AddDate(0, 0, -k); !weekend.Contains(d.Weekday()) {
			return d
		}
		if d := date.AddDate(0, 0, k); !weekend.Contains(d.Weekday()) {
			return d
		}
	}
	return date
}

func (nearestRoll) Name() string { return "nearest" }

// RollFunc builds a custom DateRoll. Two RollFuncs are only equal if they
// are the same pointer.
func RollFunc(name string, fn func(date time.Time, weekend WeekdaySet) time.Time) DateRoll {
	return &funcRoll{name: name, fn: fn}
}

type funcRoll struct {
	name string
	fn   func(time.Time, WeekdaySet) time.Time
}

func (r *funcRoll) Apply(date time.Time, weekend WeekdaySet) time.Time { return r.fn(date, weekend) }
func (r *funcRoll) Name() string                                       { return r.name }

// RollByName returns the predefined policy called name ("none", "backward",
// "forward" or "nearest"). The empty string means "none".
func RollByName(name string) (DateRoll, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return NoRoll, nil
	case "backward":
		return RollBackward, nil
	case "forward":
		return RollForward, nil
	case "nearest":
		return RollNearest, nil
	default:
		return nil, fmt.Errorf("holiday: unknown date roll %q", name)
	}
}
