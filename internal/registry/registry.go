// Package registry indexes holiday calendars by code, seeded with the
// calendars shipped in internal/holiday/us and internal/holiday/eur.
//
// A Registry is filled once at startup and only read afterwards; Add must
// not be called concurrently with lookups.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"holidaycal/internal/holiday"
	"holidaycal/internal/holiday/eur"
	"holidaycal/internal/holiday/us"
)

// ErrUnknownCalendar is returned for codes that are not registered.
var ErrUnknownCalendar = errors.New("unknown calendar")

// Registry maps upper-cased calendar codes to calendars.
type Registry struct {
	byCode map[string]*holiday.Calendar
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byCode: make(map[string]*holiday.Calendar)}
}

// Builtin returns a registry holding SIFMA, FRB, NYSE, TARGET and UK.
func Builtin() *Registry {
	r := New()
	for _, c := range []*holiday.Calendar{us.SIFMA, us.FRB, us.NYSE, eur.TARGET, eur.UK} {
		r.byCode[key(c.Code())] = c
	}
	return r
}

// Add registers c. Codes are unique regardless of case.
func (r *Registry) Add(c *holiday.Calendar) error {
	if c == nil {
		return errors.New("registry: nil calendar")
	}
	k := key(c.Code())
	if _, dup := r.byCode[k]; dup {
		return fmt.Errorf("registry: calendar %q already registered", c.Code())
	}
	r.byCode[k] = c
	return nil
}

// Lookup returns the calendar registered under code, ignoring case.
func (r *Registry) Lookup(code string) (*holiday.Calendar, bool) {
	c, ok := r.byCode[key(code)]
	return c, ok
}

// Codes returns the registered codes, sorted.
func (r *Registry) Codes() []string {
	out := make([]string, 0, len(r.byCode))
	for _, c := range r.byCode {
		out = append(out, c.Code())
	}
	sort.Strings(out)
	return out
}

// Calendars returns the registered calendars ordered by code.
func (r *Registry) Calendars() []*holiday.Calendar {
	codes := r.Codes()
	out := make([]*holiday.Calendar, len(codes))
	for i, code := range codes {
		out[i] = r.byCode[key(code)]
	}
	return out
}

// Resolve looks up every code and merges the calendars left to right, so
// the first code's weekend, roll policy and holiday definitions win.
func (r *Registry) Resolve(codes ...string) (*holiday.Calendar, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("registry: no calendar requested: %w", ErrUnknownCalendar)
	}
	cals := make([]*holiday.Calendar, 0, len(codes))
	for _, code := range codes {
		c, ok := r.Lookup(code)
		if !ok {
			return nil, fmt.Errorf("registry: %q: %w", code, ErrUnknownCalendar)
		}
		cals = append(cals, c)
	}
	return holiday.MergeAll(cals...), nil
}

// SplitCodes splits a comma separated list such as "SIFMA, FRB", dropping
// empty entries.
func SplitCodes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func key(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
