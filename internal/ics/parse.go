package ics

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"holidaycal/internal/holiday"
	appLog "holidaycal/internal/log"
)

// Entry is one VEVENT reduced to what a holiday needs: its name and the
// civil date it starts on.
type Entry struct {
	UID         string
	Name        string
	Description string
	Date        time.Time
}

// ParseDates reads an iCalendar stream and returns one Entry per VEVENT
// that has a summary and a readable DTSTART. Events without either are
// logged and skipped. The result is ordered by date, then name.
func ParseDates(r io.Reader) ([]Entry, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("ics: parse: %w", err)
	}

	entries := make([]Entry, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		e, perr := parseVEvent(ve)
		if perr != nil {
			appLog.Error("ics vevent skipped", perr, "uid", e.UID)
			continue
		}
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	appLog.Debug("ics parse completed", "event_count", len(entries))
	return entries, nil
}

func parseVEvent(ve *ical.VEvent) (Entry, error) {
	var out Entry
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Name = strings.TrimSpace(p.Value)
	}
	if out.Name == "" {
		return out, errors.New("missing SUMMARY")
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}

	start := ve.GetProperty(ical.ComponentPropertyDtStart)
	if start == nil {
		return out, errors.New("missing DTSTART")
	}
	d, err := startDate(start)
	if err != nil {
		return out, err
	}
	out.Date = d
	return out, nil
}

// startDate returns the civil date of a DTSTART property. Timed values
// carrying a TZID are read in that zone; floating times are read as UTC
// so a holiday never shifts with the host's zone.
func startDate(p *ical.IANAProperty) (time.Time, error) {
	loc := time.UTC
	if tz, ok := p.ICalParameters["TZID"]; ok && len(tz) > 0 {
		l, err := time.LoadLocation(tz[0])
		if err != nil {
			return time.Time{}, fmt.Errorf("DTSTART TZID %q: %w", tz[0], err)
		}
		loc = l
	}
	t, err := parseICSTime(p.Value, loc)
	if err != nil {
		return time.Time{}, err
	}
	return holiday.Date(t.Year(), t.Month(), t.Day()), nil
}

// parseICSTime parses a DATE or DATE-TIME value. UTC values keep their
// UTC wall clock; the rest are interpreted in loc.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	// UTC form, e.g., 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}

	// Local date-time, e.g., 20250101T090000
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}

	// Date-only (all-day), e.g., 20250101
	return time.ParseInLocation("20060102", v, loc)
}

// Holidays groups entries by name into holidays observed only on the
// listed dates. Order follows the first appearance of each name.
func Holidays(entries []Entry) ([]*holiday.Holiday, error) {
	order := make([]string, 0)
	dates := make(map[string][]time.Time)
	desc := make(map[string]string)
	for _, e := range entries {
		if _, seen := dates[e.Name]; !seen {
			order = append(order, e.Name)
			desc[e.Name] = e.Description
		}
		dates[e.Name] = append(dates[e.Name], e.Date)
	}

	out := make([]*holiday.Holiday, 0, len(order))
	for _, name := range order {
		h, err := holiday.NewFloating(name, desc[name], holiday.OnDates(dates[name]...))
		if err != nil {
			return nil, fmt.Errorf("ics: holiday %q: %w", name, err)
		}
		out = append(out, h)
	}
	return out, nil
}
