package model

import (
	"time"

	"holidaycal/internal/holiday"
)

// Occurrence is a flattened, serializable view of one holiday.HolidayDate.
// The HTTP API, the publisher and the CLI (JSON and CSV) all emit this shape.
type Occurrence struct {
	// Calendar is the code of the calendar that produced the date; for a
	// merged calendar this is the joined code, e.g. "SIFMA/FRB".
	Calendar string `json:"calendar" csv:"calendar"`

	Name        string `json:"name" csv:"name"`
	Description string `json:"description,omitempty" csv:"description"`
	Kind        string `json:"kind" csv:"kind"`

	// Date is the rolled date as YYYY-MM-DD.
	Date    string `json:"date" csv:"date"`
	Weekday string `json:"weekday" csv:"weekday"`
}

// CalendarYear is every occurrence of one calendar in one year.
type CalendarYear struct {
	Calendar    string       `json:"calendar"`
	Name        string       `json:"name"`
	Year        int          `json:"year"`
	WeekendDays []string     `json:"weekend_days"`
	DateRoll    string       `json:"date_roll"`
	Holidays    []Occurrence `json:"holidays"`
}

// CalendarInfo summarizes a calendar for listings.
type CalendarInfo struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	WeekendDays []string `json:"weekend_days"`
	DateRoll    string   `json:"date_roll"`
	Holidays    []string `json:"holidays"`
}

// NewOccurrence converts hd, produced by calendar code.
func NewOccurrence(code string, hd holiday.HolidayDate) Occurrence {
	return Occurrence{
		Calendar:    code,
		Name:        hd.Name(),
		Description: hd.Description(),
		Kind:        hd.Holiday().Kind().String(),
		Date:        hd.Date().Format(time.DateOnly),
		Weekday:     hd.Date().Weekday().String(),
	}
}

// NewCalendarYear calculates c for year.
func NewCalendarYear(c *holiday.Calendar, year int) CalendarYear {
	dates := c.Calculate(year)
	occ := make([]Occurrence, 0, len(dates))
	for _, hd := range dates {
		occ = append(occ, NewOccurrence(c.Code(), hd))
	}
	return CalendarYear{
		Calendar:    c.Code(),
		Name:        c.Name(),
		Year:        year,
		WeekendDays: weekdayNames(c.WeekendDays()),
		DateRoll:    c.DateRoll().Name(),
		Holidays:    occ,
	}
}

// NewCalendarInfo summarizes c.
func NewCalendarInfo(c *holiday.Calendar) CalendarInfo {
	return CalendarInfo{
		Code:        c.Code(),
		Name:        c.Name(),
		WeekendDays: weekdayNames(c.WeekendDays()),
		DateRoll:    c.DateRoll().Name(),
		Holidays:    c.Holidays().Names(),
	}
}

func weekdayNames(s holiday.WeekdaySet) []string {
	days := s.Days()
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()
	}
	return out
}
