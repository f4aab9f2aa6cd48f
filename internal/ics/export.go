package ics

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"holidaycal/internal/holiday"
)

const productID = "-//holidaycal//holidaycal//EN"

// ExportOptions controls calendar export.
type ExportOptions struct {
	// Stamp is written as DTSTAMP on every event. Zero means now.
	Stamp time.Time
}

// Build returns an iCalendar document with one all-day VEVENT per
// holiday date of c in each of years. Event UIDs depend only on the
// calendar code, the holiday name and the date, so republishing keeps
// them stable.
func Build(c *holiday.Calendar, years []int, opts ExportOptions) *ical.Calendar {
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	stamp = stamp.UTC()

	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName(c.Name())

	for _, year := range years {
		for _, hd := range c.Calculate(year) {
			ev := cal.AddEvent(eventUID(c.Code(), hd))
			ev.SetDtStampTime(stamp)
			ev.SetSummary(hd.Name())
			if hd.Description() != "" {
				ev.SetDescription(hd.Description())
			}
			ev.SetAllDayStartAt(hd.Date())
			ev.SetAllDayEndAt(hd.Date().AddDate(0, 0, 1))
			ev.SetProperty(ical.ComponentPropertyCategories, c.Code())
		}
	}
	return cal
}

// Write serializes Build(c, years, opts) to w.
func Write(w io.Writer, c *holiday.Calendar, years []int, opts ExportOptions) error {
	if _, err := io.WriteString(w, Build(c, years, opts).Serialize()); err != nil {
		return fmt.Errorf("ics: write %s: %w", c.Code(), err)
	}
	return nil
}

// uidNamespace scopes event UIDs; changing it changes every published UID.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://holidaycal/events"))

// eventUID is a name-based UUID over calendar code, holiday name and date.
func eventUID(code string, hd holiday.HolidayDate) string {
	key := code + "|" + hd.Name() + "|" + hd.Date().Format("2006-01-02")
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@holidaycal"
}
