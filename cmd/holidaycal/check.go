package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"holidaycal/internal/holiday"
	"holidaycal/internal/registry"
)

func (a *app) newCheckCmd() *cobra.Command {
	var calendar string

	cmd := &cobra.Command{
		Use:   "check <DATE|RFC3339>",
		Short: "Tell whether a day is a holiday, a weekend or a business day",
		Long: `Classify a day in a calendar. A plain date (2006-01-02) is taken as is;
an RFC 3339 timestamp is converted to its UTC calendar day first.`,
		Example: `  holidaycal check 2021-12-31 --calendar SIFMA
  holidaycal check 2021-12-17T20:00:00-05:00 --calendar SIFMA,FRB`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(args[0], calendar)
		},
	}
	cmd.Flags().StringVarP(&calendar, "calendar", "c", "", "Calendar code or comma list (merged)")
	_ = cmd.MarkFlagRequired("calendar")
	return cmd
}

func (a *app) runCheck(arg, calendar string) error {
	day, err := parseDay(arg)
	if err != nil {
		return err
	}
	c, err := a.reg.Resolve(registry.SplitCodes(calendar)...)
	if err != nil {
		return err
	}

	var status string
	switch names := holidaysOn(c, day); {
	case len(names) > 0:
		status = color.RedString("holiday") + " (" + strings.Join(names, ", ") + ")"
	case c.IsWeekendUTC(day):
		status = color.YellowString("weekend")
	default:
		status = color.GreenString("business day")
	}
	_, err = fmt.Fprintf(a.out, "%s %s %s: %s\n", day.Format(time.DateOnly), day.Weekday(), c.Code(), status)
	return err
}

// parseDay accepts a date or an RFC 3339 time and returns the UTC day.
func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want 2006-01-02 or RFC 3339", s)
	}
	u := t.UTC()
	return holiday.Date(u.Year(), u.Month(), u.Day()), nil
}

// holidaysOn returns the names of the holidays falling on day. Adjacent
// years are included because rolling can cross a year boundary.
func holidaysOn(c *holiday.Calendar, day time.Time) []string {
	var names []string
	for y := day.Year() - 1; y <= day.Year()+1; y++ {
		if y < 1 {
			continue
		}
		for _, hd := range c.Calculate(y) {
			if hd.Date().Equal(day) {
				names = append(names, hd.Name())
			}
		}
	}
	return names
}
