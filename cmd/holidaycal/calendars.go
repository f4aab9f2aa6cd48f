package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"holidaycal/internal/model"
)

func (a *app) newCalendarsCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "List built-in and configured calendars",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tWEEKEND\tROLL\tHOLIDAYS")
			for _, c := range a.reg.Calendars() {
				info := model.NewCalendarInfo(c)
				count := fmt.Sprint(len(info.Holidays))
				if verbose {
					count = strings.Join(info.Holidays, ", ")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					info.Code, info.Name, strings.Join(info.WeekendDays, ","), info.DateRoll, count)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List holiday names instead of counts")
	return cmd
}
