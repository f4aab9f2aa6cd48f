package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"holidaycal/internal/holiday"
	"holidaycal/internal/ics"
	"holidaycal/internal/model"
	"holidaycal/internal/registry"
)

type calcOptions struct {
	year      int
	years     int
	format    string
	merge     bool
	joinNames bool
	filter    string
}

func (a *app) newCalcCmd() *cobra.Command {
	var opts calcOptions

	cmd := &cobra.Command{
		Use:   "calc <CODE>...",
		Short: "Print the holidays of one or more calendars",
		Long: `Print the holiday dates of each calendar, after weekend rolling.

Codes may be given as separate arguments or as a comma list. With --merge
all codes are merged left to right into a single calendar: the first
calendar's weekend and roll policy apply and a holiday name present in
several calendars is kept once.

--filter takes a boolean expression over name, description, kind,
calendar, date, weekday, year, month and day, for example
  --filter 'weekday == "Monday" && kind == "floating"'`,
		Example: `  holidaycal calc SIFMA --year 2024
  holidaycal calc TARGET,UK --merge --format ics > europe.ics
  holidaycal calc FRB --years 3 --format csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCalc(args, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.year, "year", 0, "First year (default: current year in the configured timezone)")
	f.IntVar(&opts.years, "years", 1, "Number of consecutive years")
	f.StringVar(&opts.format, "format", "table", "Output format: table, json, csv, ics")
	f.BoolVar(&opts.merge, "merge", false, "Merge all calendars into one")
	f.BoolVar(&opts.joinNames, "join-names", false, "With --merge, join calendar names instead of keeping the first")
	f.StringVar(&opts.filter, "filter", "", "Boolean expression selecting holidays")
	return cmd
}

func (a *app) runCalc(args []string, opts calcOptions) error {
	if opts.years < 1 {
		return errors.New("--years must be at least 1")
	}
	if opts.joinNames && !opts.merge {
		return errors.New("--join-names requires --merge")
	}

	cals, err := a.calendars(args, opts.merge, opts.joinNames)
	if err != nil {
		return err
	}

	first := opts.year
	if first == 0 {
		first = a.currentYear(time.Now())
	}
	if first < 1 {
		return fmt.Errorf("invalid year %d", first)
	}
	years := make([]int, opts.years)
	for i := range years {
		years[i] = first + i
	}

	if opts.format == "ics" {
		if len(cals) != 1 {
			return errors.New("ics output needs exactly one calendar; use --merge")
		}
		if opts.filter != "" {
			return errors.New("--filter is not supported with ics output")
		}
		return ics.Write(a.out, cals[0], years, ics.ExportOptions{})
	}

	filter, err := compileFilter(opts.filter)
	if err != nil {
		return err
	}
	results := make([]model.CalendarYear, 0, len(cals)*len(years))
	for _, c := range cals {
		for _, y := range years {
			cy := model.NewCalendarYear(c, y)
			if cy.Holidays, err = filter.apply(cy.Holidays); err != nil {
				return err
			}
			results = append(results, cy)
		}
	}

	switch opts.format {
	case "table":
		return writeTable(a.out, results)
	case "json":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "csv":
		rows := make([]model.Occurrence, 0)
		for _, cy := range results {
			rows = append(rows, cy.Holidays...)
		}
		return gocsv.Marshal(&rows, a.out)
	default:
		return fmt.Errorf("unknown format %q (want table, json, csv or ics)", opts.format)
	}
}

// calendars resolves the code arguments, merging them when merge is set.
func (a *app) calendars(args []string, merge, joinNames bool) ([]*holiday.Calendar, error) {
	var codes []string
	for _, arg := range args {
		codes = append(codes, registry.SplitCodes(arg)...)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no calendar given: %w", registry.ErrUnknownCalendar)
	}

	cals := make([]*holiday.Calendar, 0, len(codes))
	for _, code := range codes {
		c, err := a.reg.Resolve(code)
		if err != nil {
			return nil, err
		}
		cals = append(cals, c)
	}
	if !merge {
		return cals, nil
	}

	policy := holiday.KeepLeftName
	if joinNames {
		policy = holiday.JoinNames
	}
	merged := cals[0]
	for _, c := range cals[1:] {
		merged = merged.MergeWith(c, policy)
	}
	return []*holiday.Calendar{merged}, nil
}

func writeTable(w io.Writer, results []model.CalendarYear) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, cy := range results {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s %d: %s\n", cy.Calendar, cy.Year, cy.Name)
		fmt.Fprintln(tw, "DATE\tWEEKDAY\tKIND\tNAME")
		for _, o := range cy.Holidays {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.Date, o.Weekday[:3], o.Kind, o.Name)
		}
		if len(cy.Holidays) == 0 {
			fmt.Fprintln(tw, "(none)")
		}
	}
	return tw.Flush()
}
