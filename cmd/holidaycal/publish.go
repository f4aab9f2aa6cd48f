package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"holidaycal/internal/publish"
)

func (a *app) newPublishCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write <code>.ics and <code>.json files for the configured calendars",
		Long: `Publish the calendars listed under "publish" in the config (all calendars
when empty) for the configured number of years, starting with the current
year. Without --once the files are rewritten on the "refresh" cron schedule
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := publish.New(a.cfg, a.reg)
			if err != nil {
				return err
			}
			if !once {
				return p.Run(cmd.Context())
			}

			written, err := p.RunOnce(cmd.Context())
			for _, path := range written {
				fmt.Fprintln(a.out, path)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Publish once and exit")
	return cmd
}
