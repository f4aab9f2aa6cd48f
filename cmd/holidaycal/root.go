package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"holidaycal/internal/config"
	appLog "holidaycal/internal/log"
	"holidaycal/internal/registry"
)

// app carries what every subcommand needs once flags and config are read.
type app struct {
	v   *viper.Viper
	out io.Writer
	cfg *config.Config
	reg *registry.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "holidaycal",
		Short: "Holiday calendars for markets and offices",
		Long: `holidaycal computes the holidays of built-in and user-defined calendars,
answers weekend and business day questions, serves them over HTTP and
publishes them as iCalendar and JSON files.

Every persistent flag can also be set through a HOLIDAYCAL_* environment
variable, e.g. HOLIDAYCAL_LOG_LEVEL=debug.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "holidaycal.yaml", "Path to config file (created with defaults if missing)")
	pf.String("env-file", ".env", "Optional dotenv file loaded before reading HOLIDAYCAL_* variables")
	pf.String("log-level", "", "Log level: debug, info, error (overrides config)")
	pf.String("timezone", "", "IANA timezone deciding the current year (overrides config)")
	pf.String("listen", "", "HTTP listen address (overrides config)")
	pf.String("output-dir", "", "Directory for published files (overrides config)")
	_ = a.v.BindPFlags(pf)

	a.v.SetEnvPrefix("HOLIDAYCAL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		a.newCalcCmd(),
		a.newCheckCmd(),
		a.newCalendarsCmd(),
		a.newServeCmd(),
		a.newPublishCmd(),
	)
	return root
}

// setup loads the env file and the config, applies overrides and builds
// the calendar registry.
func (a *app) setup(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()

	if envFile := a.v.GetString("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %q: %w", envFile, err)
		}
	}

	cfgPath := a.v.GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config %q: %w", cfgPath, err)
	}

	overrides := map[string]*string{
		"log-level":  &cfg.LogLevel,
		"timezone":   &cfg.Timezone,
		"listen":     &cfg.Listen,
		"output-dir": &cfg.OutputDir,
	}
	for key, dst := range overrides {
		if v := a.v.GetString(key); v != "" {
			*dst = v
		}
	}
	cfg.Normalize()
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}

	reg, err := cfg.Registry(cmd.Context())
	if err != nil {
		return err
	}

	appLog.Debug("effective config",
		"config", cfgPath,
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"output_dir", cfg.OutputDir,
		"years", cfg.Years,
		"calendars", len(reg.Codes()),
	)
	a.cfg = cfg
	a.reg = reg
	return nil
}

// currentYear is the year of now in the configured timezone.
func (a *app) currentYear(now time.Time) int {
	loc, err := time.LoadLocation(a.cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return now.In(loc).Year()
}
