// Package publish writes holiday calendars to disk as iCalendar and JSON
// files, once or on a cron schedule.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"holidaycal/internal/config"
	"holidaycal/internal/holiday"
	"holidaycal/internal/ics"
	appLog "holidaycal/internal/log"
	"holidaycal/internal/model"
	"holidaycal/internal/registry"
)

// Document is the JSON file written next to each .ics file.
type Document struct {
	Calendar    model.CalendarInfo   `json:"calendar"`
	GeneratedAt time.Time            `json:"generated_at"`
	Years       []model.CalendarYear `json:"years"`
}

// Publisher renders the configured calendars into OutputDir.
type Publisher struct {
	reg     *registry.Registry
	dir     string
	years   int
	loc     *time.Location
	refresh string
	targets []string

	// now is replaced in tests.
	now func() time.Time
}

// New builds a Publisher from cfg. Calendar codes in cfg.Publish are
// resolved against reg up front so a typo fails at startup.
func New(cfg *config.Config, reg *registry.Registry) (*Publisher, error) {
	if cfg == nil || reg == nil {
		return nil, errors.New("publish: config and registry are required")
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("publish: timezone %q: %w", cfg.Timezone, err)
	}

	targets := cfg.Publish
	if len(targets) == 0 {
		targets = reg.Codes()
	}
	for _, t := range targets {
		if _, err := reg.Resolve(registry.SplitCodes(t)...); err != nil {
			return nil, fmt.Errorf("publish: %w", err)
		}
	}

	years := cfg.Years
	if years <= 0 {
		years = 1
	}
	return &Publisher{
		reg:     reg,
		dir:     cfg.OutputDir,
		years:   years,
		loc:     loc,
		refresh: cfg.Refresh,
		targets: targets,
		now:     time.Now,
	}, nil
}

// Years returns the published years, starting with the current year in
// the configured timezone.
func (p *Publisher) Years() []int {
	first := p.now().In(p.loc).Year()
	out := make([]int, p.years)
	for i := range out {
		out[i] = first + i
	}
	return out
}

// RunOnce writes every target and returns the written paths. A failing
// target is logged and skipped; the joined errors are returned.
func (p *Publisher) RunOnce(ctx context.Context) ([]string, error) {
	years := p.Years()
	written := make([]string, 0, 2*len(p.targets))
	var errs []error

	for _, target := range p.targets {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		paths, err := p.publishTarget(target, years)
		if err != nil {
			appLog.Error("publish failed", err, "target", target)
			errs = append(errs, err)
			continue
		}
		written = append(written, paths...)
	}

	appLog.Info("publish completed", "targets", len(p.targets), "files", len(written), "first_year", years[0], "years", len(years))
	return written, errors.Join(errs...)
}

func (p *Publisher) publishTarget(target string, years []int) ([]string, error) {
	c, err := p.reg.Resolve(registry.SplitCodes(target)...)
	if err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	now := p.now()
	base := filepath.Join(p.dir, FileName(c.Code()))

	var buf bytes.Buffer
	if err := ics.Write(&buf, c, years, ics.ExportOptions{Stamp: now}); err != nil {
		return nil, err
	}
	if err := config.WriteFileAtomic(base+".ics", buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("publish: %s: %w", c.Code(), err)
	}

	data, err := json.MarshalIndent(newDocument(c, years, now), "", "  ")
	if err != nil {
		return nil, err
	}
	if err := config.WriteFileAtomic(base+".json", data, 0o644); err != nil {
		return nil, fmt.Errorf("publish: %s: %w", c.Code(), err)
	}

	appLog.Debug("calendar published", "calendar", c.Code(), "path", base)
	return []string{base + ".ics", base + ".json"}, nil
}

func newDocument(c *holiday.Calendar, years []int, now time.Time) Document {
	doc := Document{
		Calendar:    model.NewCalendarInfo(c),
		GeneratedAt: now.UTC().Truncate(time.Second),
		Years:       make([]model.CalendarYear, 0, len(years)),
	}
	for _, y := range years {
		doc.Years = append(doc.Years, model.NewCalendarYear(c, y))
	}
	return doc
}

// FileName maps a calendar code to a file base name. Merged codes such
// as "SIFMA/FRB" become "SIFMA+FRB".
func FileName(code string) string {
	return strings.ReplaceAll(code, "/", "+")
}

// Run publishes immediately and then on the configured cron schedule
// until ctx is cancelled. Overlapping runs are skipped.
func (p *Publisher) Run(ctx context.Context) error {
	if _, err := cron.ParseStandard(p.refresh); err != nil {
		return fmt.Errorf("publish: refresh %q: %w", p.refresh, err)
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(p.loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(p.refresh, func() {
		_, _ = p.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("publish: schedule: %w", err)
	}

	_, _ = p.RunOnce(ctx)

	appLog.Info("publish scheduler started", "refresh", p.refresh, "timezone", p.loc.String())
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	appLog.Info("publish scheduler stopped")
	return nil
}

// cronLogger routes cron's own messages to the application log.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}
