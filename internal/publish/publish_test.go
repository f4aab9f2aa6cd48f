package publish

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holidaycal/internal/config"
	"holidaycal/internal/ics"
	"holidaycal/internal/registry"
)

func newPublisher(t *testing.T, publish ...string) (*Publisher, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.OutputDir = dir
	cfg.Timezone = "America/New_York"
	cfg.Years = 2
	cfg.Publish = publish

	p, err := New(cfg, registry.Builtin())
	require.NoError(t, err)
	// 2021-12-31 22:00 in New York is already 2022 in UTC.
	p.now = func() time.Time { return time.Date(2022, time.January, 1, 3, 0, 0, 0, time.UTC) }
	return p, dir
}

func TestYears_UseConfiguredZone(t *testing.T) {
	p, _ := newPublisher(t, "SIFMA")
	assert.Equal(t, []int{2021, 2022}, p.Years())
}

func TestRunOnce(t *testing.T) {
	p, dir := newPublisher(t, "SIFMA", "sifma,frb")

	written, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "SIFMA.ics"),
		filepath.Join(dir, "SIFMA.json"),
		filepath.Join(dir, "SIFMA+FRB.ics"),
		filepath.Join(dir, "SIFMA+FRB.json"),
	}, written)

	data, err := os.ReadFile(filepath.Join(dir, "SIFMA.json"))
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "SIFMA", doc.Calendar.Code)
	require.Len(t, doc.Years, 2)
	assert.Equal(t, 2021, doc.Years[0].Year)
	assert.Equal(t, "2021-01-01", doc.Years[0].Holidays[0].Date)
	// New Year's Day 2022 falls on Saturday and rolls to Friday.
	assert.Equal(t, "2021-12-31", doc.Years[1].Holidays[0].Date)

	f, err := os.Open(filepath.Join(dir, "SIFMA+FRB.ics"))
	require.NoError(t, err)
	defer f.Close()
	entries, err := ics.ParseDates(f)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)

	info, err := os.Stat(filepath.Join(dir, "SIFMA.ics"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestRunOnce_AllCalendars(t *testing.T) {
	p, dir := newPublisher(t)

	written, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, written, 2*len(registry.Builtin().Codes()))
	assert.FileExists(t, filepath.Join(dir, "TARGET.ics"))
}

func TestRunOnce_Cancelled(t *testing.T) {
	p, _ := newPublisher(t, "SIFMA")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	written, err := p.RunOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, written)
}

func TestNew_Errors(t *testing.T) {
	reg := registry.Builtin()

	cfg := config.DefaultConfig()
	cfg.Publish = []string{"SIFMA,MARS"}
	_, err := New(cfg, reg)
	assert.ErrorIs(t, err, registry.ErrUnknownCalendar)

	cfg = config.DefaultConfig()
	cfg.Timezone = "Mars/Olympus_Mons"
	_, err = New(cfg, reg)
	assert.Error(t, err)

	_, err = New(nil, reg)
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	p, dir := newPublisher(t, "FRB")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "FRB.json"))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRun_BadSchedule(t *testing.T) {
	p, _ := newPublisher(t, "FRB")
	p.refresh = "every tuesday"
	assert.Error(t, p.Run(context.Background()))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "SIFMA", FileName("SIFMA"))
	assert.Equal(t, "SIFMA+FRB+UK", FileName("SIFMA/FRB/UK"))
}
