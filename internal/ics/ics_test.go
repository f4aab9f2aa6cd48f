package ics

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holidaycal/internal/holiday"
	"holidaycal/internal/holiday/us"
)

var stamp = time.Date(2023, time.January, 1, 12, 0, 0, 0, time.UTC)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, us.SIFMA, []int{2023}, ExportOptions{Stamp: stamp}))
	out := buf.String()

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "PRODID:"+productID)
	assert.Contains(t, out, "METHOD:PUBLISH")
	assert.Contains(t, out, "X-WR-CALNAME:SIFMA Holiday Recommendations (US)")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20230102")
	assert.Contains(t, out, "UID:"+eventUID("SIFMA", us.SIFMA.Calculate(2023)[0]))
	assert.Contains(t, out, "DTSTAMP:20230101T120000Z")
	assert.Equal(t, len(us.SIFMA.Calculate(2023)), strings.Count(out, "BEGIN:VEVENT"))
}

func TestWrite_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, Write(&a, us.FRB, []int{2021, 2022}, ExportOptions{Stamp: stamp}))
	require.NoError(t, Write(&b, us.FRB, []int{2021, 2022}, ExportOptions{Stamp: stamp}))
	assert.Equal(t, a.String(), b.String())
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, us.SIFMA, []int{2023}, ExportOptions{Stamp: stamp}))

	entries, err := ParseDates(&buf)
	require.NoError(t, err)

	want := us.SIFMA.Calculate(2023)
	require.Len(t, entries, len(want))
	for i, hd := range want {
		assert.Equal(t, hd.Name(), entries[i].Name)
		assert.Equal(t, hd.Date(), entries[i].Date)
		assert.NotEmpty(t, entries[i].UID)
	}

	hs, err := Holidays(entries)
	require.NoError(t, err)
	imported, err := holiday.New(holiday.Options{Code: "IMP", Name: "Imported", Holidays: hs})
	require.NoError(t, err)

	got := imported.Calculate(2023)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Date(), got[i].Date())
		assert.Equal(t, want[i].Name(), got[i].Name())
	}
	assert.Empty(t, imported.Calculate(2024))
}

var thirdParty = strings.ReplaceAll(`BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Example//Holidays//EN
BEGIN:VEVENT
UID:a@example
DTSTAMP:20240101T000000Z
SUMMARY:Bridge Day
DTSTART;TZID=Asia/Tokyo:20240503T000000
END:VEVENT
BEGIN:VEVENT
UID:b@example
DTSTAMP:20240101T000000Z
SUMMARY:Bridge Day
DTSTART:20250502T230000Z
END:VEVENT
BEGIN:VEVENT
UID:c@example
DTSTAMP:20240101T000000Z
DTSTART;VALUE=DATE:20240101
END:VEVENT
BEGIN:VEVENT
UID:d@example
DTSTAMP:20240101T000000Z
SUMMARY:Founders Day
DESCRIPTION:Office closed
DTSTART;VALUE=DATE:20240314
END:VEVENT
END:VCALENDAR
`, "\n", "\r\n")

func TestParseDates_ThirdParty(t *testing.T) {
	entries, err := ParseDates(strings.NewReader(thirdParty))
	require.NoError(t, err)

	// The event without SUMMARY is skipped.
	require.Len(t, entries, 3)
	assert.Equal(t, "Founders Day", entries[0].Name)
	assert.Equal(t, "Office closed", entries[0].Description)
	assert.Equal(t, holiday.Date(2024, time.March, 14), entries[0].Date)
	// Midnight in Tokyo stays on May 3.
	assert.Equal(t, holiday.Date(2024, time.May, 3), entries[1].Date)
	assert.Equal(t, holiday.Date(2025, time.May, 2), entries[2].Date)

	hs, err := Holidays(entries)
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, "Founders Day", hs[0].Name())
	assert.Equal(t, "Bridge Day", hs[1].Name())

	d, ok := hs[1].Resolve(2025)
	assert.True(t, ok)
	assert.Equal(t, holiday.Date(2025, time.May, 2), d)
}

func TestParseICSTime(t *testing.T) {
	got, err := parseICSTime("20250101T090000Z", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC), got)

	_, err = parseICSTime(" ", time.UTC)
	assert.Error(t, err)
	_, err = parseICSTime("2025-01-01", time.UTC)
	assert.Error(t, err)
}

func TestEventUID(t *testing.T) {
	dates := us.SIFMA.Calculate(2023)
	a := eventUID("SIFMA", dates[0])
	assert.Equal(t, a, eventUID("SIFMA", dates[0]))
	assert.True(t, strings.HasSuffix(a, "@holidaycal"))
	assert.NotEqual(t, a, eventUID("FRB", dates[0]))
	assert.NotEqual(t, a, eventUID("SIFMA", dates[1]))
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://example.com/...(redacted)", redactURL("https://example.com/private.ics?token=abc"))
	assert.Equal(t, "https://example.com/...(redacted)", redactURL("https://example.com?token=abc"))
	assert.Equal(t, "ics://...(redacted)", redactURL("not a url"))
}

func TestFetcher_Cache(t *testing.T) {
	var calls atomic.Int32
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if fail.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(thirdParty))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "TEST", Location: srv.URL + "/holidays.ics"}
	ctx := context.Background()

	res, err := f.FetchOne(ctx, src)
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, thirdParty, string(res.Body))

	res, err = f.FetchOne(ctx, src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, thirdParty, string(res.Body))

	fail.Store(true)
	hs, err := f.Holidays(ctx, src)
	require.NoError(t, err)
	assert.Len(t, hs, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetcher_ErrorWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, err := NewFetcher(t.TempDir()).FetchOne(context.Background(), Source{ID: "X", Location: srv.URL})
	assert.Error(t, err)
}

func TestFetcher_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acme.ics")
	require.NoError(t, os.WriteFile(path, []byte(thirdParty), 0o600))

	f := NewFetcher(t.TempDir())
	hs, err := f.Holidays(context.Background(), Source{ID: "ACME", Location: path})
	require.NoError(t, err)
	assert.Len(t, hs, 2)

	_, err = f.FetchOne(context.Background(), Source{ID: "ACME", Location: path + ".missing"})
	assert.Error(t, err)
	_, err = f.FetchOne(context.Background(), Source{ID: "ACME"})
	assert.Error(t, err)
}
