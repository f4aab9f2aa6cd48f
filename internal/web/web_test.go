package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holidaycal/internal/config"
	"holidaycal/internal/ics"
	"holidaycal/internal/model"
	"holidaycal/internal/registry"
)

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := NewServer(cfg, registry.Builtin())
	s.now = func() time.Time { return time.Date(2022, time.March, 1, 12, 0, 0, 0, time.UTC) }
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, body := get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)
}

func TestCalendars(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, body := get(t, ts.URL+"/api/calendars")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []model.CalendarInfo
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	codes := make([]string, 0, len(got))
	for _, c := range got {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"FRB", "NYSE", "SIFMA", "TARGET", "UK"}, codes)
}

func TestHolidays(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, body := get(t, ts.URL+"/api/holidays?calendar=SIFMA&year=2021")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var got model.CalendarYear
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "SIFMA", got.Calendar)
	assert.Equal(t, 2021, got.Year)
	require.Len(t, got.Holidays, 10)
	assert.Equal(t, "2021-01-01", got.Holidays[0].Date)
	assert.Equal(t, "2021-12-24", got.Holidays[9].Date)
}

func TestHolidays_DefaultYearAndMerge(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, body := get(t, ts.URL+"/api/holidays?calendar=target,%20uk")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got model.CalendarYear
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "TARGET/UK", got.Calendar)
	assert.Equal(t, 2022, got.Year)
	assert.NotEmpty(t, got.Holidays)
}

func TestHolidays_Errors(t *testing.T) {
	_, ts := newTestServer(t, nil)

	tests := []struct {
		query string
		code  int
	}{
		{"", http.StatusBadRequest},
		{"calendar=,", http.StatusBadRequest},
		{"calendar=MARS", http.StatusNotFound},
		{"calendar=SIFMA,MARS", http.StatusNotFound},
		{"calendar=SIFMA&year=abc", http.StatusBadRequest},
		{"calendar=SIFMA&year=0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, body := get(t, ts.URL+"/api/holidays?"+tt.query)
			assert.Equal(t, tt.code, resp.StatusCode)
			assert.Contains(t, body, `"error"`)
		})
	}
}

func TestHolidays_Cached(t *testing.T) {
	s, ts := newTestServer(t, nil)

	_, first := get(t, ts.URL+"/api/holidays?calendar=FRB&year=2021")
	s.cacheMu.RLock()
	assert.Len(t, s.cache, 1)
	s.cacheMu.RUnlock()

	_, second := get(t, ts.URL+"/api/holidays?calendar=frb&year=2021")
	assert.Equal(t, first, second)
	s.cacheMu.RLock()
	assert.Len(t, s.cache, 1)
	s.cacheMu.RUnlock()
}

func TestHolidays_CacheEviction(t *testing.T) {
	s, ts := newTestServer(t, nil)
	now := time.Date(2022, time.March, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	cached := func() int {
		s.cacheMu.RLock()
		defer s.cacheMu.RUnlock()
		return len(s.cache)
	}

	get(t, ts.URL+"/api/holidays?calendar=FRB&year=2021")
	get(t, ts.URL+"/api/holidays?calendar=FRB&year=2022")
	assert.Equal(t, 2, cached())

	// Both expire; storing a third response sweeps them.
	now = now.Add(responseCacheTTL)
	get(t, ts.URL+"/api/holidays?calendar=FRB&year=2023")
	assert.Equal(t, 1, cached())

	s.cacheLimit = 3
	for year := 2000; year < 2010; year++ {
		now = now.Add(time.Second)
		resp, _ := get(t, ts.URL+"/api/holidays?calendar=FRB&year="+strconv.Itoa(year))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.LessOrEqual(t, cached(), 3)
	}

	s.cacheMu.RLock()
	_, kept := s.cache["json|FRB|2009"]
	s.cacheMu.RUnlock()
	assert.True(t, kept, "newest response evicted")
}

func TestHolidaysICS(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, body := get(t, ts.URL+"/api/holidays.ics?calendar=UK&year=2023&years=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/calendar")

	entries, err := ics.ParseDates(strings.NewReader(body))
	require.NoError(t, err)
	assert.Len(t, entries, 16)
	assert.Equal(t, "2023-01-02", entries[0].Date.Format(time.DateOnly))

	resp, _ = get(t, ts.URL+"/api/holidays.ics?calendar=UK&years=500")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWeekend(t *testing.T) {
	_, ts := newTestServer(t, nil)

	tests := []struct {
		name     string
		query    string
		weekend  bool
		holiday  bool
		business bool
	}{
		// Friday evening in New York is Saturday in UTC.
		{"friday evening new york", "calendar=SIFMA&t=2021-12-17T20:00:00-05:00", true, false, false},
		{"sunday", "calendar=SIFMA&t=2021-12-19T12:00:00Z", true, false, false},
		{"observed new year", "calendar=SIFMA&t=2021-12-31T12:00:00Z", false, true, false},
		{"ordinary day", "calendar=SIFMA&t=2022-03-01T12:00:00Z", false, false, true},
		{"unix millis", "calendar=SIFMA&t=1639872000000", true, false, false},
		{"default now", "calendar=SIFMA", false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts.URL+"/api/weekend?"+tt.query)
			require.Equal(t, http.StatusOK, resp.StatusCode, body)

			var got weekendResponse
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			assert.Equal(t, tt.weekend, got.Weekend)
			assert.Equal(t, tt.holiday, got.Holiday)
			assert.Equal(t, tt.business, got.BusinessDay)
			assert.Equal(t, tt.holiday, got.HolidayName != "")
		})
	}

	for _, raw := range []string{"yesterday", "20211219", "-1"} {
		resp, body := get(t, ts.URL+"/api/weekend?calendar=SIFMA&t="+raw)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, raw)
		assert.Contains(t, body, `"error"`, raw)
	}
}

func TestBasicAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	_, ts := newTestServer(t, cfg)

	resp, _ := get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/api/calendars")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("WWW-Authenticate"), "Basic")

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/calendars", nil)
	require.NoError(t, err)
	req.SetBasicAuth("admin", "secret")
	ok, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	ok.Body.Close()
	assert.Equal(t, http.StatusOK, ok.StatusCode)
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, secureCompare("abc", "abc"))
	assert.False(t, secureCompare("abc", "abd"))
	assert.False(t, secureCompare("abc", "abcd"))
}
