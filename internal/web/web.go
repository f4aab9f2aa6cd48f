package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"holidaycal/internal/config"
	"holidaycal/internal/holiday"
	"holidaycal/internal/ics"
	appLog "holidaycal/internal/log"
	"holidaycal/internal/model"
	"holidaycal/internal/registry"
)

const (
	responseCacheTTL   = 30 * time.Second
	maxCachedResponses = 256
	maxICSYears        = 50

	// Shorter digit strings such as 20211219 are rejected rather than
	// read as instants in January 1970.
	minUnixMilliDigits = 10
)

// Server provides the read-only holiday HTTP API.
type Server struct {
	cfg *config.Config
	reg *registry.Registry
	loc *time.Location
	mux *http.ServeMux

	// Rendered /api/holidays* bodies keyed by normalized request.
	cacheMu    sync.RWMutex
	cache      map[string]cachedResponse
	cacheLimit int

	// now is replaced in tests.
	now func() time.Time
}

type cachedResponse struct {
	contentType string
	body        []byte
	updatedAt   time.Time
}

// NewServer constructs a new Server over the calendars in reg.
func NewServer(cfg *config.Config, reg *registry.Registry) *Server {
	s := &Server{
		cfg:        cfg,
		reg:        reg,
		loc:        resolveLocationOrUTC(cfg.Timezone),
		mux:        http.NewServeMux(),
		cache:      make(map[string]cachedResponse),
		cacheLimit: maxCachedResponses,
		now:        time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials disable auth.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="holidaycal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer serves the API on cfg.Listen until ctx is cancelled, then
// shuts down gracefully.
func StartServer(ctx context.Context, cfg *config.Config, reg *registry.Registry) error {
	s := NewServer(cfg, reg)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen, "calendars", len(reg.Codes()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/calendars", s.handleCalendars)
	s.mux.HandleFunc("GET /api/holidays", s.handleHolidays)
	s.mux.HandleFunc("GET /api/holidays.ics", s.handleHolidaysICS)
	s.mux.HandleFunc("GET /api/weekend", s.handleWeekend)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleCalendars lists every registered calendar.
func (s *Server) handleCalendars(w http.ResponseWriter, _ *http.Request) {
	cals := s.reg.Calendars()
	out := make([]model.CalendarInfo, 0, len(cals))
	for _, c := range cals {
		out = append(out, model.NewCalendarInfo(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleHolidays returns the holiday dates of one year.
//
// GET /api/holidays?calendar=SIFMA,FRB&year=2024
//   - calendar: one code, or a comma list merged left to right (required)
//   - year:     defaults to the current year in the configured timezone
func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request) {
	c, year, ok := s.calendarAndYear(w, r)
	if !ok {
		return
	}

	key := fmt.Sprintf("json|%s|%d", c.Code(), year)
	if s.serveCached(w, key) {
		return
	}

	body, err := json.Marshal(model.NewCalendarYear(c, year))
	if err != nil {
		appLog.Error("api holidays: marshal failed", err, "calendar", c.Code(), "year", year)
		writeError(w, http.StatusInternalServerError, "failed to encode holidays")
		return
	}
	s.store(w, key, "application/json; charset=utf-8", append(body, '\n'))
}

// handleHolidaysICS is handleHolidays rendered as iCalendar.
//
// GET /api/holidays.ics?calendar=UK&year=2024&years=3
//   - years: number of consecutive years starting at year (default 1)
func (s *Server) handleHolidaysICS(w http.ResponseWriter, r *http.Request) {
	c, year, ok := s.calendarAndYear(w, r)
	if !ok {
		return
	}
	n := parseIntDefault(r.URL.Query().Get("years"), 1)
	if n < 1 || n > maxICSYears {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("years must be between 1 and %d", maxICSYears))
		return
	}

	key := fmt.Sprintf("ics|%s|%d|%d", c.Code(), year, n)
	if s.serveCached(w, key) {
		return
	}

	years := make([]int, n)
	for i := range years {
		years[i] = year + i
	}
	var buf bytes.Buffer
	if err := ics.Write(&buf, c, years, ics.ExportOptions{Stamp: s.now()}); err != nil {
		appLog.Error("api holidays.ics: export failed", err, "calendar", c.Code(), "year", year)
		writeError(w, http.StatusInternalServerError, "failed to export holidays")
		return
	}
	s.store(w, key, "text/calendar; charset=utf-8", buf.Bytes())
}

// weekendResponse is the JSON response shape for /api/weekend.
type weekendResponse struct {
	Calendar    string    `json:"calendar"`
	Time        time.Time `json:"time"`
	Weekend     bool      `json:"weekend"`
	Holiday     bool      `json:"holiday"`
	HolidayName string    `json:"holiday_name,omitempty"`
	BusinessDay bool      `json:"business_day"`
}

// handleWeekend classifies an instant. The weekend check uses the UTC
// calendar day of the instant.
//
// GET /api/weekend?calendar=SIFMA&t=2021-12-18T22:00:00-05:00
//   - t: RFC 3339 time or Unix milliseconds (at least 10 digits); defaults to now
func (s *Server) handleWeekend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, ok := s.resolveCalendar(w, q.Get("calendar"))
	if !ok {
		return
	}

	at := s.now()
	weekend := false
	if raw := strings.TrimSpace(q.Get("t")); raw != "" {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			if len(strings.TrimPrefix(raw, "-")) < minUnixMilliDigits {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("t as Unix milliseconds needs at least %d digits", minUnixMilliDigits))
				return
			}
			at = time.UnixMilli(ms)
			weekend = c.IsWeekendUnixMilli(ms)
		} else if t, err := time.Parse(time.RFC3339, raw); err == nil {
			at = t
			weekend = c.IsWeekendUTC(t)
		} else {
			writeError(w, http.StatusBadRequest, "t must be RFC 3339 or Unix milliseconds")
			return
		}
	} else {
		weekend = c.IsWeekendUTC(at)
	}

	utc := at.UTC()
	resp := weekendResponse{
		Calendar:    c.Code(),
		Time:        utc,
		Weekend:     weekend,
		BusinessDay: c.IsBusinessDay(utc),
	}
	if hd, ok := c.IsHoliday(utc); ok {
		resp.Holiday = true
		resp.HolidayName = hd.Name()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) calendarAndYear(w http.ResponseWriter, r *http.Request) (*holiday.Calendar, int, bool) {
	q := r.URL.Query()
	c, ok := s.resolveCalendar(w, q.Get("calendar"))
	if !ok {
		return nil, 0, false
	}

	year := s.now().In(s.loc).Year()
	if raw := strings.TrimSpace(q.Get("year")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 9999 {
			writeError(w, http.StatusBadRequest, "year must be between 1 and 9999")
			return nil, 0, false
		}
		year = n
	}
	return c, year, true
}

func (s *Server) resolveCalendar(w http.ResponseWriter, raw string) (*holiday.Calendar, bool) {
	codes := registry.SplitCodes(raw)
	if len(codes) == 0 {
		writeError(w, http.StatusBadRequest, "calendar is required")
		return nil, false
	}
	c, err := s.reg.Resolve(codes...)
	if err != nil {
		if errors.Is(err, registry.ErrUnknownCalendar) {
			writeError(w, http.StatusNotFound, err.Error())
			return nil, false
		}
		appLog.Error("api: resolve calendar failed", err, "calendar", raw)
		writeError(w, http.StatusInternalServerError, "failed to resolve calendar")
		return nil, false
	}
	return c, true
}

func (s *Server) serveCached(w http.ResponseWriter, key string) bool {
	s.cacheMu.RLock()
	cr, ok := s.cache[key]
	s.cacheMu.RUnlock()
	if !ok || s.now().Sub(cr.updatedAt) >= responseCacheTTL {
		return false
	}
	writeBody(w, cr.contentType, cr.body)
	return true
}

func (s *Server) store(w http.ResponseWriter, key, contentType string, body []byte) {
	now := s.now()
	s.cacheMu.Lock()
	s.evictLocked(now)
	s.cache[key] = cachedResponse{contentType: contentType, body: body, updatedAt: now}
	s.cacheMu.Unlock()
	writeBody(w, contentType, body)
}

// evictLocked drops expired responses, then the oldest ones until there
// is room for one more. Caller holds cacheMu.
func (s *Server) evictLocked(now time.Time) {
	for k, cr := range s.cache {
		if now.Sub(cr.updatedAt) >= responseCacheTTL {
			delete(s.cache, k)
		}
	}
	for len(s.cache) > 0 && len(s.cache) >= s.cacheLimit {
		oldest := ""
		var at time.Time
		for k, cr := range s.cache {
			if oldest == "" || cr.updatedAt.Before(at) {
				oldest, at = k, cr.updatedAt
			}
		}
		delete(s.cache, oldest)
	}
}

func writeBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func resolveLocationOrUTC(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to UTC", err, "name", name)
		return time.UTC
	}
	return loc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
