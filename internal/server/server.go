// Package server wires the dashboard pages and their JSON endpoints onto a
// net/http mux.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Zachdehooge/riskmap-dashboard/internal/alerts"
	"github.com/Zachdehooge/riskmap-dashboard/internal/blob"
	"github.com/Zachdehooge/riskmap-dashboard/internal/fetcher"
	"github.com/Zachdehooge/riskmap-dashboard/internal/filter"
	"github.com/Zachdehooge/riskmap-dashboard/internal/generator"
	"github.com/Zachdehooge/riskmap-dashboard/internal/mapview"
	"github.com/Zachdehooge/riskmap-dashboard/internal/metrics"
	"github.com/Zachdehooge/riskmap-dashboard/internal/report"
	"github.com/Zachdehooge/riskmap-dashboard/internal/store"
)

// DefaultMaxSessions bounds the number of live map sessions.
const DefaultMaxSessions = 256

const shutdownTimeout = 10 * time.Second

// Options tune the server. Zero values pick the defaults.
type Options struct {
	Policy            filter.Policy
	Seed              int64
	CoverageThreshold float64
	SampleSize        int
	PerStateFill      int
	MaxSessions       int
	Debounce          time.Duration

	// CountySource serves live county data to map sessions. When nil the
	// store's county_metrics table is used.
	CountySource mapview.CountySource
}

// Deps are the collaborators behind the endpoints. Any of them may be nil;
// the endpoints needing a missing one answer 503.
type Deps struct {
	Store      *store.Store
	Reports    *report.Generator
	Pages      *generator.Pages
	Metrics    *metrics.Metrics
	Boundaries fetcher.Boundaries
}

type Server struct {
	opts       Options
	store      *store.Store
	reports    *report.Generator
	pages      *generator.Pages
	metrics    *metrics.Metrics
	boundaries fetcher.Boundaries
	source     mapview.CountySource
	sessions   *lru.Cache[string, *mapview.Refresher]
	mux        *http.ServeMux

	now func() time.Time
}

// New builds the server and registers every route.
func New(opts Options, deps Deps) (*Server, error) {
	if opts.Policy == "" {
		opts.Policy = filter.SelectNone
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.CoverageThreshold <= 0 {
		opts.CoverageThreshold = mapview.DefaultCoverageThreshold
	}

	pages := deps.Pages
	if pages == nil {
		var err error
		if pages, err = generator.New(); err != nil {
			return nil, fmt.Errorf("parse pages: %w", err)
		}
	}
	sessions, err := lru.New[string, *mapview.Refresher](opts.MaxSessions)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}

	s := &Server{
		opts:       opts,
		store:      deps.Store,
		reports:    deps.Reports,
		pages:      pages,
		metrics:    deps.Metrics,
		boundaries: deps.Boundaries,
		source:     opts.CountySource,
		sessions:   sessions,
		mux:        http.NewServeMux(),
		now:        time.Now,
	}
	if s.source == nil && s.store != nil {
		s.source = storeSource{s.store}
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.Handle("GET /{$}", http.RedirectHandler("/dashboard", http.StatusFound))

	s.handle("GET /dashboard", "dashboard", s.handleDashboard)
	s.handle("GET /companies", "companies", s.handleCompanies)
	s.handle("GET /company_profiles", "company_profiles", s.handleProfiles)
	s.handle("GET /geoheatmap", "geoheatmap", s.handleGeoHeatmap)

	s.handle("GET /api/ping", "ping", s.handlePing)
	s.handle("GET /api/history", "history", s.handleHistory)
	s.handle("GET /api/county_data", "county_data", s.handleCountyData)
	s.handle("GET /api/company_metrics", "company_metrics", s.handleCompanyMetrics)
	s.handle("GET /api/boundaries", "boundaries", s.handleBoundaries)
	s.handle("GET /api/map_layer", "map_layer", s.handleMapLayer)
	s.handle("POST /api/map_layer", "map_layer", s.handleMapMoved)
	s.handle("GET /api/notifications", "notifications", s.handleNotifications)
	s.handle("POST /api/notifications/{id}/read", "notifications", s.handleNotificationRead)

	s.handle("POST /add_industry", "add_industry", s.handleAddIndustry)
	s.handle("POST /delete_industry", "delete_industry", s.handleDeleteIndustry)
	s.handle("POST /api/set_alert", "set_alert", s.handleSetAlert)
	s.handle("POST /api/generate_report", "generate_report", s.handleGenerateReport)
	s.handle("GET /reports/{id}", "reports", s.handleDownloadReport)

	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

func (s *Server) handle(pattern, route string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.metrics.Instrument(route, h))
}

// Handler is the root handler.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Printf("[server] stopped")
	return nil
}

// apiResponse is the body of JSON endpoints that only report an outcome.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[server] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, apiResponse{Error: msg})
}

// statusOf maps the error taxonomy onto HTTP status codes.
func statusOf(err error) int {
	var alertErr *alerts.ValidationError
	var reportErr *report.ValidationError
	switch {
	case errors.As(err, &alertErr), errors.As(err, &reportErr):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound), errors.Is(err, blob.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, report.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, filter.ErrDuplicateIndustry):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// requireStore answers 503 when no store is configured.
func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.store != nil {
		return true
	}
	log.Printf("[server] %s %s: no store configured", r.Method, r.URL.Path)
	writeError(w, http.StatusServiceUnavailable, "Storage is unavailable")
	return false
}

func username(r *http.Request) string {
	if u := r.URL.Query().Get("username"); u != "" {
		return u
	}
	return r.PostFormValue("username")
}
