package server

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Zachdehooge/riskmap-dashboard/internal/fetcher"
	"github.com/Zachdehooge/riskmap-dashboard/internal/mapview"
	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/simulate"
	"github.com/Zachdehooge/riskmap-dashboard/internal/store"
)

// SessionCookie names the cookie binding a browser to its map session.
const SessionCookie = "riskmap_session"

const msgNoCountyData = "No county data available"

// session returns the map session of the request, creating one (and its
// cookie) when the request has none or it was evicted.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *mapview.Refresher {
	id := ""
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	if id != "" {
		if ref, ok := s.sessions.Get(id); ok {
			return ref
		}
	} else {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	ref := s.newRefresher()
	if prev, ok, _ := s.sessions.PeekOrAdd(id, ref); ok {
		return prev
	}
	return ref
}

func (s *Server) newRefresher() *mapview.Refresher {
	sim := simulate.New(s.opts.Seed, model.AllClientTypes())
	if s.opts.SampleSize > 0 {
		sim.SampleSize = s.opts.SampleSize
	}
	if s.opts.PerStateFill > 0 {
		sim.PerStateFill = s.opts.PerStateFill
	}
	ref := mapview.NewRefresher(s.source, sim, s.boundaries, mapview.LogUI{}, s.metrics, s.opts.Seed)
	ref.Threshold = s.opts.CoverageThreshold
	return ref
}

func validMapMetric(m string) bool {
	switch m {
	case "pd", "revenue", "fcr", "cr":
		return true
	}
	return false
}

// handleMapLayer runs one refresh of the caller's map session. action picks
// what changed: init, industry, metric, client_type or refresh.
func (s *Server) handleMapLayer(w http.ResponseWriter, r *http.Request) {
	if s.boundaries.Collection == nil {
		writeError(w, http.StatusServiceUnavailable, "County boundaries are unavailable")
		return
	}
	ref := s.session(w, r)
	q := r.URL.Query()
	ctx := r.Context()

	var res mapview.Result
	var err error
	switch action := q.Get("action"); action {
	case "", "init":
		res, err = ref.Init(ctx)
	case "industry":
		res, err = ref.SetIndustry(ctx, strings.TrimSpace(q.Get("industry")))
	case "metric":
		m := q.Get("metric")
		if !validMapMetric(m) {
			writeError(w, http.StatusBadRequest, "unknown metric "+m)
			return
		}
		res, err = ref.SetMetric(ctx, m)
	case "client_type":
		res, err = ref.SetClientTypes(ctx, model.ParseClientTypes(q["client_type"]))
	case "refresh":
		res, err = ref.Refresh(ctx, mapview.ParseReason(q.Get("reason")))
	default:
		writeError(w, http.StatusBadRequest, "unknown action "+action)
		return
	}
	if err != nil {
		log.Printf("[server] map layer: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load map data")
		return
	}
	if res.Notifications == nil {
		res.Notifications = []mapview.Notification{}
	}
	writeJSON(w, http.StatusOK, res)
}

// handleMapMoved records a user pan, zoom or county click so later
// refreshes keep the user's view.
func (s *Server) handleMapMoved(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("action") != "moved" {
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}
	s.session(w, r).MarkUserMoved()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBoundaries(w http.ResponseWriter, r *http.Request) {
	if s.boundaries.Collection == nil {
		writeError(w, http.StatusServiceUnavailable, "County boundaries are unavailable")
		return
	}
	if s.boundaries.Fallback {
		w.Header().Set("X-Boundaries-Fallback", "true")
	}
	writeJSON(w, http.StatusOK, s.boundaries.Collection)
}

func (s *Server) handleCountyData(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	q := r.URL.Query()
	data, err := s.store.CountyData(r.Context())
	if err != nil {
		log.Printf("[server] county data: %v", err)
		writeJSON(w, http.StatusInternalServerError, fetcher.CountyResponse{Counties: model.CountyData{}, Message: "Failed to load county data"})
		return
	}
	data = FilterCounties(data, q.Get("industry"), model.ParseClientTypes(q["client_type"]))
	if len(data) == 0 {
		writeJSON(w, http.StatusOK, fetcher.CountyResponse{Counties: model.CountyData{}, Message: msgNoCountyData})
		return
	}
	writeJSON(w, http.StatusOK, fetcher.CountyResponse{Success: true, Counties: data})
}

func allIndustries(industry string) bool {
	return industry == "" || strings.EqualFold(industry, "all")
}

// FilterCounties keeps the companies of each county matching industry and
// client types, recounting risk tiers and clients. Counties left without
// companies are dropped. An empty client-type list means all.
func FilterCounties(data model.CountyData, industry string, ct model.ClientTypes) model.CountyData {
	if len(ct) == 0 {
		ct = model.AllClientTypes()
	}
	if allIndustries(industry) && len(ct) == len(model.AllClientTypes()) {
		return data
	}
	out := make(model.CountyData, len(data))
	for key, m := range data {
		var companies []model.Company
		for _, c := range m.Companies {
			if !allIndustries(industry) && !strings.EqualFold(c.Industry, industry) {
				continue
			}
			if !ct.Has(c.ClientType()) {
				continue
			}
			companies = append(companies, c)
		}
		if len(companies) == 0 {
			continue
		}
		cp := *m
		cp.Companies = companies
		cp.RiskCounts = model.RiskCounts{}
		cp.ClientCounts = model.ClientCounts{}
		for _, c := range companies {
			switch c.RiskLevel {
			case model.RiskHigh:
				cp.RiskCounts.High++
			case model.RiskMedium:
				cp.RiskCounts.Medium++
			default:
				cp.RiskCounts.Low++
			}
			if c.IsClient {
				cp.ClientCounts.Current++
			} else {
				cp.ClientCounts.Potential++
			}
		}
		cp.DominantRisk = dominant(cp.RiskCounts)
		out[key] = &cp
	}
	return out
}

// dominant picks the most common tier, preferring the riskier on ties.
func dominant(c model.RiskCounts) model.RiskLevel {
	switch {
	case c.High >= c.Medium && c.High >= c.Low && c.High > 0:
		return model.RiskHigh
	case c.Medium >= c.Low && c.Medium > 0:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// storeSource serves map sessions from the local county_metrics table.
type storeSource struct {
	store *store.Store
}

func (s storeSource) Ping(ctx context.Context) error { return s.store.Ping(ctx) }

func (s storeSource) CountyData(ctx context.Context, q fetcher.CountyQuery) (model.CountyData, error) {
	data, err := s.store.CountyData(ctx)
	if err != nil {
		return nil, err
	}
	return FilterCounties(data, q.Industry, q.ClientTypes), nil
}
