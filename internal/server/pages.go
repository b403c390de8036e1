package server

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Zachdehooge/riskmap-dashboard/internal/filter"
	"github.com/Zachdehooge/riskmap-dashboard/internal/generator"
	"github.com/Zachdehooge/riskmap-dashboard/internal/mapview"
	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/report"
	"github.com/Zachdehooge/riskmap-dashboard/internal/store"
	"github.com/Zachdehooge/riskmap-dashboard/internal/table"
)

// render writes page as a full document, or as the content fragment when
// the request carries ajax=true.
func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	s.renderStatus(w, r, http.StatusOK, page, data)
}

func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, code int, page string, data any) {
	fragment := r.URL.Query().Get("ajax") == "true"
	var buf bytes.Buffer
	if err := s.pages.Render(&buf, page, data, fragment); err != nil {
		log.Printf("[server] render %s: %v", page, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("[server] write %s: %v", page, err)
	}
}

func (s *Server) nav(page, user string) generator.Nav {
	n := generator.NavFor(page, user)
	if s.opts.Debounce > 0 {
		n.DebounceMS = s.opts.Debounce.Milliseconds()
	}
	return n
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	user := q.Get("username")

	tracked, err := s.tracked(r, user)
	if err != nil {
		log.Printf("[server] tracked industries: %v", err)
		tracked = append([]string(nil), filter.DefaultIndustries...)
	}
	st := filter.Parse(q, tracked, s.opts.Policy)
	group := filter.NewCheckboxGroup(tracked, st)
	data := generator.DashboardData{
		Nav:        s.nav(generator.PageDashboard, user),
		State:      st,
		Checkboxes: group.Items(),
		SelectAll:  group.SelectAllState(),
	}

	if s.store != nil {
		if st.Search != "" {
			if err := s.store.RecordSearch(ctx, user, st.Search, s.now()); err != nil {
				log.Printf("[server] record search: %v", err)
			}
		}
		if st.Search != "" || len(st.Industries) > 0 {
			data.Companies, err = s.store.Companies(ctx, store.CompanyFilter{Search: st.Search, Industries: st.Industries})
			if err != nil {
				log.Printf("[server] dashboard companies: %v", err)
			}
		}
		if data.History, err = s.store.History(ctx, user, store.HistoryLimit); err != nil {
			log.Printf("[server] dashboard history: %v", err)
		}
		if data.Notifications, err = s.store.Notifications(ctx, true); err != nil {
			log.Printf("[server] dashboard notifications: %v", err)
		}
	}
	s.render(w, r, generator.PageDashboard, data)
}

func parseRisk(s string) model.RiskLevel {
	switch level := model.RiskLevel(strings.ToLower(strings.TrimSpace(s))); level {
	case model.RiskHigh, model.RiskMedium, model.RiskLow:
		return level
	}
	return ""
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	user := q.Get("username")
	st := filter.FilterState{Search: strings.TrimSpace(q.Get("search")), Username: user}
	risk := parseRisk(q.Get("risk"))
	sort := table.ParseSort(q.Get("sort"), q.Get("direction"))

	var profiles []model.CreditProfile
	if s.store != nil {
		var err error
		profiles, err = s.store.Companies(r.Context(), store.CompanyFilter{Search: st.Search, Risk: risk})
		if err != nil {
			log.Printf("[server] companies: %v", err)
		}
	}
	s.render(w, r, generator.PageCompanies, generator.CompaniesData{
		Nav:        s.nav(generator.PageCompanies, user),
		State:      st,
		RiskFilter: risk,
		Sort:       sort,
		Headers:    generator.Headers("/companies", st, risk, sort),
		Rows:       generator.CompanyRows(profiles, sort),
	})
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	user := q.Get("username")
	data := generator.ProfilesData{
		Nav:   s.nav(generator.PageProfiles, user),
		State: filter.FilterState{Username: user},
	}
	code := http.StatusOK
	if s.store != nil {
		var err error
		if data.Companies, err = s.store.Companies(ctx, store.CompanyFilter{}); err != nil {
			log.Printf("[server] profiles: %v", err)
		}
		if name := strings.TrimSpace(q.Get("company")); name != "" {
			p, err := s.store.Company(ctx, name)
			switch {
			case errors.Is(err, store.ErrNotFound):
				code = http.StatusNotFound
			case err != nil:
				log.Printf("[server] profile %q: %v", name, err)
			default:
				data.Selected = &p
				data.Chart = generator.RatioChart(p)
				data.Recommendations = report.Recommendations(p)
				data.Metrics = generator.ProfileMetrics(p)
			}
		}
	}
	s.renderStatus(w, r, code, generator.PageProfiles, data)
}

func (s *Server) handleGeoHeatmap(w http.ResponseWriter, r *http.Request) {
	st := s.session(w, r).State()
	s.render(w, r, generator.PageGeoHeatmap, generator.MapData{
		Nav:         s.nav(generator.PageGeoHeatmap, r.URL.Query().Get("username")),
		Industries:  model.CompanyIndustries,
		Industry:    st.Industry,
		Metric:      st.Metric,
		ClientTypes: st.ClientTypes,
		Legend:      mapview.Legend(),
	})
}
