package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Zachdehooge/riskmap-dashboard/internal/alerts"
	"github.com/Zachdehooge/riskmap-dashboard/internal/filter"
	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/report"
	"github.com/Zachdehooge/riskmap-dashboard/internal/store"
)

// historyTimeLayout is how search timestamps are sent to the page.
const historyTimeLayout = time.DateTime

const maxAlertBody = 64 << 10

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			log.Printf("[server] ping: %v", err)
			writeError(w, http.StatusServiceUnavailable, "Database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	entries, err := s.store.History(r.Context(), username(r), store.HistoryLimit)
	if err != nil {
		log.Printf("[server] history: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load search history")
		return
	}
	pairs := make([][2]string, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, [2]string{e.Query, e.SearchedAt.Format(historyTimeLayout)})
	}
	writeJSON(w, http.StatusOK, pairs)
}

// tracked lists the default industries followed by the user's own.
func (s *Server) tracked(r *http.Request, user string) ([]string, error) {
	out := append([]string(nil), filter.DefaultIndustries...)
	if s.store == nil {
		return out, nil
	}
	custom, err := s.store.CustomIndustries(r.Context(), user)
	if err != nil {
		return nil, err
	}
	return append(out, custom...), nil
}

func (s *Server) handleAddIndustry(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	user := username(r)
	industry := strings.TrimSpace(r.PostFormValue("industry"))
	if industry == "" {
		writeJSON(w, http.StatusBadRequest, filter.Response{Error: "Industry name is required"})
		return
	}
	tracked, err := s.tracked(r, user)
	if err != nil {
		log.Printf("[server] add industry: %v", err)
		writeJSON(w, http.StatusInternalServerError, filter.Response{Error: "Failed to load tracked industries"})
		return
	}
	// force=true accepts a near match, never the same name twice.
	force := r.PostFormValue("force") == "true"
	if existing, ok := filter.MatchIndustry(tracked, industry); ok {
		dup := &filter.DuplicateError{Industry: industry, Existing: existing}
		if !force || !dup.Near() {
			writeJSON(w, statusOf(dup), filter.Response{Error: dup.Error(), Code: filter.CodeDuplicate, Existing: existing, Near: dup.Near()})
			return
		}
	}
	added, err := s.store.AddIndustry(r.Context(), user, industry)
	if err != nil {
		log.Printf("[server] add industry %q: %v", industry, err)
		writeJSON(w, http.StatusInternalServerError, filter.Response{Error: "Failed to add industry"})
		return
	}
	if !added {
		dup := &filter.DuplicateError{Industry: industry, Existing: industry}
		writeJSON(w, http.StatusConflict, filter.Response{Error: dup.Error(), Code: filter.CodeDuplicate, Existing: industry})
		return
	}
	log.Printf("[server] %s now tracks %q", user, industry)
	writeJSON(w, http.StatusOK, filter.Response{Success: true})
}

func (s *Server) handleDeleteIndustry(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	user := username(r)
	industry := strings.TrimSpace(r.PostFormValue("industry"))
	switch {
	case industry == "":
		writeJSON(w, http.StatusBadRequest, filter.Response{Error: "Industry name is required"})
		return
	case filter.IsDefaultIndustry(industry):
		writeJSON(w, http.StatusBadRequest, filter.Response{Error: filter.ErrDefaultIndustry.Error(), Code: filter.CodeDefaultIndustry})
		return
	}
	err := s.store.DeleteIndustry(r.Context(), user, industry)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, filter.Response{Error: fmt.Sprintf("Industry %q is not tracked", industry)})
	case err != nil:
		log.Printf("[server] delete industry %q: %v", industry, err)
		writeJSON(w, http.StatusInternalServerError, filter.Response{Error: "Failed to delete industry"})
	default:
		writeJSON(w, http.StatusOK, filter.Response{Success: true})
	}
}

type metricsResponse struct {
	Success bool               `json:"success"`
	Company string             `json:"company"`
	Metrics map[string]float64 `json:"metrics"`
}

func (s *Server) handleCompanyMetrics(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("company"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "company is required")
		return
	}
	p, err := s.store.Company(r.Context(), name)
	if err != nil {
		if code := statusOf(err); code == http.StatusNotFound {
			writeError(w, code, "Company not found")
			return
		}
		log.Printf("[server] company metrics %q: %v", name, err)
		writeError(w, http.StatusInternalServerError, "Failed to load company")
		return
	}
	writeJSON(w, http.StatusOK, metricsResponse{Success: true, Company: p.Company, Metrics: p.Metrics()})
}

type alertResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	AlertID string `json:"alert_id"`
}

func (s *Server) handleSetAlert(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	var req alerts.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxAlertBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Username == "" {
		req.Username = r.URL.Query().Get("username")
	}
	a, err := alerts.Validate(req, s.now())
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	if _, err := s.store.Company(r.Context(), a.CompanyName); err != nil {
		if statusOf(err) == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "Company not found")
			return
		}
		log.Printf("[server] set alert: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load company")
		return
	}
	if err := s.store.CreateAlert(r.Context(), a); err != nil {
		log.Printf("[server] set alert: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save alert")
		return
	}
	log.Printf("[server] alert %s on %s %s %s %v", a.ID, a.CompanyName, a.Metric, a.Condition, a.Threshold)
	writeJSON(w, http.StatusOK, alertResponse{Success: true, Message: "Alert set successfully", AlertID: a.ID})
}

type reportResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	report.Result
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		log.Printf("[server] generate report: no report generator configured")
		writeError(w, http.StatusServiceUnavailable, "Report generation is unavailable")
		return
	}
	req, err := report.ParseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.reports.Generate(r.Context(), req)
	if err != nil {
		code := statusOf(err)
		msg := err.Error()
		switch code {
		case http.StatusNotFound:
			msg = "Company not found"
		case http.StatusInternalServerError:
			log.Printf("[server] generate report: %v", err)
			msg = "Failed to generate report"
		}
		writeError(w, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Success: true, Message: "Report generated successfully", Result: res})
}

func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		http.Error(w, "report storage unavailable", http.StatusServiceUnavailable)
		return
	}
	id := r.PathValue("id")
	rec, info, body, err := s.reports.Open(r.Context(), id)
	if err != nil {
		code := statusOf(err)
		if code == http.StatusInternalServerError {
			log.Printf("[server] open report %s: %v", id, err)
		}
		http.Error(w, http.StatusText(code), code)
		return
	}
	defer body.Close()

	ct := info.ContentType
	if ct == "" {
		ct = report.ContentType(rec.Format)
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", rec.ID+"."+rec.Format))
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if _, err := io.Copy(w, body); err != nil {
		log.Printf("[server] send report %s: %v", id, err)
	}
}

type notificationsResponse struct {
	Success       bool                 `json:"success"`
	Notifications []model.Notification `json:"notifications"`
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	unread := r.URL.Query().Get("unread") == "true"
	ns, err := s.store.Notifications(r.Context(), unread)
	if err != nil {
		log.Printf("[server] notifications: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load notifications")
		return
	}
	if ns == nil {
		ns = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, notificationsResponse{Success: true, Notifications: ns})
}

func (s *Server) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if err := s.store.MarkNotificationRead(r.Context(), id); err != nil {
		code := statusOf(err)
		if code == http.StatusInternalServerError {
			log.Printf("[server] mark notification %d: %v", id, err)
		}
		writeError(w, code, http.StatusText(code))
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}
