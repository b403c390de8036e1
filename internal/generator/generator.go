// Package generator renders the dashboard pages. Every page can be rendered
// whole or as the content fragment swapped in by partial navigation.
package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/Zachdehooge/riskmap-dashboard/internal/alerts"
	"github.com/Zachdehooge/riskmap-dashboard/internal/filter"
	"github.com/Zachdehooge/riskmap-dashboard/internal/mapview"
	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/report"
	"github.com/Zachdehooge/riskmap-dashboard/internal/table"
)

// NotifyTimeout is how long a notification banner stays on screen.
const NotifyTimeout = 7 * time.Second

// Page names.
const (
	PageDashboard  = "dashboard"
	PageCompanies  = "companies"
	PageProfiles   = "company_profiles"
	PageGeoHeatmap = "geoheatmap"
)

// Pages holds one parsed template set per page.
type Pages struct {
	sets map[string]*template.Template
}

var funcs = template.FuncMap{
	"toJSON":     toJSON,
	"currency":   mapview.FormatCurrency,
	"percent":    mapview.FormatPercent,
	"decimal":    mapview.FormatDecimal,
	"riskLabel":  mapview.FormatRiskLevel,
	"riskClass":  riskClass,
	"profileURL": ProfileURL,
	"arrow":      arrow,
	"checked":    func(b bool) template.HTMLAttr { return checkedAttr(b) },
	"selected":   func(a, b string) template.HTMLAttr { return selectedAttr(a == b) },
	"hasClient":  func(c model.ClientTypes, t string) bool { return c.Has(model.ClientType(t)) },
}

// New parses every page.
func New() (*Pages, error) {
	p := &Pages{sets: map[string]*template.Template{}}
	bodies := map[string]string{
		PageDashboard:  dashboardTemplate,
		PageCompanies:  companiesTemplate,
		PageProfiles:   profilesTemplate,
		PageGeoHeatmap: geoheatmapTemplate,
	}
	for name, body := range bodies {
		t, err := template.New(name).Funcs(funcs).Parse(layoutTemplate)
		if err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
		if _, err := t.Parse(scriptsTemplate); err != nil {
			return nil, fmt.Errorf("parse scripts: %w", err)
		}
		if _, err := t.Parse(body); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		p.sets[name] = t
	}
	return p, nil
}

// Render writes page to w. With fragment set only the content block is
// written.
func (p *Pages) Render(w io.Writer, page string, data any, fragment bool) error {
	t, ok := p.sets[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	name := "layout"
	if fragment {
		name = "content"
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile renders page to path atomically.
func (p *Pages) WriteFile(path, page string, data any) error {
	var buf bytes.Buffer
	if err := p.Render(&buf, page, data, false); err != nil {
		return err
	}
	return atomic.WriteFile(path, &buf)
}

func toJSON(v interface{}) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

func riskClass(level model.RiskLevel) string {
	switch level {
	case model.RiskHigh:
		return "risk-high"
	case model.RiskMedium:
		return "risk-medium"
	case model.RiskLow:
		return "risk-low"
	}
	return "risk-none"
}

func arrow(i table.Indicator) string {
	switch i {
	case table.IndicatorAsc:
		return " ▲"
	case table.IndicatorDesc:
		return " ▼"
	}
	return ""
}

func checkedAttr(b bool) template.HTMLAttr {
	if b {
		return "checked"
	}
	return ""
}

func selectedAttr(b bool) template.HTMLAttr {
	if b {
		return "selected"
	}
	return ""
}

// NavFor builds the navigation of page for username.
func NavFor(page, username string) Nav {
	return Nav{
		Active:        "/" + strings.TrimPrefix(page, "/"),
		Username:      username,
		Routes:        filter.Routes,
		DebounceMS:    filter.DefaultDebounce.Milliseconds(),
		NotifyMS:      NotifyTimeout.Milliseconds(),
		TooltipOffset: mapview.TooltipOffset,
		Session: SessionKeys{
			DashboardSearch:     filter.KeyDashboardSearch,
			DashboardIndustries: filter.KeyDashboardIndustries,
			CompaniesSearch:     filter.KeyCompaniesSearch,
			CompaniesRiskFilter: filter.KeyCompaniesRiskFilter,
		},
		Rules: DefaultFormRules(),
	}
}

// DefaultFormRules lists what alerts.Validate and report.Normalize accept.
func DefaultFormRules() FormRules {
	templates := make([]string, 0, len(report.Templates))
	for name := range report.Templates {
		templates = append(templates, name)
	}
	sort.Strings(templates)
	return FormRules{
		Metrics:    append([]string(nil), alerts.Metrics...),
		Conditions: []string{alerts.Above, alerts.Below, alerts.Equals},
		Templates:  templates,
		Formats:    []string{report.FormatJSON, report.FormatHTML, report.FormatCSV},
		Schedules:  []string{report.ScheduleOnce, report.ScheduleDaily, report.ScheduleWeekly, report.ScheduleMonthly},
	}
}
