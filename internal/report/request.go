// Package report builds company credit reports, renders them and stores
// the artifacts in a blob store.
package report

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// Section keys.
const (
	SectionCompanyInfo        = "company_info"
	SectionRiskProfile        = "risk_profile"
	SectionFinancialMetrics   = "financial_metrics"
	SectionHistoricalData     = "historical_data"
	SectionIndustryComparison = "industry_comparison"
	SectionNewsAnalysis       = "news_analysis"
	SectionRecommendations    = "recommendations"
)

// AllSections is the canonical section order.
var AllSections = []string{
	SectionCompanyInfo,
	SectionRiskProfile,
	SectionFinancialMetrics,
	SectionHistoricalData,
	SectionIndustryComparison,
	SectionNewsAnalysis,
	SectionRecommendations,
}

// Templates maps a template name to its sections.
var Templates = map[string][]string{
	"standard":  {SectionCompanyInfo, SectionRiskProfile, SectionFinancialMetrics},
	"executive": {SectionCompanyInfo, SectionRiskProfile, SectionRecommendations},
	"detailed":  AllSections,
}

// Output formats.
const (
	FormatJSON = "json"
	FormatHTML = "html"
	FormatCSV  = "csv"
)

// Schedules.
const (
	ScheduleOnce    = "once"
	ScheduleDaily   = "daily"
	ScheduleWeekly  = "weekly"
	ScheduleMonthly = "monthly"
)

// ValidationError reports a rejected report request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Request is the body of /api/generate_report.
type Request struct {
	CompanyName   string   `json:"company_name"`
	Sections      []string `json:"sections"`
	Template      string   `json:"template"`
	Schedule      string   `json:"schedule"`
	Format        string   `json:"format"`
	DeliverEmail  bool     `json:"delivery_email"`
	Email         string   `json:"email"`
	DeliverOnline bool     `json:"delivery_download"`
}

// ParseRequest decodes a JSON body, or a urlencoded or multipart form.
func ParseRequest(r *http.Request) (Request, error) {
	var req Request
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, &ValidationError{Field: "body", Message: "invalid JSON"}
		}
		return req, nil
	}
	var err error
	if ct == "multipart/form-data" {
		err = r.ParseMultipartForm(1 << 20)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return req, &ValidationError{Field: "body", Message: fmt.Sprintf("invalid form: %v", err)}
	}
	req.CompanyName = r.FormValue("company_name")
	req.Sections = append(append([]string(nil), r.Form["sections[]"]...), r.Form["sections"]...)
	req.Template = r.FormValue("template")
	req.Schedule = r.FormValue("schedule")
	req.Format = r.FormValue("format")
	req.Email = r.FormValue("email")
	req.DeliverEmail = formBool(r.FormValue("delivery_email"))
	req.DeliverOnline = formBool(r.FormValue("delivery_download"))
	return req, nil
}

func formBool(v string) bool {
	if v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// Normalize validates req, resolving the template into sections and
// filling the format and schedule defaults. Explicit sections win over the
// template and are returned in canonical order.
func Normalize(req Request) (Request, error) {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if req.CompanyName == "" {
		return req, &ValidationError{Field: "company_name", Message: "is required"}
	}

	req.Template = strings.ToLower(strings.TrimSpace(req.Template))
	if req.Template == "" {
		req.Template = "standard"
	}
	if len(req.Sections) == 0 {
		secs, ok := Templates[req.Template]
		if !ok {
			return req, &ValidationError{Field: "template", Message: fmt.Sprintf("unknown template %q", req.Template)}
		}
		req.Sections = secs
	}
	want := map[string]bool{}
	for _, s := range req.Sections {
		s = strings.ToLower(strings.TrimSpace(s))
		if !knownSection(s) {
			return req, &ValidationError{Field: "sections", Message: fmt.Sprintf("unknown section %q", s)}
		}
		want[s] = true
	}
	req.Sections = nil
	for _, s := range AllSections {
		if want[s] {
			req.Sections = append(req.Sections, s)
		}
	}

	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	switch req.Format {
	case "":
		req.Format = FormatJSON
	case FormatJSON, FormatHTML, FormatCSV:
	default:
		return req, &ValidationError{Field: "format", Message: fmt.Sprintf("unsupported format %q", req.Format)}
	}

	req.Schedule = strings.ToLower(strings.TrimSpace(req.Schedule))
	switch req.Schedule {
	case "":
		req.Schedule = ScheduleOnce
	case ScheduleOnce, ScheduleDaily, ScheduleWeekly, ScheduleMonthly:
	default:
		return req, &ValidationError{Field: "schedule", Message: fmt.Sprintf("unknown schedule %q", req.Schedule)}
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.DeliverEmail && req.Email == "" {
		return req, &ValidationError{Field: "email", Message: "is required for email delivery"}
	}
	return req, nil
}

func knownSection(s string) bool {
	for _, k := range AllSections {
		if k == s {
			return true
		}
	}
	return false
}
