package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/store"
)

// Field is one labelled value of a section. Benchmark holds the industry
// figure on comparison rows.
type Field struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	Benchmark string `json:"benchmark,omitempty"`
}

// Section is one titled block of a report.
type Section struct {
	Key    string   `json:"key"`
	Title  string   `json:"title"`
	Fields []Field  `json:"fields,omitempty"`
	Notes  []string `json:"notes,omitempty"`
}

// Report is a fully built report, ready to render.
type Report struct {
	ID          string    `json:"report_id"`
	CompanyName string    `json:"company_name"`
	Industry    string    `json:"industry"`
	Template    string    `json:"template"`
	Schedule    string    `json:"schedule"`
	GeneratedAt time.Time `json:"generated_date"`
	Sections    []Section `json:"sections"`
}

var titles = map[string]string{
	SectionCompanyInfo:        "Company Information",
	SectionRiskProfile:        "Risk Profile",
	SectionFinancialMetrics:   "Financial Metrics",
	SectionHistoricalData:     "Historical Performance",
	SectionIndustryComparison: "Industry Comparison",
	SectionNewsAnalysis:       "News Analysis",
	SectionRecommendations:    "Recommendations",
}

// Averages returns per-industry metric means.
type Averages interface {
	IndustryAverages(ctx context.Context, industry string) (map[string]float64, error)
}

func pct(v float64) string { return fmt.Sprintf("%.2f%%", v*100) }
func dec(v float64) string { return fmt.Sprintf("%.2f", v) }
func ratio(v float64) string { return fmt.Sprintf("%.2fx", v) }
func money(v float64) string { return "$" + humanize.Comma(int64(math.Round(v))) }

// Build assembles the requested sections for p. avg may be nil, in which
// case the industry comparison carries a note instead of benchmarks.
func Build(ctx context.Context, p model.CreditProfile, req Request, avg Averages, now time.Time) (Report, error) {
	r := Report{
		CompanyName: p.Company,
		Industry:    p.Industry,
		Template:    req.Template,
		Schedule:    req.Schedule,
		GeneratedAt: now.UTC(),
	}
	for _, key := range req.Sections {
		s := Section{Key: key, Title: titles[key]}
		switch key {
		case SectionCompanyInfo:
			s.Fields = []Field{
				{Label: "Company", Value: p.Company},
				{Label: "Industry", Value: p.Industry},
				{Label: "Sub-Industry", Value: p.SubIndustry},
				{Label: "Credit Rating", Value: p.CreditRating},
			}
		case SectionRiskProfile:
			s.Fields = []Field{
				{Label: "Probability of Default", Value: pct(p.PD)},
				{Label: "Loss Given Default", Value: pct(p.LGD)},
				{Label: "Expected Loss", Value: money(p.ExpectedLoss)},
				{Label: "Credit VaR", Value: money(p.CreditVaR)},
				{Label: "Probability of Rating Change", Value: pct(p.RatingChangeProb)},
				{Label: "Risk Level", Value: string(p.RiskLevel())},
			}
		case SectionFinancialMetrics:
			s.Fields = []Field{
				{Label: "Current Ratio", Value: dec(p.CurrentRatio)},
				{Label: "ROA", Value: pct(p.ROA)},
				{Label: "ROE", Value: pct(p.ROE)},
				{Label: "Leverage Ratio", Value: dec(p.LeverageRatio)},
				{Label: "Financial Coverage Ratio", Value: ratio(p.FCR)},
				{Label: "Loan Amount", Value: money(p.LoanAmount)},
			}
		case SectionHistoricalData:
			s.Fields = historical(p, now)
		case SectionIndustryComparison:
			fields, notes, err := comparison(ctx, p, avg)
			if err != nil {
				return r, err
			}
			s.Fields, s.Notes = fields, notes
		case SectionNewsAnalysis:
			s.Notes = []string{"No news source is configured for " + p.Company + "."}
		case SectionRecommendations:
			s.Notes = Recommendations(p)
		}
		r.Sections = append(r.Sections, s)
	}
	return r, nil
}

var (
	pdTrend = []float64{0.9, 0.95, 1, 1.02, 1.05}
	elTrend = []float64{0.9, 0.95, 1, 1.03, 1.07}
)

// historical projects the last five quarters ending with the quarter of
// now. The current quarter carries the stored values.
func historical(p model.CreditProfile, now time.Time) []Field {
	year, q := now.Year(), (int(now.Month())-1)/3+1
	labels := make([]string, len(pdTrend))
	for i := len(labels) - 1; i >= 0; i-- {
		labels[i] = fmt.Sprintf("%d-Q%d", year, q)
		if q--; q == 0 {
			q, year = 4, year-1
		}
	}
	var out []Field
	for i, l := range labels {
		pd := p.PD * pdTrend[i] / pdTrend[len(pdTrend)-1]
		el := p.ExpectedLoss * elTrend[i] / elTrend[len(elTrend)-1]
		out = append(out,
			Field{Label: l + " PD", Value: pct(pd)},
			Field{Label: l + " Expected Loss", Value: money(el)})
	}
	return out
}

var comparisonRows = []struct {
	key, label string
	format     func(float64) string
}{
	{"pd", "Probability of Default", pct},
	{"lgd", "Loss Given Default", pct},
	{"current_ratio", "Current Ratio", dec},
	{"roe", "ROE", pct},
	{"leverage_ratio", "Leverage Ratio", dec},
	{"fcr", "Financial Coverage Ratio", ratio},
}

func comparison(ctx context.Context, p model.CreditProfile, avg Averages) ([]Field, []string, error) {
	if avg == nil {
		return nil, []string{"Industry benchmarks are unavailable."}, nil
	}
	bench, err := avg.IndustryAverages(ctx, p.Industry)
	if errors.Is(err, store.ErrNotFound) {
		return nil, []string{"No peers found in " + p.Industry + "."}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("industry averages: %w", err)
	}
	own := p.Metrics()
	var fields []Field
	for _, row := range comparisonRows {
		fields = append(fields, Field{Label: row.label, Value: row.format(own[row.key]), Benchmark: row.format(bench[row.key])})
	}
	return fields, nil, nil
}

// Recommendations derives the narrative from PD, the coverage ratio used as
// DSCR, and liquidity.
func Recommendations(p model.CreditProfile) []string {
	var out []string
	switch p.RiskLevel() {
	case model.RiskHigh:
		out = append(out, "High default risk: reduce exposure or require additional collateral.")
	case model.RiskMedium:
		out = append(out, "Moderate default risk: review covenants and monitor quarterly.")
	default:
		out = append(out, "Low default risk: eligible for standard credit terms.")
	}
	switch {
	case p.FCR >= 1.25:
		out = append(out, fmt.Sprintf("DSCR of %s covers debt service comfortably.", ratio(p.FCR)))
	case p.FCR >= 1.0:
		out = append(out, fmt.Sprintf("DSCR of %s leaves a thin margin over debt service.", ratio(p.FCR)))
	default:
		out = append(out, fmt.Sprintf("DSCR of %s does not cover debt service; restructuring should be considered.", ratio(p.FCR)))
	}
	if p.CurrentRatio > 0 && p.CurrentRatio < 1 {
		out = append(out, "Current ratio below 1.0 indicates short-term liquidity pressure.")
	}
	return out
}
