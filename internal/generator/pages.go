package generator

import (
	"fmt"
	"net/url"

	"github.com/Zachdehooge/riskmap-dashboard/internal/filter"
	"github.com/Zachdehooge/riskmap-dashboard/internal/mapview"
	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/table"
)

// Nav is shared by every page.
type Nav struct {
	Active   string
	Username string
	Routes   []filter.Route
	// DebounceMS is how long typing in a search box pauses before it
	// navigates.
	DebounceMS int64
	// NotifyMS is how long a notification banner stays up.
	NotifyMS      int64
	TooltipOffset int
	Session       SessionKeys
	Rules         FormRules
}

// SessionKeys names the browser session entries the page scripts restore.
type SessionKeys struct {
	DashboardSearch     string `json:"dashboardSearch"`
	DashboardIndustries string `json:"dashboardIndustries"`
	CompaniesSearch     string `json:"companiesSearch"`
	CompaniesRiskFilter string `json:"companiesRiskFilter"`
}

// FormRules are the values the alert and report endpoints accept, checked
// in the browser before a form is posted.
type FormRules struct {
	Metrics    []string `json:"metrics"`
	Conditions []string `json:"conditions"`
	Templates  []string `json:"templates"`
	Formats    []string `json:"formats"`
	Schedules  []string `json:"schedules"`
}

// DashboardData feeds the dashboard page.
type DashboardData struct {
	Nav
	State         filter.FilterState
	Checkboxes    []filter.Checkbox
	SelectAll     filter.TriState
	Companies     []model.CreditProfile
	History       []model.SearchEntry
	Notifications []model.Notification
}

// Header is one sortable column header of the companies table.
type Header struct {
	Label     string
	URL       string
	Indicator table.Indicator
}

// CompaniesData feeds the companies table page.
type CompaniesData struct {
	Nav
	State      filter.FilterState
	RiskFilter model.RiskLevel
	Sort       table.SortState
	Headers    []Header
	Rows       []table.Row
}

// ProfilesData feeds the company profile page.
type ProfilesData struct {
	Nav
	State           filter.FilterState
	Companies       []model.CreditProfile
	Selected        *model.CreditProfile
	Chart           BarChart
	Recommendations []string
	Metrics         []MetricRow
}

// MetricRow is one formatted metric on the profile page.
type MetricRow struct {
	Label string
	Value string
}

// MapData feeds the geo heat map page.
type MapData struct {
	Nav
	Industries  []string
	Industry    string
	Metric      string
	ClientTypes model.ClientTypes
	Legend      []mapview.LegendItem
}

// CompanyRow formats p as a table row in column order.
func CompanyRow(p model.CreditProfile) table.Row {
	return table.Row{
		ID: p.Company,
		Cells: []string{
			p.Company,
			p.Industry,
			p.CreditRating,
			mapview.FormatPercent(p.PD) + "%",
			mapview.FormatPercent(p.LGD) + "%",
			"$" + mapview.FormatCurrency(p.ExpectedLoss),
			mapview.FormatDecimal(p.CurrentRatio),
			mapview.FormatDecimal(p.FCR) + "x",
			mapview.FormatRiskLevel(p.RiskLevel()),
		},
	}
}

// CompanyRows formats profiles and sorts them by s.
func CompanyRows(profiles []model.CreditProfile, s table.SortState) []table.Row {
	rows := make([]table.Row, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, CompanyRow(p))
	}
	table.Sort(rows, s)
	return rows
}

// Headers builds the column headers for s. Each link carries the sort a
// click would produce and keeps the current filter.
func Headers(path string, st filter.FilterState, risk model.RiskLevel, s table.SortState) []Header {
	ind := table.Indicators(s)
	out := make([]Header, 0, len(table.Columns))
	for _, d := range table.Columns {
		next := s.Click(d.Column)
		v := st.Values()
		v.Set("sort", string(next.Column))
		v.Set("direction", string(next.Direction))
		if risk != "" {
			v.Set("risk", string(risk))
		}
		out = append(out, Header{Label: d.Header, URL: path + "?" + v.Encode(), Indicator: ind[d.Column]})
	}
	return out
}

// ProfileURL links to the profile page of company.
func ProfileURL(company string) string {
	return "/company_profiles?" + url.Values{"company": {company}}.Encode()
}

// BarChart is a ready-to-draw dataset.
type BarChart struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors"`
}

const (
	chartGood = "#28a745"
	chartWarn = "#ffc107"
	chartBad  = "#dc3545"
)

func grade(v, good, warn float64) string {
	switch {
	case v >= good:
		return chartGood
	case v >= warn:
		return chartWarn
	default:
		return chartBad
	}
}

// RatioChart charts the ratio metrics of p. Leverage is graded inversely.
func RatioChart(p model.CreditProfile) BarChart {
	var c BarChart
	add := func(label string, v float64, color string) {
		c.Labels = append(c.Labels, label)
		c.Values = append(c.Values, v)
		c.Colors = append(c.Colors, color)
	}
	add("Current Ratio", p.CurrentRatio, grade(p.CurrentRatio, 1.5, 1.0))
	add("DSCR", p.FCR, grade(p.FCR, 1.25, 1.0))
	add("ROE %", p.ROE*100, grade(p.ROE, 0.10, 0.0))
	add("ROA %", p.ROA*100, grade(p.ROA, 0.05, 0.0))
	lev := chartGood
	switch {
	case p.LeverageRatio > 3:
		lev = chartBad
	case p.LeverageRatio > 2:
		lev = chartWarn
	}
	add("Leverage", p.LeverageRatio, lev)
	return c
}

// ProfileMetrics formats every metric of p for the profile page.
func ProfileMetrics(p model.CreditProfile) []MetricRow {
	return []MetricRow{
		{"Credit Rating", p.CreditRating},
		{"Probability of Default", mapview.FormatPercent(p.PD) + "%"},
		{"Loss Given Default", mapview.FormatPercent(p.LGD) + "%"},
		{"Expected Loss", "$" + mapview.FormatCurrency(p.ExpectedLoss)},
		{"Credit VaR", "$" + mapview.FormatCurrency(p.CreditVaR)},
		{"Loan Amount", "$" + mapview.FormatCurrency(p.LoanAmount)},
		{"Current Ratio", mapview.FormatDecimal(p.CurrentRatio)},
		{"ROA", mapview.FormatPercent(p.ROA) + "%"},
		{"ROE", mapview.FormatPercent(p.ROE) + "%"},
		{"Leverage Ratio", mapview.FormatDecimal(p.LeverageRatio)},
		{"Financial Coverage Ratio", fmt.Sprintf("%sx", mapview.FormatDecimal(p.FCR))},
		{"Probability of Rating Change", mapview.FormatPercent(p.RatingChangeProb) + "%"},
		{"Risk Level", mapview.FormatRiskLevel(p.RiskLevel())},
	}
}
