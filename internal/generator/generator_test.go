package generator

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Zachdehooge/riskmap-dashboard/internal/alerts"
	"github.com/Zachdehooge/riskmap-dashboard/internal/filter"
	"github.com/Zachdehooge/riskmap-dashboard/internal/mapview"
	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/report"
	"github.com/Zachdehooge/riskmap-dashboard/internal/table"
)

func profiles() []model.CreditProfile {
	return []model.CreditProfile{
		{Company: "Alpha", Industry: "Technology", CreditRating: "BBB", PD: 0.031, LGD: 0.4, ExpectedLoss: 12500, CurrentRatio: 1.2, FCR: 1.1},
		{Company: "Bravo", Industry: "Healthcare", CreditRating: "AAA", PD: 0.004, LGD: 0.35, ExpectedLoss: 900, CurrentRatio: 2.1, FCR: 3},
		{Company: "Charlie", Industry: "Energy", CreditRating: "CCC-", PD: 0.12, LGD: 0.6, ExpectedLoss: 250000, CurrentRatio: 0.8, FCR: 0.7},
	}
}

func render(t *testing.T, page string, data any, fragment bool) string {
	t.Helper()
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := p.Render(&buf, page, data, fragment); err != nil {
		t.Fatalf("Render %s: %v", page, err)
	}
	return buf.String()
}

func TestCompanyRowsSortOnFormattedCells(t *testing.T) {
	rows := CompanyRows(profiles(), table.DefaultSort)
	var got []string
	for _, r := range rows {
		got = append(got, r.ID)
	}
	if strings.Join(got, ",") != "Charlie,Alpha,Bravo" {
		t.Errorf("pd desc = %v", got)
	}
	if rows[0].Cells[5] != "$250,000" || rows[0].Cells[7] != "0.70x" || rows[0].Cells[3] != "12.00%" {
		t.Errorf("cells = %v", rows[0].Cells)
	}

	rows = CompanyRows(profiles(), table.SortState{Column: table.ColRating, Direction: table.Asc})
	if rows[0].ID != "Bravo" || rows[2].ID != "Charlie" {
		t.Errorf("rating asc = %s..%s", rows[0].ID, rows[2].ID)
	}
}

func TestHeaders(t *testing.T) {
	st := filter.FilterState{Search: "al"}
	hs := Headers("/companies", st, model.RiskHigh, table.DefaultSort)
	if len(hs) != len(table.Columns) {
		t.Fatalf("headers = %d", len(hs))
	}
	pd := hs[3]
	if pd.Indicator != table.IndicatorDesc {
		t.Errorf("pd indicator = %q", pd.Indicator)
	}
	u, err := url.Parse(pd.URL)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("sort") != "pd" || q.Get("direction") != "asc" || q.Get("search") != "al" || q.Get("risk") != "high" {
		t.Errorf("pd link = %s", pd.URL)
	}
	if hs[0].Indicator != table.IndicatorNone {
		t.Errorf("company indicator = %q", hs[0].Indicator)
	}
}

func TestRatioChart(t *testing.T) {
	c := RatioChart(model.CreditProfile{CurrentRatio: 1.6, FCR: 1.1, ROE: -0.02, ROA: 0.06, LeverageRatio: 3.5})
	want := []string{chartGood, chartWarn, chartBad, chartGood, chartBad}
	if strings.Join(c.Colors, ",") != strings.Join(want, ",") {
		t.Errorf("colors = %v", c.Colors)
	}
	if len(c.Labels) != 5 || c.Values[2] != -2 {
		t.Errorf("chart = %+v", c)
	}
}

func TestRenderFullAndFragment(t *testing.T) {
	st := filter.FilterState{Industries: []string{"Technology"}, Username: "ann"}
	g := filter.NewCheckboxGroup([]string{"Technology", "Healthcare", "Shipping"}, st)
	data := DashboardData{
		Nav:        NavFor("dashboard", "ann"),
		State:      st,
		Checkboxes: g.Items(),
		SelectAll:  g.SelectAllState(),
		Companies:  profiles(),
	}
	full := render(t, PageDashboard, data, false)
	if !strings.HasPrefix(full, "<!DOCTYPE html>") || !strings.Contains(full, `id="main-content"`) {
		t.Error("full page lacks the layout")
	}
	if !strings.Contains(full, `data-state="indeterminate"`) {
		t.Error("select-all state not rendered")
	}
	if !strings.Contains(full, "initializers.geoheatmap") {
		t.Error("router initializers missing")
	}

	frag := render(t, PageDashboard, data, true)
	if strings.Contains(frag, "<html") || !strings.Contains(frag, `id="dashboard"`) {
		t.Errorf("fragment = %.200s", frag)
	}
	if !strings.Contains(frag, `value="Technology" checked`) {
		t.Error("checked industry not rendered")
	}
}

func TestRenderCompaniesAndProfile(t *testing.T) {
	s := table.ParseSort("company", "asc")
	cd := CompaniesData{
		Nav:     NavFor("companies", ""),
		Sort:    s,
		Headers: Headers("/companies", filter.FilterState{}, "", s),
		Rows:    CompanyRows(profiles(), s),
	}
	out := render(t, PageCompanies, cd, true)
	if !strings.Contains(out, "Company ▲") {
		t.Error("active sort indicator missing")
	}
	if strings.Index(out, ">Alpha<") > strings.Index(out, ">Bravo<") {
		t.Error("rows not in company order")
	}

	p := profiles()[2]
	pd := ProfilesData{
		Nav:       NavFor("company_profiles", ""),
		Companies: profiles(),
		Selected:  &p,
		Chart:     RatioChart(p),
		Metrics:   ProfileMetrics(p),
	}
	out = render(t, PageProfiles, pd, true)
	if !strings.Contains(out, `id="ratio-chart"`) || !strings.Contains(out, "Current Ratio") {
		t.Errorf("profile page = %.300s", out)
	}
}

func TestRenderGeoHeatmap(t *testing.T) {
	md := MapData{
		Nav:         NavFor("geoheatmap", ""),
		Industries:  []string{"Banking", "Healthcare"},
		Industry:    "Banking",
		Metric:      "pd",
		ClientTypes: model.AllClientTypes(),
		Legend:      mapview.Legend(),
	}
	out := render(t, PageGeoHeatmap, md, true)
	if !strings.Contains(out, `value="Banking" selected`) {
		t.Error("selected industry missing")
	}
	if strings.Count(out, `class="legend-item"`) != len(mapview.Legend()) {
		t.Error("legend items missing")
	}
}

func TestRenderUnknownPage(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Render(&bytes.Buffer{}, "nope", nil, false); err == nil {
		t.Error("expected an error")
	}
}

func TestWriteFile(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "map.html")
	md := MapData{Nav: NavFor("geoheatmap", ""), Metric: "pd", Legend: mapview.Legend()}
	if err := p.WriteFile(path, PageGeoHeatmap, md); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(b, []byte("County Risk Map")) {
		t.Error("written page incomplete")
	}
}

func TestScriptsTakeConstantsFromGo(t *testing.T) {
	full := render(t, PageGeoHeatmap, MapData{Nav: NavFor("geoheatmap", ""), Metric: "pd", Legend: mapview.Legend()}, false)
	consts := []struct {
		name string
		want string
	}{
		{"NOTIFY_MS", fmt.Sprint(NotifyTimeout.Milliseconds())},
		{"TOOLTIP_OFFSET", fmt.Sprint(mapview.TooltipOffset)},
		{"DEBOUNCE_MS", fmt.Sprint(filter.DefaultDebounce.Milliseconds())},
	}
	for _, c := range consts {
		re := regexp.MustCompile(`const ` + c.name + ` = \s*` + c.want + `\s*;`)
		if !re.MatchString(full) {
			t.Errorf("%s not set to %s", c.name, c.want)
		}
	}
	for _, want := range []string{
		`"companiesRiskFilter":"` + filter.KeyCompaniesRiskFilter + `"`,
		`"dashboardIndustries":"` + filter.KeyDashboardIndustries + `"`,
		`"metrics":["pd",`,
		"setTimeout(() => div.remove(), NOTIFY_MS)",
		"relX + tw + TOOLTIP_OFFSET > box.width",
		"Math.min(left, box.width - tw)",
	} {
		if !strings.Contains(full, want) {
			t.Errorf("page script lacks %s", want)
		}
	}
	if strings.Contains(full, "box.left + 15") || strings.Contains(full, "tw - 15") {
		t.Error("tooltip offset hard-coded in the script")
	}
	if NotifyTimeout < 5*time.Second || NotifyTimeout > 10*time.Second {
		t.Errorf("NotifyTimeout = %s", NotifyTimeout)
	}
}

func TestScriptsHandleFailuresAndValidate(t *testing.T) {
	full := render(t, PageDashboard, DashboardData{Nav: NavFor("dashboard", "ann")}, false)
	for _, want := range []string{
		// every write goes through request, which owns the overlay and the catch
		"async function request(url, options, failure)",
		"postForm(addURL, { industry: industry, force: 'true' }",
		"postForm('/delete_industry?",
		"validateAlert(body)",
		"validateReport(f)",
		"if (a.notify_email && !String(a.email || '').trim())",
		"Select at least one notification method.",
		"params.set('industries', '')",
		"if (restored) form.requestSubmit()",
		"SESSION.companiesRiskFilter",
		"layer.on('click'",
		"map.fitBounds(f.bounds)",
	} {
		if !strings.Contains(full, want) {
			t.Errorf("page script lacks %s", want)
		}
	}
	for _, bare := range []string{"await fetch('/add_industry", "await fetch('/delete_industry", "await fetch('/api/generate_report"} {
		if strings.Contains(full, bare) {
			t.Errorf("unguarded %s", bare)
		}
	}
}

func TestFormRulesMatchServerValidation(t *testing.T) {
	rules := DefaultFormRules()
	now := time.Now()
	for _, m := range rules.Metrics {
		for _, c := range rules.Conditions {
			req := alerts.Request{CompanyName: "Alpha", Metric: m, Condition: c, Threshold: "1", NotifyDashboard: true}
			if _, err := alerts.Validate(req, now); err != nil {
				t.Errorf("alert %s %s rejected: %v", m, c, err)
			}
		}
	}
	if len(rules.Metrics) != len(alerts.Metrics) {
		t.Errorf("metrics = %v", rules.Metrics)
	}
	for _, tpl := range rules.Templates {
		for _, f := range rules.Formats {
			for _, sch := range rules.Schedules {
				if _, err := report.Normalize(report.Request{CompanyName: "Alpha", Template: tpl, Format: f, Schedule: sch}); err != nil {
					t.Errorf("report %s/%s/%s rejected: %v", tpl, f, sch, err)
				}
			}
		}
	}
	if len(rules.Templates) != len(report.Templates) {
		t.Errorf("templates = %v", rules.Templates)
	}
}
