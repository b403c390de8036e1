package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Zachdehooge/riskmap-dashboard/internal/blob"
	"github.com/Zachdehooge/riskmap-dashboard/internal/fetcher"
	"github.com/Zachdehooge/riskmap-dashboard/internal/filter"
	"github.com/Zachdehooge/riskmap-dashboard/internal/mapview"
	"github.com/Zachdehooge/riskmap-dashboard/internal/metrics"
	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/report"
	"github.com/Zachdehooge/riskmap-dashboard/internal/simulate"
	"github.com/Zachdehooge/riskmap-dashboard/internal/store"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixtures() []model.CreditProfile {
	return []model.CreditProfile{
		{Company: "Alpha Health", Industry: "Healthcare", SubIndustry: "Pharmaceuticals", CreditRating: "BBB",
			PD: 0.03, LGD: 0.4, ExpectedLoss: 12000, CurrentRatio: 1.4, ROA: 0.04, ROE: 0.12, LeverageRatio: 0.5,
			LoanAmount: 1_000_000, FCR: 1.6, CreatedAt: testNow},
		{Company: "Beta Solar", Industry: "Solar Energy", SubIndustry: "Panels", CreditRating: "CCC",
			PD: 0.11, LGD: 0.55, ExpectedLoss: 300000, CurrentRatio: 0.9, ROA: -0.02, ROE: -0.05, LeverageRatio: 0.7,
			LoanAmount: 2_000_000, FCR: 0.8, CreatedAt: testNow},
		{Company: "Gamma Tech", Industry: "Technology", SubIndustry: "Software", CreditRating: "AA",
			PD: 0.004, LGD: 0.3, ExpectedLoss: 800, CurrentRatio: 2.5, ROA: 0.1, ROE: 0.2, LeverageRatio: 0.3,
			LoanAmount: 700_000, FCR: 3.4, CreatedAt: testNow},
	}
}

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, store.DriverSQLite, filepath.Join(t.TempDir(), "riskmap.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.InsertCompanies(ctx, fixtures()); err != nil {
		t.Fatal(err)
	}
	fs, err := blob.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fc, err := simulate.FallbackBoundaries()
	if err != nil {
		t.Fatal(err)
	}
	m := metrics.New()
	srv, err := New(Options{Seed: 7}, Deps{
		Store:      st,
		Reports:    &report.Generator{Companies: st, Records: st, Blob: fs, Metrics: m, Now: func() time.Time { return testNow }},
		Metrics:    m,
		Boundaries: fetcher.Boundaries{Collection: fc, Fallback: true},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv.now = func() time.Time { return testNow }
	return srv, st
}

func do(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func get(srv *Server, target string) *httptest.ResponseRecorder {
	return do(srv, httptest.NewRequest(http.MethodGet, target, nil))
}

func postForm(srv *Server, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(srv, req)
}

func postJSON(srv *Server, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(srv, req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestRootRedirectsToDashboard(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(srv, "/")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/dashboard" {
		t.Errorf("GET / = %d %s", rec.Code, rec.Header().Get("Location"))
	}
}

func TestDashboardPages(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(srv, "/dashboard?industries=Healthcare")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "<!DOCTYPE html>") || !strings.Contains(body, "Alpha Health") {
		t.Error("full dashboard lacks layout or the selected company")
	}
	if strings.Contains(body, "Gamma Tech") {
		t.Error("unselected industry listed")
	}

	rec = get(srv, "/dashboard?ajax=true")
	body = rec.Body.String()
	if strings.Contains(body, "<html") || !strings.Contains(body, `id="dashboard"`) {
		t.Errorf("fragment = %.200s", body)
	}
	if !strings.Contains(body, "No companies match") {
		t.Error("empty selection should list no companies")
	}
}

func TestSearchRecordsHistory(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(srv, "/dashboard?search=gamma&industries=Healthcare&username=ann")
	if !strings.Contains(rec.Body.String(), "Gamma Tech") {
		t.Error("search result missing")
	}

	rec = get(srv, "/api/history?username=ann")
	var pairs [][2]string
	decode(t, rec, &pairs)
	if len(pairs) != 1 || pairs[0][0] != "gamma" || pairs[0][1] != testNow.Format(time.DateTime) {
		t.Errorf("history = %v", pairs)
	}

	rec = get(srv, "/api/history?username=bob")
	decode(t, rec, &pairs)
	if len(pairs) != 0 {
		t.Errorf("bob history = %v", pairs)
	}
}

func TestIndustryEndpoints(t *testing.T) {
	srv, st := newTestServer(t)
	var resp filter.Response

	rec := postForm(srv, "/add_industry?username=ann", url.Values{"industry": {"Shipping"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("add = %d %s", rec.Code, rec.Body.String())
	}
	custom, err := st.CustomIndustries(context.Background(), "ann")
	if err != nil || len(custom) != 1 {
		t.Fatalf("custom = %v, %v", custom, err)
	}

	tests := []struct {
		name     string
		path     string
		industry string
		code     int
		errCode  string
		existing string
	}{
		{"duplicate", "/add_industry", "shipping", http.StatusConflict, filter.CodeDuplicate, "Shipping"},
		{"near duplicate", "/add_industry", "Shiping", http.StatusConflict, filter.CodeDuplicate, "Shipping"},
		{"default duplicate", "/add_industry", "healthcare", http.StatusConflict, filter.CodeDuplicate, "Healthcare"},
		{"empty add", "/add_industry", " ", http.StatusBadRequest, "", ""},
		{"delete default", "/delete_industry", "Healthcare", http.StatusBadRequest, filter.CodeDefaultIndustry, ""},
		{"delete untracked", "/delete_industry", "Aerospace", http.StatusNotFound, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(srv, tt.path+"?username=ann", url.Values{"industry": {tt.industry}})
			if rec.Code != tt.code {
				t.Fatalf("code = %d, want %d", rec.Code, tt.code)
			}
			resp = filter.Response{}
			decode(t, rec, &resp)
			if resp.Success || resp.Code != tt.errCode || resp.Existing != tt.existing {
				t.Errorf("resp = %+v", resp)
			}
		})
	}

	rec = postForm(srv, "/add_industry?username=ann", url.Values{"industry": {"Shiping"}})
	resp = filter.Response{}
	decode(t, rec, &resp)
	if !resp.Near {
		t.Errorf("near duplicate response not marked near: %+v", resp)
	}
	rec = postForm(srv, "/add_industry?username=ann", url.Values{"industry": {"SHIPPING"}, "force": {"true"}})
	if rec.Code != http.StatusConflict {
		t.Errorf("forced exact duplicate = %d", rec.Code)
	}
	rec = postForm(srv, "/add_industry?username=ann", url.Values{"industry": {"Shiping"}, "force": {"true"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("forced near duplicate = %d %s", rec.Code, rec.Body.String())
	}
	custom, err = st.CustomIndustries(context.Background(), "ann")
	if err != nil || len(custom) != 2 {
		t.Errorf("custom after forced add = %v, %v", custom, err)
	}

	rec = postForm(srv, "/delete_industry?username=ann", url.Values{"industry": {"Shipping"}})
	if rec.Code != http.StatusOK {
		t.Errorf("delete = %d %s", rec.Code, rec.Body.String())
	}
}

func TestTrackerAgainstServer(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	ctx := context.Background()

	tr := filter.NewTracker(ts.URL, "ann")
	if err := tr.Add(ctx, "Shipping", nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := tr.Add(ctx, "SHIPPING", nil)
	var dup *filter.DuplicateError
	if !errors.As(err, &dup) || dup.Existing != "Shipping" {
		t.Fatalf("second Add = %v", err)
	}
	if err := tr.AddAnyway(ctx, "Shiping", nil); err != nil {
		t.Fatalf("AddAnyway: %v", err)
	}
	if err := tr.Delete(ctx, "Shipping", func(string) bool { return true }); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestCompanyMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	if rec := get(srv, "/api/company_metrics"); rec.Code != http.StatusBadRequest {
		t.Errorf("missing company = %d", rec.Code)
	}
	if rec := get(srv, "/api/company_metrics?company=Nope"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown company = %d", rec.Code)
	}
	rec := get(srv, "/api/company_metrics?company="+url.QueryEscape("Beta Solar"))
	var resp metricsResponse
	decode(t, rec, &resp)
	if !resp.Success || resp.Metrics["pd"] != 0.11 || resp.Metrics["fcr"] != 0.8 {
		t.Errorf("metrics = %+v", resp)
	}
}

func TestSetAlert(t *testing.T) {
	srv, st := newTestServer(t)
	tests := []struct {
		name string
		body string
		code int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"invalid", `{"company_name":"Alpha Health","metric":"ebitda","condition":"above","threshold":1,"notify_dashboard":true}`, http.StatusBadRequest},
		{"unknown company", `{"company_name":"Nope","metric":"pd","condition":"above","threshold":0.1,"notify_dashboard":true}`, http.StatusNotFound},
		{"ok", `{"company_name":"Alpha Health","metric":"pd","condition":"above","threshold":"0.02","notify_dashboard":true}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(srv, "/api/set_alert", tt.body)
			if rec.Code != tt.code {
				t.Errorf("code = %d, want %d: %s", rec.Code, tt.code, rec.Body.String())
			}
		})
	}
	as, err := st.Alerts(context.Background())
	if err != nil || len(as) != 1 || as[0].Threshold != 0.02 {
		t.Errorf("alerts = %+v, %v", as, err)
	}
}

func TestGenerateAndDownloadReport(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(srv, "/api/generate_report", `{"company_name":"Alpha Health","format":"csv","schedule":"weekly"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate = %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success     bool   `json:"success"`
		ID          string `json:"report_id"`
		DownloadURL string `json:"download_url"`
		NextRun     string `json:"next_run"`
	}
	decode(t, rec, &resp)
	if !resp.Success || resp.DownloadURL != "/reports/"+resp.ID || resp.NextRun == "" {
		t.Fatalf("resp = %+v", resp)
	}

	rec = get(srv, resp.DownloadURL)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("download = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rec.Body.String(), "section,label,value,benchmark") {
		t.Errorf("csv = %.100s", rec.Body.String())
	}

	if rec := get(srv, "/reports/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("missing report = %d", rec.Code)
	}
	rec = postJSON(srv, "/api/generate_report", `{"company_name":"Nope"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown company = %d", rec.Code)
	}
	rec = postJSON(srv, "/api/generate_report", `{"company_name":"Alpha Health","format":"pdf"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("pdf = %d", rec.Code)
	}
}

func TestGenerateReportMultipart(t *testing.T) {
	srv, _ := newTestServer(t)
	var buf bytes.Buffer
	body := "--x\r\nContent-Disposition: form-data; name=\"company_name\"\r\n\r\nGamma Tech\r\n" +
		"--x\r\nContent-Disposition: form-data; name=\"sections[]\"\r\n\r\nrisk_profile\r\n" +
		"--x\r\nContent-Disposition: form-data; name=\"format\"\r\n\r\nhtml\r\n--x--\r\n"
	buf.WriteString(body)
	req := httptest.NewRequest(http.MethodPost, "/api/generate_report", &buf)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := do(srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate = %d %s", rec.Code, rec.Body.String())
	}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

type layerResult struct {
	Simulated     bool                   `json:"simulated"`
	Coverage      float64                `json:"coverage"`
	View          *mapview.View          `json:"view"`
	Notifications []mapview.Notification `json:"notifications"`
	State         struct {
		Metric   string `json:"metric"`
		Industry string `json:"industry"`
	} `json:"state"`
}

func TestMapLayerSession(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(srv, "/geoheatmap")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "County Risk Map") {
		t.Fatalf("geoheatmap = %d", rec.Code)
	}
	cookie := sessionCookie(t, rec)

	call := func(method, target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, nil)
		req.AddCookie(cookie)
		return do(srv, req)
	}

	var res layerResult
	rec = call(http.MethodGet, "/api/map_layer?action=init")
	if rec.Code != http.StatusOK {
		t.Fatalf("init = %d %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &res)
	if !res.Simulated || len(res.Notifications) == 0 || res.View == nil || *res.View != mapview.USView {
		t.Errorf("init = %+v", res)
	}

	if rec := call(http.MethodGet, "/api/map_layer?action=metric&metric=ebitda"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad metric = %d", rec.Code)
	}
	if rec := call(http.MethodGet, "/api/map_layer?action=zoom"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad action = %d", rec.Code)
	}

	res = layerResult{}
	decode(t, call(http.MethodGet, "/api/map_layer?action=metric&metric=fcr"), &res)
	if res.State.Metric != "fcr" || res.View != nil {
		t.Errorf("metric change = %+v", res)
	}

	if rec := call(http.MethodPost, "/api/map_layer?action=moved"); rec.Code != http.StatusNoContent {
		t.Fatalf("moved = %d", rec.Code)
	}
	res = layerResult{}
	decode(t, call(http.MethodGet, "/api/map_layer?action=industry&industry=Banking"), &res)
	if res.State.Industry != "Banking" || res.View != nil {
		t.Errorf("industry after move = %+v", res)
	}

	ref, ok := srv.sessions.Get(cookie.Value)
	if !ok || !ref.State().Viewport.UserMoved || ref.State().Metric != "fcr" {
		t.Error("session state not kept")
	}

	other := get(srv, "/api/map_layer?action=industry&industry=Banking")
	res = layerResult{}
	decode(t, other, &res)
	if res.View == nil || *res.View != mapview.NorthCarolinaView {
		t.Errorf("fresh session view = %+v", res.View)
	}
}

func TestMapLayerUsesStoredCountyData(t *testing.T) {
	srv, st := newTestServer(t)
	srv.boundaries.Fallback = false
	ctx := context.Background()

	var res layerResult
	decode(t, get(srv, "/api/map_layer?action=init"), &res)
	if !res.Simulated {
		t.Error("empty county table should fall back to simulation")
	}

	sim := simulate.New(1, model.AllClientTypes())
	wake := sim.County("Wake", "North Carolina", 2)
	if err := st.SaveCountyData(ctx, model.CountyData{wake.Key(): wake}); err != nil {
		t.Fatal(err)
	}
	res = layerResult{}
	decode(t, get(srv, "/api/map_layer?action=init"), &res)
	if res.Simulated || res.Coverage <= 0 {
		t.Errorf("stored data = %+v", res)
	}
}

func TestCountyDataEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	var resp fetcher.CountyResponse
	decode(t, get(srv, "/api/county_data?metric=pd"), &resp)
	if resp.Success || resp.Message != msgNoCountyData {
		t.Errorf("empty = %+v", resp)
	}

	data := model.CountyData{
		"Wake, North Carolina": {County: "Wake", State: "North Carolina", Companies: []model.Company{
			{Name: "A", Industry: "Banking", RiskLevel: model.RiskHigh, IsClient: true},
			{Name: "B", Industry: "Technology", RiskLevel: model.RiskLow},
		}},
		"Cook, Illinois": {County: "Cook", State: "Illinois", Companies: []model.Company{
			{Name: "C", Industry: "Healthcare", RiskLevel: model.RiskMedium},
		}},
	}
	if err := st.SaveCountyData(context.Background(), data); err != nil {
		t.Fatal(err)
	}
	resp = fetcher.CountyResponse{}
	decode(t, get(srv, "/api/county_data?industry=Banking&metric=pd"), &resp)
	wake := resp.Counties["Wake, North Carolina"]
	if !resp.Success || len(resp.Counties) != 1 || wake == nil || len(wake.Companies) != 1 {
		t.Fatalf("banking = %+v", resp)
	}
	if wake.DominantRisk != model.RiskHigh || wake.ClientCounts.Current != 1 {
		t.Errorf("recount = %+v", wake)
	}

	resp = fetcher.CountyResponse{}
	decode(t, get(srv, "/api/county_data?client_type=potential"), &resp)
	if len(resp.Counties) != 2 || resp.Counties["Wake, North Carolina"].RiskCounts.Low != 1 {
		t.Errorf("potential = %+v", resp.Counties)
	}
}

func TestCountyClientAgainstServer(t *testing.T) {
	srv, st := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	ctx := context.Background()

	wake := simulate.New(3, model.AllClientTypes()).County("Wake", "North Carolina", 3)
	if err := st.SaveCountyData(ctx, model.CountyData{wake.Key(): wake}); err != nil {
		t.Fatal(err)
	}
	c := fetcher.NewCountyClient(ts.URL, time.Second)
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	data, err := c.CountyData(ctx, fetcher.CountyQuery{Metric: "pd", ClientTypes: model.AllClientTypes()})
	if err != nil || data[wake.Key()] == nil {
		t.Fatalf("CountyData = %v, %v", data, err)
	}
}

func TestNotifications(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()
	id, err := st.AddNotification(ctx, model.Notification{AlertID: "a1", Message: "PD above 2%", CreatedAt: testNow})
	if err != nil {
		t.Fatal(err)
	}

	if rec := get(srv, "/dashboard"); !strings.Contains(rec.Body.String(), "PD above 2%") {
		t.Error("dashboard lacks the unread notification")
	}

	var resp notificationsResponse
	decode(t, get(srv, "/api/notifications?unread=true"), &resp)
	if len(resp.Notifications) != 1 {
		t.Fatalf("unread = %+v", resp)
	}
	rec := do(srv, httptest.NewRequest(http.MethodPost, "/api/notifications/"+strconv.FormatInt(id, 10)+"/read", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("read = %d", rec.Code)
	}
	resp = notificationsResponse{}
	decode(t, get(srv, "/api/notifications?unread=true"), &resp)
	if len(resp.Notifications) != 0 {
		t.Errorf("still unread = %+v", resp)
	}
	if rec := do(srv, httptest.NewRequest(http.MethodPost, "/api/notifications/x/read", nil)); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id = %d", rec.Code)
	}
}

func TestCompaniesAndProfilePages(t *testing.T) {
	srv, _ := newTestServer(t)

	body := get(srv, "/companies?sort=company&direction=asc&ajax=true").Body.String()
	a, b, g := strings.Index(body, "Alpha Health"), strings.Index(body, "Beta Solar"), strings.Index(body, "Gamma Tech")
	if a < 0 || !(a < b && b < g) {
		t.Error("companies not sorted by name")
	}
	body = get(srv, "/companies?risk=high&ajax=true").Body.String()
	if !strings.Contains(body, "Beta Solar") || strings.Contains(body, "Gamma Tech") {
		t.Error("risk filter not applied")
	}

	rec := get(srv, "/company_profiles?company="+url.QueryEscape("Beta Solar"))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `id="ratio-chart"`) {
		t.Errorf("profile = %d", rec.Code)
	}
	if rec := get(srv, "/company_profiles?company=Nope"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown profile = %d", rec.Code)
	}
}

func TestWithoutCollaborators(t *testing.T) {
	srv, err := New(Options{}, Deps{})
	if err != nil {
		t.Fatal(err)
	}
	if rec := get(srv, "/api/ping"); rec.Code != http.StatusOK {
		t.Errorf("ping = %d", rec.Code)
	}
	for _, target := range []string{"/api/history", "/api/county_data", "/api/company_metrics?company=A", "/api/boundaries", "/api/map_layer"} {
		if rec := get(srv, target); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s = %d", target, rec.Code)
		}
	}
	if rec := postJSON(srv, "/api/generate_report", `{}`); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("generate = %d", rec.Code)
	}
	if rec := get(srv, "/dashboard"); rec.Code != http.StatusOK {
		t.Errorf("dashboard = %d", rec.Code)
	}
}

func TestSeedCompanies(t *testing.T) {
	st, err := store.Open(context.Background(), store.DriverSQLite, filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	ctx := context.Background()

	n, err := SeedCompanies(ctx, st, 42, testNow)
	if err != nil || n == 0 {
		t.Fatalf("first seed = %d, %v", n, err)
	}
	again, err := SeedCompanies(ctx, st, 42, testNow)
	if err != nil || again != 0 {
		t.Errorf("second seed = %d, %v", again, err)
	}
	count, _ := st.CountCompanies(ctx)
	if count != n {
		t.Errorf("count = %d, want %d", count, n)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	get(srv, "/api/ping")
	rec := get(srv, "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ping") {
		t.Errorf("metrics = %d", rec.Code)
	}
}
