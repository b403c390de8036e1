package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Zachdehooge/riskmap-dashboard/internal/blob"
	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/store"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		sections []string
		field    string
	}{
		{"standard default", Request{CompanyName: "A"}, Templates["standard"], ""},
		{"executive", Request{CompanyName: "A", Template: "Executive"}, Templates["executive"], ""},
		{"detailed", Request{CompanyName: "A", Template: "detailed"}, AllSections, ""},
		{"explicit wins", Request{CompanyName: "A", Template: "detailed", Sections: []string{"recommendations", "company_info"}},
			[]string{"company_info", "recommendations"}, ""},
		{"no company", Request{}, nil, "company_name"},
		{"bad template", Request{CompanyName: "A", Template: "glossy"}, nil, "template"},
		{"bad section", Request{CompanyName: "A", Sections: []string{"gossip"}}, nil, "sections"},
		{"pdf", Request{CompanyName: "A", Format: "pdf"}, nil, "format"},
		{"bad schedule", Request{CompanyName: "A", Schedule: "hourly"}, nil, "schedule"},
		{"email without address", Request{CompanyName: "A", DeliverEmail: true}, nil, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.req)
			if tt.field != "" {
				var ve *ValidationError
				if !errors.As(err, &ve) || ve.Field != tt.field {
					t.Fatalf("err = %v, want field %s", err, tt.field)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got.Sections, tt.sections) {
				t.Errorf("sections = %v, want %v", got.Sections, tt.sections)
			}
			if got.Format != FormatJSON || got.Schedule != ScheduleOnce {
				t.Errorf("defaults = %s/%s", got.Format, got.Schedule)
			}
		})
	}
}

func TestParseRequestMultipart(t *testing.T) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("company_name", "Pharma_1")
	_ = w.WriteField("sections[]", "risk_profile")
	_ = w.WriteField("sections[]", "company_info")
	_ = w.WriteField("format", "csv")
	_ = w.WriteField("delivery_email", "on")
	_ = w.WriteField("email", "a@example.com")
	_ = w.Close()

	r := httptest.NewRequest("POST", "/api/generate_report", &body)
	r.Header.Set("Content-Type", w.FormDataContentType())
	req, err := ParseRequest(r)
	if err != nil {
		t.Fatal(err)
	}
	if req.CompanyName != "Pharma_1" || req.Format != "csv" || !req.DeliverEmail {
		t.Errorf("req = %+v", req)
	}
	if !reflect.DeepEqual(req.Sections, []string{"risk_profile", "company_info"}) {
		t.Errorf("sections = %v", req.Sections)
	}
}

func TestParseRequestJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/generate_report",
		strings.NewReader(`{"company_name":"Pharma_1","template":"executive","schedule":"weekly"}`))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	req, err := ParseRequest(r)
	if err != nil {
		t.Fatal(err)
	}
	if req.Template != "executive" || req.Schedule != "weekly" {
		t.Errorf("req = %+v", req)
	}

	bad := httptest.NewRequest("POST", "/api/generate_report", strings.NewReader(`{`))
	bad.Header.Set("Content-Type", "application/json")
	if _, err := ParseRequest(bad); err == nil {
		t.Error("expected invalid JSON error")
	}
}

func TestRecommendations(t *testing.T) {
	high := Recommendations(model.CreditProfile{PD: 0.08, FCR: 0.8, CurrentRatio: 0.7})
	if len(high) != 3 || !strings.HasPrefix(high[0], "High") || !strings.Contains(high[1], "0.80x") {
		t.Errorf("high = %v", high)
	}
	low := Recommendations(model.CreditProfile{PD: 0.01, FCR: 2, CurrentRatio: 1.8})
	if len(low) != 2 || !strings.HasPrefix(low[0], "Low") || !strings.Contains(low[1], "comfortably") {
		t.Errorf("low = %v", low)
	}
}

func TestHistoricalQuarters(t *testing.T) {
	p := model.CreditProfile{PD: 0.05, ExpectedLoss: 1000}
	fields := historical(p, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	if len(fields) != 10 {
		t.Fatalf("fields = %d", len(fields))
	}
	if fields[0].Label != "2023-Q1 PD" || fields[8].Label != "2024-Q1 PD" {
		t.Errorf("labels = %s .. %s", fields[0].Label, fields[8].Label)
	}
	if fields[8].Value != "5.00%" || fields[9].Value != "$1,000" {
		t.Errorf("latest = %+v %+v", fields[8], fields[9])
	}
}

func newGenerator(t *testing.T) (*Generator, *store.Store) {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, store.DriverSQLite, filepath.Join(t.TempDir(), "r.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.InsertCompanies(ctx, []model.CreditProfile{
		{Company: "Pharma_1", Industry: "Healthcare", SubIndustry: "Pharma", CreditRating: "A", PD: 0.01, FCR: 1.9, CurrentRatio: 1.4},
		{Company: "Pharma_2", Industry: "Healthcare", SubIndustry: "Pharma", CreditRating: "BB", PD: 0.03, FCR: 1.1, CurrentRatio: 1.0},
	}); err != nil {
		t.Fatal(err)
	}
	fs, err := blob.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	return &Generator{Companies: s, Records: s, Blob: fs, Now: func() time.Time { return now }}, s
}

func TestGenerateAndOpen(t *testing.T) {
	g, _ := newGenerator(t)
	ctx := context.Background()

	res, err := g.Generate(ctx, Request{CompanyName: "Pharma_1", Template: "detailed", Schedule: "weekly"})
	if err != nil {
		t.Fatal(err)
	}
	if res.DownloadURL != "/reports/"+res.ID {
		t.Errorf("download url = %s", res.DownloadURL)
	}
	if res.NextRun == nil || !res.NextRun.Equal(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("next run = %v", res.NextRun)
	}

	rec, info, rc, err := g.Open(ctx, res.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = rc.Close() }()
	if rec.BlobKey != "reports/"+res.ID+".json" || !strings.HasPrefix(info.ContentType, "application/json") {
		t.Errorf("rec = %+v info = %+v", rec, info)
	}
	raw, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	var got Report
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Sections) != len(AllSections) {
		t.Fatalf("sections = %d", len(got.Sections))
	}
	for _, s := range got.Sections {
		if s.Key == SectionIndustryComparison && (len(s.Fields) != 6 || s.Fields[0].Benchmark != "2.00%") {
			t.Errorf("comparison = %+v", s)
		}
	}
}

func TestGenerateCSVAndHTML(t *testing.T) {
	g, _ := newGenerator(t)
	ctx := context.Background()

	res, err := g.Generate(ctx, Request{CompanyName: "Pharma_2", Format: "csv"})
	if err != nil {
		t.Fatal(err)
	}
	_, _, rc, err := g.Open(ctx, res.ID)
	if err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(rc).ReadAll()
	_ = rc.Close()
	if err != nil {
		t.Fatal(err)
	}
	if records[0][0] != "section" || records[1][2] != "Pharma_2" {
		t.Errorf("csv head = %v", records[:2])
	}

	res, err = g.Generate(ctx, Request{CompanyName: "Pharma_2", Format: "html", Sections: []string{"recommendations"}})
	if err != nil {
		t.Fatal(err)
	}
	_, _, rc, err = g.Open(ctx, res.ID)
	if err != nil {
		t.Fatal(err)
	}
	page, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !strings.Contains(string(page), "Moderate default risk") || !strings.Contains(string(page), "<h2>Recommendations</h2>") {
		t.Errorf("html = %s", page)
	}
}

func TestGenerateUnknownCompany(t *testing.T) {
	g, _ := newGenerator(t)
	_, err := g.Generate(context.Background(), Request{CompanyName: "Ghost"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
	if _, _, _, err := g.Open(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("open = %v", err)
	}
}

type failingRecords struct{ Records }

func (failingRecords) SaveReport(context.Context, model.Report) error {
	return errors.New("disk full")
}

type keyRecorder struct {
	blob.Store
	keys []string
}

func (k *keyRecorder) Put(ctx context.Context, key string, r io.Reader, contentType string) (blob.Info, error) {
	k.keys = append(k.keys, key)
	return k.Store.Put(ctx, key, r, contentType)
}

func TestGenerateRemovesArtifactWhenRecordFails(t *testing.T) {
	g, s := newGenerator(t)
	g.Records = failingRecords{s}
	blobs := &keyRecorder{Store: g.Blob}
	g.Blob = blobs
	ctx := context.Background()

	_, err := g.Generate(ctx, Request{CompanyName: "Pharma_1", Format: "csv"})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v", err)
	}
	if len(blobs.keys) != 1 {
		t.Fatalf("puts = %v", blobs.keys)
	}
	if _, _, err := blobs.Get(ctx, blobs.keys[0]); !errors.Is(err, blob.ErrNotFound) {
		t.Errorf("artifact %s still stored: %v", blobs.keys[0], err)
	}
}

func TestGenerateUnavailable(t *testing.T) {
	g := &Generator{}
	if _, err := g.Generate(context.Background(), Request{CompanyName: "A"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v", err)
	}
}
