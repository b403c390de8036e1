package alerts

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/store"
)

func TestValidate(t *testing.T) {
	base := Request{
		CompanyName: "Pharma_1", Metric: "pd", Condition: "above", Threshold: 0.05,
		NotifyDashboard: true,
	}
	tests := []struct {
		name  string
		edit  func(r *Request)
		field string
	}{
		{"ok", func(r *Request) {}, ""},
		{"string threshold", func(r *Request) { r.Threshold = " 0.2 " }, ""},
		{"missing company", func(r *Request) { r.CompanyName = " " }, "company_name"},
		{"bad metric", func(r *Request) { r.Metric = "ebitda" }, "metric"},
		{"bad condition", func(r *Request) { r.Condition = "near" }, "condition"},
		{"bad threshold", func(r *Request) { r.Threshold = "lots" }, "threshold"},
		{"no threshold", func(r *Request) { r.Threshold = nil }, "threshold"},
		{"no channel", func(r *Request) { r.NotifyDashboard = false }, "notify"},
		{"email without address", func(r *Request) { r.NotifyEmail = true }, "email"},
		{"sms without phone", func(r *Request) { r.NotifySMS = true }, "phone"},
	}
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.edit(&req)
			a, err := Validate(req, now)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if a.ID == "" || !a.CreatedAt.Equal(now) {
					t.Errorf("alert = %+v", a)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("err = %v, want field %s", err, tt.field)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		cond      string
		cur, thr  float64
		triggered bool
	}{
		{Above, 0.06, 0.05, true},
		{Above, 0.05, 0.05, false},
		{Below, 1.1, 1.5, true},
		{Below, 1.5, 1.5, false},
		{Equals, 0.1 + 0.2, 0.3, true},
		{Equals, 0.31, 0.3, false},
		{"sideways", 1, 1, false},
	}
	for _, tt := range tests {
		if got := Evaluate(tt.cond, tt.cur, tt.thr); got != tt.triggered {
			t.Errorf("Evaluate(%s, %v, %v) = %v", tt.cond, tt.cur, tt.thr, got)
		}
	}
}

func TestMessage(t *testing.T) {
	a := model.Alert{CompanyName: "Pharma_1", Metric: "pd", Condition: "above", Threshold: 0.05}
	want := "Alert for Pharma_1: pd is above 0.05 (Current value: 0.07)"
	if got := Message(a, 0.07); got != want {
		t.Errorf("Message = %q", got)
	}
}

type sentMessage struct{ kind, to, msg string }

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *recordingNotifier) Email(_ context.Context, to, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{"email", to, msg})
	return nil
}

func (n *recordingNotifier) SMS(_ context.Context, to, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{"sms", to, msg})
	return nil
}

func TestCheckAll(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, store.DriverSQLite, filepath.Join(t.TempDir(), "alerts.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.InsertCompanies(ctx, []model.CreditProfile{
		{Company: "Pharma_1", Industry: "Healthcare", CreditRating: "BB", PD: 0.07, FCR: 1.2},
	}); err != nil {
		t.Fatal(err)
	}
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, a := range []model.Alert{
		{ID: "fires", CompanyName: "Pharma_1", Metric: "pd", Condition: Above, Threshold: 0.05,
			NotifyEmail: true, Email: "risk@example.com", NotifyDashboard: true, CreatedAt: created},
		{ID: "quiet", CompanyName: "Pharma_1", Metric: "fcr", Condition: Below, Threshold: 1.0,
			NotifySMS: true, Phone: "555-0100", CreatedAt: created.Add(time.Second)},
		{ID: "orphan", CompanyName: "Nobody", Metric: "pd", Condition: Above, Threshold: 0,
			NotifyDashboard: true, CreatedAt: created.Add(2 * time.Second)},
	} {
		if err := s.CreateAlert(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	n := &recordingNotifier{}
	c := NewChecker(s, nil, time.Second)
	if c.Interval != MinInterval {
		t.Errorf("interval = %s", c.Interval)
	}
	c.Notifier = n
	c.Now = func() time.Time { return at }

	out, err := c.CheckAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("outcomes = %+v", out)
	}
	if !out[0].Triggered || out[1].Triggered {
		t.Errorf("outcomes = %+v", out)
	}
	if len(n.sent) != 1 || n.sent[0].kind != "email" || n.sent[0].to != "risk@example.com" {
		t.Errorf("sent = %+v", n.sent)
	}

	notes, err := s.Notifications(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].AlertID != "fires" || !strings.Contains(notes[0].Message, "Current value: 0.07") {
		t.Errorf("notifications = %+v", notes)
	}

	list, err := s.Alerts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range list {
		switch a.ID {
		case "fires":
			if !a.LastTriggeredAt.Equal(at) || !a.LastCheckedAt.Equal(at) {
				t.Errorf("fires = %+v", a)
			}
		case "quiet":
			if !a.LastTriggeredAt.IsZero() || !a.LastCheckedAt.Equal(at) {
				t.Errorf("quiet = %+v", a)
			}
		case "orphan":
			if !a.LastCheckedAt.IsZero() {
				t.Errorf("orphan was checked: %+v", a)
			}
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Checker{Store: nil, Interval: time.Hour}
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}
