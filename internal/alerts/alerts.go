// Package alerts validates alert requests and periodically evaluates them
// against current company metrics.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zachdehooge/riskmap-dashboard/internal/metrics"
	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/store"
)

// Conditions accepted by Evaluate.
const (
	Above  = "above"
	Below  = "below"
	Equals = "equals"
)

// DefaultInterval matches the cadence alerts were rechecked at historically.
const DefaultInterval = 5 * time.Minute

// MinInterval is the lowest interval Checker.Run accepts.
const MinInterval = 30 * time.Second

// equalsTolerance bounds the "equals" comparison. Metrics are stored as
// floats so an exact match would almost never fire.
const equalsTolerance = 1e-9

// Metrics lists the company metrics an alert may watch.
var Metrics = []string{"pd", "lgd", "expected_loss", "current_ratio", "roe", "leverage_ratio", "fcr"}

// ValidationError reports a rejected alert request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Request is the body of /api/set_alert. Threshold is kept raw because the
// form may send it as either a number or a string.
type Request struct {
	CompanyName     string `json:"company_name"`
	Metric          string `json:"metric"`
	Condition       string `json:"condition"`
	Threshold       any    `json:"threshold"`
	NotifyEmail     bool   `json:"notify_email"`
	NotifySMS       bool   `json:"notify_sms"`
	NotifyDashboard bool   `json:"notify_dashboard"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Username        string `json:"username,omitempty"`
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func parseThreshold(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, invalid("threshold", "must be a number")
		}
		return f, nil
	case nil:
		return 0, invalid("threshold", "is required")
	default:
		return 0, invalid("threshold", "must be a number")
	}
}

// Validate checks req and converts it to an alert with a fresh ID.
func Validate(req Request, now time.Time) (model.Alert, error) {
	var a model.Alert
	company := strings.TrimSpace(req.CompanyName)
	if company == "" {
		return a, invalid("company_name", "is required")
	}
	metric := strings.ToLower(strings.TrimSpace(req.Metric))
	if !validMetric(metric) {
		return a, invalid("metric", fmt.Sprintf("must be one of %s", strings.Join(Metrics, ", ")))
	}
	cond := strings.ToLower(strings.TrimSpace(req.Condition))
	switch cond {
	case Above, Below, Equals:
	default:
		return a, invalid("condition", "must be above, below or equals")
	}
	threshold, err := parseThreshold(req.Threshold)
	if err != nil {
		return a, err
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return a, invalid("threshold", "must be finite")
	}
	if !req.NotifyEmail && !req.NotifySMS && !req.NotifyDashboard {
		return a, invalid("notify", "select at least one notification method")
	}
	if req.NotifyEmail && strings.TrimSpace(req.Email) == "" {
		return a, invalid("email", "is required for email notifications")
	}
	if req.NotifySMS && strings.TrimSpace(req.Phone) == "" {
		return a, invalid("phone", "is required for SMS notifications")
	}
	return model.Alert{
		ID:              uuid.NewString(),
		Username:        req.Username,
		CompanyName:     company,
		Metric:          metric,
		Condition:       cond,
		Threshold:       threshold,
		NotifyEmail:     req.NotifyEmail,
		NotifySMS:       req.NotifySMS,
		NotifyDashboard: req.NotifyDashboard,
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		CreatedAt:       now.UTC(),
	}, nil
}

func validMetric(m string) bool {
	for _, v := range Metrics {
		if v == m {
			return true
		}
	}
	return false
}

// Evaluate reports whether current satisfies condition against threshold.
// Unknown conditions never fire.
func Evaluate(condition string, current, threshold float64) bool {
	switch condition {
	case Above:
		return current > threshold
	case Below:
		return current < threshold
	case Equals:
		return math.Abs(current-threshold) <= equalsTolerance
	}
	return false
}

// Message formats the notification text of a triggered alert.
func Message(a model.Alert, current float64) string {
	return fmt.Sprintf("Alert for %s: %s is %s %v (Current value: %v)",
		a.CompanyName, a.Metric, a.Condition, a.Threshold, current)
}

// Notifier delivers out-of-band alert messages.
type Notifier interface {
	Email(ctx context.Context, to, message string) error
	SMS(ctx context.Context, to, message string) error
}

// LogNotifier only logs deliveries.
type LogNotifier struct{}

func (LogNotifier) Email(_ context.Context, to, message string) error {
	log.Printf("[alerts] email to %s: %s", to, message)
	return nil
}

func (LogNotifier) SMS(_ context.Context, to, message string) error {
	log.Printf("[alerts] sms to %s: %s", to, message)
	return nil
}

// Store is the persistence the checker needs.
type Store interface {
	Alerts(ctx context.Context) ([]model.Alert, error)
	Company(ctx context.Context, name string) (model.CreditProfile, error)
	MarkAlertChecked(ctx context.Context, id string, at time.Time, triggered bool) error
	AddNotification(ctx context.Context, n model.Notification) (int64, error)
}

// Checker periodically evaluates every stored alert.
type Checker struct {
	Store    Store
	Notifier Notifier
	Metrics  *metrics.Metrics
	Interval time.Duration
	Now      func() time.Time

	mu sync.Mutex
}

// NewChecker returns a checker delivering through LogNotifier. Intervals
// below MinInterval are raised to it.
func NewChecker(s Store, m *metrics.Metrics, interval time.Duration) *Checker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if interval < MinInterval {
		interval = MinInterval
	}
	return &Checker{Store: s, Notifier: LogNotifier{}, Metrics: m, Interval: interval, Now: time.Now}
}

// Outcome is the result of checking one alert.
type Outcome struct {
	AlertID   string
	Current   float64
	Triggered bool
	Message   string
}

// Run checks all alerts every Interval until ctx ends.
func (c *Checker) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()
	log.Printf("[alerts] checking every %s", c.Interval)
	for {
		if _, err := c.CheckAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[alerts] check failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// CheckAll evaluates every alert once. A failure on one alert is logged
// and does not stop the others.
func (c *Checker) CheckAll(ctx context.Context) ([]Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Store == nil {
		return nil, errors.New("alerts: no store")
	}
	list, err := c.Store.Alerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	var out []Outcome
	for _, a := range list {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		o, err := c.check(ctx, a)
		if err != nil {
			log.Printf("[alerts] alert %s: %v", a.ID, err)
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (c *Checker) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Checker) check(ctx context.Context, a model.Alert) (Outcome, error) {
	o := Outcome{AlertID: a.ID}
	p, err := c.Store.Company(ctx, a.CompanyName)
	if err != nil {
		return o, fmt.Errorf("company %s: %w", a.CompanyName, err)
	}
	current, ok := p.Metrics()[a.Metric]
	if !ok {
		return o, fmt.Errorf("unknown metric %q", a.Metric)
	}
	o.Current = current
	o.Triggered = Evaluate(a.Condition, current, a.Threshold)
	at := c.now()
	if o.Triggered {
		o.Message = Message(a, current)
		c.Metrics.AlertTriggered()
		c.deliver(ctx, a, o.Message, at)
	}
	if err := c.Store.MarkAlertChecked(ctx, a.ID, at, o.Triggered); err != nil {
		return o, fmt.Errorf("mark checked: %w", err)
	}
	return o, nil
}

func (c *Checker) deliver(ctx context.Context, a model.Alert, msg string, at time.Time) {
	n := c.Notifier
	if n == nil {
		n = LogNotifier{}
	}
	if a.NotifyEmail {
		if err := n.Email(ctx, a.Email, msg); err != nil {
			log.Printf("[alerts] email %s: %v", a.ID, err)
		}
	}
	if a.NotifySMS {
		if err := n.SMS(ctx, a.Phone, msg); err != nil {
			log.Printf("[alerts] sms %s: %v", a.ID, err)
		}
	}
	if a.NotifyDashboard {
		if _, err := c.Store.AddNotification(ctx, model.Notification{AlertID: a.ID, Message: msg, CreatedAt: at}); err != nil {
			log.Printf("[alerts] dashboard %s: %v", a.ID, err)
		}
	}
}

var _ Store = (*store.Store)(nil)
