package model

import "time"

// CreditProfile is a row of the credit-risk company table.
type CreditProfile struct {
	Company          string    `json:"company"`
	Industry         string    `json:"industry"`
	SubIndustry      string    `json:"sub_industry"`
	CreditRating     string    `json:"credit_rating"`
	PD               float64   `json:"pd"`
	LGD              float64   `json:"lgd"`
	ExpectedLoss     float64   `json:"expected_loss"`
	CurrentRatio     float64   `json:"current_ratio"`
	ROA              float64   `json:"roa"`
	ROE              float64   `json:"roe"`
	LeverageRatio    float64   `json:"leverage_ratio"`
	CreditVaR        float64   `json:"credit_var"`
	LoanAmount       float64   `json:"loan_amount"`
	FCR              float64   `json:"fcr"`
	RatingChangeProb float64   `json:"rating_change_prob"`
	CreatedAt        time.Time `json:"created_at"`
}

// RiskLevel buckets the profile by probability of default.
func (p CreditProfile) RiskLevel() RiskLevel {
	switch {
	case p.PD >= 0.05:
		return RiskHigh
	case p.PD >= 0.02:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Metrics returns the numeric metrics keyed by their API name.
func (p CreditProfile) Metrics() map[string]float64 {
	return map[string]float64{
		"pd":                 p.PD,
		"lgd":                p.LGD,
		"expected_loss":      p.ExpectedLoss,
		"current_ratio":      p.CurrentRatio,
		"roa":                p.ROA,
		"roe":                p.ROE,
		"leverage_ratio":     p.LeverageRatio,
		"credit_var":         p.CreditVaR,
		"loan_amount":        p.LoanAmount,
		"fcr":                p.FCR,
		"rating_change_prob": p.RatingChangeProb,
	}
}

// Alert is a user-defined threshold watch on a company metric.
type Alert struct {
	ID              string    `json:"id"`
	Username        string    `json:"username,omitempty"`
	CompanyName     string    `json:"company_name"`
	Metric          string    `json:"metric"`
	Condition       string    `json:"condition"`
	Threshold       float64   `json:"threshold"`
	NotifyEmail     bool      `json:"notify_email"`
	NotifySMS       bool      `json:"notify_sms"`
	NotifyDashboard bool      `json:"notify_dashboard"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	LastCheckedAt   time.Time `json:"last_checked_at,omitempty"`
	LastTriggeredAt time.Time `json:"last_triggered_at,omitempty"`
}

// Notification is a message shown on the dashboard after an alert fires.
type Notification struct {
	ID        int64     `json:"id"`
	AlertID   string    `json:"alert_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

// Report records a generated report artifact.
type Report struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	Sections    []string  `json:"sections"`
	Format      string    `json:"format"`
	Schedule    string    `json:"schedule"`
	BlobKey     string    `json:"blob_key"`
	CreatedAt   time.Time `json:"created_at"`
}

// SearchEntry is one recorded dashboard search.
type SearchEntry struct {
	Query      string    `json:"query"`
	Username   string    `json:"username,omitempty"`
	SearchedAt time.Time `json:"searched_at"`
}
