package model

import "strings"

// RiskLevel is one of the three risk tiers a company or county can fall into.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// Rank orders risk levels for display, high first.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskHigh:
		return 0
	case RiskMedium:
		return 1
	case RiskLow:
		return 2
	default:
		return 3
	}
}

// ClientType distinguishes companies already banked from prospects.
type ClientType string

const (
	ClientCurrent   ClientType = "current"
	ClientPotential ClientType = "potential"
)

// ClientTypes is the active client-type filter.
type ClientTypes []ClientType

// AllClientTypes is the filter used when the user has not narrowed it.
func AllClientTypes() ClientTypes {
	return ClientTypes{ClientCurrent, ClientPotential}
}

// Has reports whether t is part of the filter.
func (c ClientTypes) Has(t ClientType) bool {
	for _, v := range c {
		if v == t {
			return true
		}
	}
	return false
}

// ParseClientTypes keeps only the recognised values of raw.
func ParseClientTypes(raw []string) ClientTypes {
	out := ClientTypes{}
	for _, r := range raw {
		switch ClientType(strings.ToLower(strings.TrimSpace(r))) {
		case ClientCurrent:
			if !out.Has(ClientCurrent) {
				out = append(out, ClientCurrent)
			}
		case ClientPotential:
			if !out.Has(ClientPotential) {
				out = append(out, ClientPotential)
			}
		}
	}
	return out
}

// Industries a simulated company can be assigned to, in rotation order.
var CompanyIndustries = []string{"Healthcare", "Technology", "Banking", "Other"}

// Company is a single company placed on the map.
type Company struct {
	Name      string    `json:"name"`
	Industry  string    `json:"industry"`
	RiskLevel RiskLevel `json:"risk_level"`
	IsClient  bool      `json:"is_client"`
}

// ClientType derives the company's client type from IsClient.
func (c Company) ClientType() ClientType {
	if c.IsClient {
		return ClientCurrent
	}
	return ClientPotential
}

type RiskCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Total is the number of companies counted across all tiers.
func (r RiskCounts) Total() int { return r.High + r.Medium + r.Low }

type ClientCounts struct {
	Current   int `json:"current"`
	Potential int `json:"potential"`
}

// CountyMetric is the aggregate shown for one county on the risk map.
type CountyMetric struct {
	County       string       `json:"county"`
	State        string       `json:"state"`
	Companies    []Company    `json:"companies"`
	RevenueTotal float64      `json:"revenue_total"`
	PDAvg        float64      `json:"pd_avg"`
	FCRAvg       float64      `json:"fcr_avg"`
	CRAvg        float64      `json:"cr_avg"`
	RiskCounts   RiskCounts   `json:"risk_counts"`
	ClientCounts ClientCounts `json:"client_counts"`
	DominantRisk RiskLevel    `json:"dominant_risk"`
}

// Key returns the "<county>, <state>" identifier of the metric.
func (m CountyMetric) Key() string { return CountyKey(m.County, m.State) }

// CountyKey builds the "<county>, <state>" map key.
func CountyKey(county, state string) string {
	return county + ", " + state
}

// CountyData maps county keys to their metrics.
type CountyData map[string]*CountyMetric
