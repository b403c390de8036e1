// Package mapview decides how the county risk map is drawn: fill colours,
// marker placement, tooltip contents and position, and when the map may be
// re-centred after a data refresh.
package mapview

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
)

const (
	ColorHigh   = "#ff5252"
	ColorMedium = "#ffce56"
	ColorLow    = "#4caf50"
	ColorNoData = "#e0e0e0"

	ColorCurrentClient   = "#4285f4"
	ColorPotentialClient = "#34a853"
)

// RiskColor returns the colour of a risk tier. Anything that is not high or
// medium is drawn as low.
func RiskColor(level model.RiskLevel) string {
	switch level {
	case model.RiskHigh:
		return ColorHigh
	case model.RiskMedium:
		return ColorMedium
	default:
		return ColorLow
	}
}

// CountyColor is determined solely by the dominant risk; counties without
// data are gray.
func CountyColor(m *model.CountyMetric) string {
	if m == nil {
		return ColorNoData
	}
	return RiskColor(m.DominantRisk)
}

// ClientColor returns the marker colour for a client type.
func ClientColor(t model.ClientType) string {
	if t == model.ClientCurrent {
		return ColorCurrentClient
	}
	return ColorPotentialClient
}

// Style is the Leaflet path style of a county.
type Style struct {
	FillColor   string  `json:"fillColor"`
	Weight      int     `json:"weight"`
	Opacity     float64 `json:"opacity"`
	Color       string  `json:"color"`
	FillOpacity float64 `json:"fillOpacity"`
}

// CountyStyle is the resting style of a county.
func CountyStyle(m *model.CountyMetric) Style {
	return Style{
		FillColor:   CountyColor(m),
		Weight:      1,
		Opacity:     1,
		Color:       "white",
		FillOpacity: 0.7,
	}
}

// Hover returns the emphasised style shown while the pointer is over a county.
func (s Style) Hover() Style {
	s.Weight = 2
	s.Color = "#666"
	s.FillOpacity = 0.9
	return s
}

// LegendItem is one row of the risk legend.
type LegendItem struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// Legend lists the risk tiers from low to high.
func Legend() []LegendItem {
	return []LegendItem{
		{Color: ColorLow, Label: "Low Risk (Green)"},
		{Color: ColorMedium, Label: "Medium Risk (Yellow)"},
		{Color: ColorHigh, Label: "High Risk (Red)"},
	}
}

const notAvailable = "N/A"

// FormatCurrency renders a whole-number amount with thousands separators.
func FormatCurrency(v float64) string {
	if math.IsNaN(v) {
		return notAvailable
	}
	return humanize.Comma(int64(math.Round(v)))
}

// FormatPercent renders a ratio as a percentage with two decimals.
func FormatPercent(v float64) string {
	if math.IsNaN(v) {
		return notAvailable
	}
	return fmt.Sprintf("%.2f", v*100)
}

func FormatDecimal(v float64) string {
	if math.IsNaN(v) {
		return notAvailable
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatRiskLevel title-cases a risk tier.
func FormatRiskLevel(level model.RiskLevel) string {
	if level == "" {
		return notAvailable
	}
	s := string(level)
	return strings.ToUpper(s[:1]) + s[1:]
}
