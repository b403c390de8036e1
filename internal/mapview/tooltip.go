package mapview

import (
	"fmt"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
)

// TooltipOffset is the gap between the cursor and the tooltip, in pixels.
const TooltipOffset = 10

// Tooltip is the formatted hover content of a county.
type Tooltip struct {
	County  string `json:"county"`
	State   string `json:"state"`
	Revenue string `json:"revenue"`
	PD      string `json:"pd"`
	FCR     string `json:"fcr"`
	CR      string `json:"cr"`
	Risk    string `json:"risk"`
	Clients string `json:"clients"`
}

// TooltipFor formats the metrics of a county, or N/A values without data.
func TooltipFor(county, state string, m *model.CountyMetric) Tooltip {
	t := Tooltip{County: county, State: state}
	if m == nil {
		t.Revenue, t.PD, t.FCR, t.CR, t.Risk, t.Clients = notAvailable, notAvailable, notAvailable, notAvailable, notAvailable, notAvailable
		return t
	}
	t.Revenue = FormatCurrency(m.RevenueTotal)
	t.PD = FormatPercent(m.PDAvg)
	t.FCR = FormatDecimal(m.FCRAvg)
	t.CR = FormatDecimal(m.CRAvg)
	t.Risk = FormatRiskLevel(m.DominantRisk)
	t.Clients = fmt.Sprintf("%d current, %d potential", m.ClientCounts.Current, m.ClientCounts.Potential)
	return t
}

// Box is a screen rectangle in pixels.
type Box struct {
	Left, Top, Width, Height float64
}

// ClampTooltip places a tipW x tipH tooltip next to the cursor at
// (clientX, clientY), flipping to the other side of the cursor near the
// right and bottom edges, then clamping inside the container on all sides.
// The result is relative to the container.
func ClampTooltip(clientX, clientY float64, container Box, tipW, tipH float64) (left, top float64) {
	relX := clientX - container.Left
	relY := clientY - container.Top

	if relX+tipW+TooltipOffset > container.Width {
		left = relX - tipW - TooltipOffset
	} else {
		left = relX + TooltipOffset
	}
	if relY+tipH+TooltipOffset > container.Height {
		top = relY - tipH - TooltipOffset
	} else {
		top = relY + TooltipOffset
	}

	left = max(min(left, container.Width-tipW), 0)
	top = max(min(top, container.Height-tipH), 0)
	return left, top
}
