package mapview

import (
	"strings"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
)

// Reason says what triggered a map update.
type Reason string

const (
	ReasonIndustry   Reason = "industry"
	ReasonClientType Reason = "client_type"
	ReasonMetric     Reason = "metric"
)

// ParseReason defaults unknown values to ReasonIndustry.
func ParseReason(s string) Reason {
	switch Reason(s) {
	case ReasonClientType, ReasonMetric:
		return Reason(s)
	default:
		return ReasonIndustry
	}
}

// View is a map centre and zoom.
type View struct {
	Center model.LatLng `json:"center"`
	Zoom   int          `json:"zoom"`
}

var (
	// USView frames the contiguous United States.
	USView = View{Center: model.LatLng{Lat: 39.8, Lng: -98.5}, Zoom: 4}
	// NorthCarolinaView frames North Carolina.
	NorthCarolinaView = View{Center: model.LatLng{Lat: 35.5, Lng: -80}, Zoom: 6}
)

// Viewport tracks whether the user has taken control of the map.
type Viewport struct {
	UserMoved bool `json:"userMoved"`
}

// MarkMoved records a manual pan, zoom or county click.
func (v *Viewport) MarkMoved() { v.UserMoved = true }

// Recenter returns the view to apply after an update. Only industry-driven
// refreshes may re-centre, and never once the user has moved the map.
func (v Viewport) Recenter(reason Reason, industry string) (View, bool) {
	if reason != ReasonIndustry || v.UserMoved {
		return View{}, false
	}
	switch strings.ToLower(industry) {
	case "banking", "finance":
		return NorthCarolinaView, true
	default:
		return USView, true
	}
}
