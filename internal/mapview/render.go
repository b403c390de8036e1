package mapview

import (
	"fmt"
	"html/template"
	"log"
	"math/rand"
	"sort"
	"strings"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/simulate"
)

// JitterSpan is the full width, in degrees, of the random marker offset.
const JitterSpan = 0.1

// StyledFeature is the rendering decision for one boundary feature. Index
// refers to the feature's position in the boundary collection.
type StyledFeature struct {
	Index   int           `json:"index"`
	Key     string        `json:"key"`
	Style   Style         `json:"style"`
	Hover   Style         `json:"hover"`
	Bounds  [2][2]float64 `json:"bounds"`
	Tooltip Tooltip       `json:"tooltip"`
	HasData bool          `json:"hasData"`
}

// Marker is one company pin.
type Marker struct {
	Key        string           `json:"key"`
	Position   model.LatLng     `json:"position"`
	Color      string           `json:"color"`
	ClientType model.ClientType `json:"clientType"`
	Popup      template.HTML    `json:"popup"`
}

// Layer is a complete render pass.
type Layer struct {
	Features []StyledFeature `json:"features"`
	Markers  []Marker        `json:"markers"`
	Total    int             `json:"total"`
	WithData int             `json:"withData"`
}

// Coverage is the fraction of rendered boundaries that have data.
func (l Layer) Coverage() float64 {
	if l.Total == 0 {
		return 0
	}
	return float64(l.WithData) / float64(l.Total)
}

// Renderer turns boundaries and county data into a Layer.
type Renderer struct {
	Positions   *Positions
	Rand        *rand.Rand
	ClientTypes model.ClientTypes
}

// Render styles every feature, resolves marker anchors for counties with
// data and places a jittered marker for each company of an allowed client
// type.
func (r *Renderer) Render(fc *model.FeatureCollection, data model.CountyData) Layer {
	var layer Layer
	if fc == nil {
		return layer
	}
	layer.Features = make([]StyledFeature, 0, len(fc.Features))

	for i, f := range fc.Features {
		layer.Total++
		county := f.Properties.Name
		state := simulate.StateFromFIPS(f.Properties.State)
		key := model.CountyKey(county, state)
		metrics := data[key]

		sf := StyledFeature{
			Index:   i,
			Key:     key,
			Style:   CountyStyle(metrics),
			Tooltip: TooltipFor(county, state, metrics),
			HasData: metrics != nil,
		}
		sf.Hover = sf.Style.Hover()

		rect, err := BoundsOf(f.Geometry)
		if err == nil {
			sf.Bounds = BoundsArray(rect)
		}
		if metrics != nil {
			layer.WithData++
			if err == nil {
				r.Positions.Resolve(key, rect)
			} else if _, ok := r.Positions.Get(key); !ok {
				log.Printf("[mapview] no position for %s: %v", key, err)
			}
			layer.Markers = append(layer.Markers, r.markers(key, metrics)...)
		}
		layer.Features = append(layer.Features, sf)
	}
	return layer
}

// markers orders the county's companies high risk first and drops client
// types outside the filter.
func (r *Renderer) markers(key string, m *model.CountyMetric) []Marker {
	if len(m.Companies) == 0 {
		return nil
	}
	pos, ok := r.Positions.Get(key)
	if !ok {
		return nil
	}

	companies := append([]model.Company(nil), m.Companies...)
	sort.SliceStable(companies, func(i, j int) bool {
		return companies[i].RiskLevel.Rank() < companies[j].RiskLevel.Rank()
	})

	out := make([]Marker, 0, len(companies))
	for _, c := range companies {
		ct := c.ClientType()
		if !r.ClientTypes.Has(ct) {
			continue
		}
		out = append(out, Marker{
			Key:        key,
			Position:   r.jitter(pos),
			Color:      ClientColor(ct),
			ClientType: ct,
			Popup:      Popup(c),
		})
	}
	return out
}

func (r *Renderer) jitter(p model.LatLng) model.LatLng {
	return model.LatLng{
		Lat: p.Lat + (r.Rand.Float64()*JitterSpan - JitterSpan/2),
		Lng: p.Lng + (r.Rand.Float64()*JitterSpan - JitterSpan/2),
	}
}

var popupTemplate = template.Must(template.New("popup").Parse(`<div class="company-popup">
<h3>{{ .Name }}</h3>
<p><strong>Industry:</strong> {{ .Industry }}</p>
<p><strong>Risk Level:</strong> <span style="color: {{ .Color }}; font-weight: bold;">{{ .Risk }}</span></p>
<p><strong>Client Status:</strong> {{ .Status }}</p>
</div>`))

// Popup renders the marker popup of a company.
func Popup(c model.Company) template.HTML {
	status := "Potential Client"
	if c.IsClient {
		status = "Current Client"
	}
	var b strings.Builder
	err := popupTemplate.Execute(&b, struct {
		Name, Industry, Risk, Status string
		Color                        template.CSS
	}{
		Name:     c.Name,
		Industry: c.Industry,
		Risk:     strings.ToUpper(string(c.RiskLevel)),
		Status:   status,
		Color:    template.CSS(RiskColor(c.RiskLevel)),
	})
	if err != nil {
		return template.HTML(template.HTMLEscapeString(fmt.Sprintf("%s (%s)", c.Name, c.Industry)))
	}
	return template.HTML(b.String())
}
