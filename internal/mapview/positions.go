package mapview

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/golang/geo/s2"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
)

var errEmptyGeometry = errors.New("geometry has no coordinates")

// BoundsOf returns the lat/lng bounding rectangle of a Polygon or
// MultiPolygon geometry.
func BoundsOf(g *model.Geometry) (s2.Rect, error) {
	if g == nil {
		return s2.EmptyRect(), errEmptyGeometry
	}
	rect := s2.EmptyRect()
	addRing := func(ring [][]float64) {
		for _, pt := range ring {
			if len(pt) < 2 {
				continue
			}
			rect = rect.AddPoint(s2.LatLngFromDegrees(pt[1], pt[0]))
		}
	}

	switch g.Type {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return rect, fmt.Errorf("decode polygon: %w", err)
		}
		for _, ring := range rings {
			addRing(ring)
		}
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return rect, fmt.Errorf("decode multipolygon: %w", err)
		}
		for _, rings := range polys {
			for _, ring := range rings {
				addRing(ring)
			}
		}
	default:
		return rect, fmt.Errorf("unsupported geometry type %q", g.Type)
	}

	if rect.IsEmpty() {
		return rect, errEmptyGeometry
	}
	return rect, nil
}

// BoundsArray converts a rectangle to Leaflet's [[south, west], [north, east]].
func BoundsArray(r s2.Rect) [2][2]float64 {
	lo, hi := r.Lo(), r.Hi()
	return [2][2]float64{
		{lo.Lat.Degrees(), lo.Lng.Degrees()},
		{hi.Lat.Degrees(), hi.Lng.Degrees()},
	}
}

func centerOf(r s2.Rect) model.LatLng {
	c := r.Center()
	return model.LatLng{Lat: c.Lat.Degrees(), Lng: c.Lng.Degrees()}
}

// Positions caches the marker anchor of each county so repeated renders do
// not recompute it. It is safe for concurrent use.
type Positions struct {
	mu       sync.RWMutex
	byKey    map[string]model.LatLng
	computed int
}

func NewPositions() *Positions {
	return &Positions{byKey: map[string]model.LatLng{}}
}

func (p *Positions) Get(key string) (model.LatLng, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ll, ok := p.byKey[key]
	return ll, ok
}

func (p *Positions) Set(key string, ll model.LatLng) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byKey[key] = ll
}

// Resolve returns the cached position of key, computing it from the
// centre of rect on first use.
func (p *Positions) Resolve(key string, rect s2.Rect) model.LatLng {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ll, ok := p.byKey[key]; ok {
		return ll
	}
	ll := centerOf(rect)
	p.byKey[key] = ll
	p.computed++
	return ll
}

// Computed reports how many positions were derived from geometry.
func (p *Positions) Computed() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.computed
}

func (p *Positions) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byKey)
}
