package simulate

import (
	"encoding/json"
	"fmt"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
)

// FallbackCounty is a hand-placed county used when the boundary dataset
// cannot be fetched.
type FallbackCounty struct {
	Name   string
	State  string
	Center model.LatLng
	Size   float64 // half-width of the square, in degrees
}

// FallbackCounties keeps the map populated without the boundary dataset.
var FallbackCounties = []FallbackCounty{
	{Name: "New Hanover", State: northCarolina, Center: model.LatLng{Lat: 34.2104, Lng: -77.8868}, Size: 0.2},
	{Name: "Mecklenburg", State: northCarolina, Center: model.LatLng{Lat: 35.2468, Lng: -80.8325}, Size: 0.2},
	{Name: "Wake", State: northCarolina, Center: model.LatLng{Lat: 35.7847, Lng: -78.6427}, Size: 0.2},
	{Name: "Durham", State: northCarolina, Center: model.LatLng{Lat: 35.9931, Lng: -78.8986}, Size: 0.2},
	{Name: "Orange", State: northCarolina, Center: model.LatLng{Lat: 36.0613, Lng: -79.1205}, Size: 0.2},
	{Name: "Guilford", State: northCarolina, Center: model.LatLng{Lat: 36.0726, Lng: -79.7920}, Size: 0.2},
	{Name: "Forsyth", State: northCarolina, Center: model.LatLng{Lat: 36.1284, Lng: -80.2073}, Size: 0.2},
	{Name: "Los Angeles", State: "California", Center: model.LatLng{Lat: 34.0522, Lng: -118.2437}, Size: 0.3},
	{Name: "Cook", State: "Illinois", Center: model.LatLng{Lat: 41.8781, Lng: -87.6298}, Size: 0.3},
	{Name: "Harris", State: "Texas", Center: model.LatLng{Lat: 29.7604, Lng: -95.3698}, Size: 0.3},
	{Name: "Maricopa", State: "Arizona", Center: model.LatLng{Lat: 33.4484, Lng: -112.0740}, Size: 0.3},
	{Name: "Kings", State: "New York", Center: model.LatLng{Lat: 40.6782, Lng: -73.9442}, Size: 0.3},
}

// FallbackBoundaries builds square polygons for FallbackCounties. Each
// feature carries the real state FIPS code so its key matches the data.
func FallbackBoundaries() (*model.FeatureCollection, error) {
	fc := &model.FeatureCollection{Type: "FeatureCollection"}
	for _, c := range FallbackCounties {
		lat, lng, d := c.Center.Lat, c.Center.Lng, c.Size
		ring := [][][2]float64{{
			{lng - d, lat - d},
			{lng + d, lat - d},
			{lng + d, lat + d},
			{lng - d, lat + d},
			{lng - d, lat - d},
		}}
		coords, err := json.Marshal(ring)
		if err != nil {
			return nil, fmt.Errorf("encode fallback polygon for %s: %w", c.Name, err)
		}
		fc.Features = append(fc.Features, model.Feature{
			Type: "Feature",
			Properties: model.FeatureProperties{
				Name:   c.Name,
				State:  FIPSFromState(c.State),
				County: "000",
			},
			Geometry: &model.Geometry{Type: "Polygon", Coordinates: coords},
		})
	}
	return fc, nil
}

// Fallback simulates data for every fallback county into data and returns
// the preset marker positions of those counties.
func (s *Simulator) Fallback(data model.CountyData) map[string]model.LatLng {
	positions := make(map[string]model.LatLng, len(FallbackCounties))
	for _, c := range FallbackCounties {
		key := model.CountyKey(c.Name, c.State)
		data[key] = s.County(c.Name, c.State, s.smallCount())
		positions[key] = c.Center
	}
	return positions
}
