package model

import "encoding/json"

// FeatureCollection is the county boundary dataset.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single county boundary.
type Feature struct {
	Type       string            `json:"type"`
	ID         string            `json:"id,omitempty"`
	Properties FeatureProperties `json:"properties"`
	Geometry   *Geometry         `json:"geometry"`
}

// FeatureProperties mirrors the census county properties the map relies on.
type FeatureProperties struct {
	Name   string `json:"NAME"`
	State  string `json:"STATE"`
	County string `json:"COUNTY"`
}

// Geometry mirrors the GeoJSON geometry object the frontend expects.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// LatLng is a point in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
