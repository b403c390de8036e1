// Package config loads the dashboard configuration from a YAML file and
// environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Zachdehooge/riskmap-dashboard/internal/blob"
	"github.com/Zachdehooge/riskmap-dashboard/internal/fetcher"
	"github.com/Zachdehooge/riskmap-dashboard/internal/filter"
	"github.com/Zachdehooge/riskmap-dashboard/internal/mapview"
	"github.com/Zachdehooge/riskmap-dashboard/internal/simulate"
	"github.com/Zachdehooge/riskmap-dashboard/internal/store"
)

// MinAlertInterval is the lowest accepted alert check interval.
const MinAlertInterval = 30 * time.Second

// Config is the full dashboard configuration.
type Config struct {
	Addr         string        `yaml:"addr"`
	GeoJSONURL   string        `yaml:"geojson_url"`
	CountyAPIURL string        `yaml:"county_api_url"`
	PingTimeout  time.Duration `yaml:"ping_timeout"`
	Seed         int64         `yaml:"seed"`

	Store StoreConfig `yaml:"store"`
	Blob  BlobConfig  `yaml:"blob"`

	Filter   FilterConfig   `yaml:"filter"`
	Map      MapConfig      `yaml:"map"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Sessions SessionsConfig `yaml:"sessions"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type BlobConfig struct {
	Driver   string `yaml:"driver"`
	Dir      string `yaml:"dir"`
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// FilterConfig controls the dashboard filter controls.
type FilterConfig struct {
	// DefaultSelection applies when a page is opened with no filter.
	DefaultSelection string        `yaml:"default_selection"`
	Debounce         time.Duration `yaml:"debounce"`
}

type MapConfig struct {
	CoverageThreshold float64 `yaml:"coverage_threshold"`
	SampleSize        int     `yaml:"sample_size"`
	PerStateFill      int     `yaml:"per_state_fill"`
	BoundaryRetries   uint64  `yaml:"boundary_retries"`
}

type AlertsConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// SessionsConfig bounds the per-browser map state kept in memory.
type SessionsConfig struct {
	Max int `yaml:"max"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:        ":8080",
		GeoJSONURL:  fetcher.DefaultBoundariesURL,
		PingTimeout: 3 * time.Second,
		Seed:        42,
		Store:       StoreConfig{Driver: store.DriverSQLite, DSN: "riskmap.db"},
		Blob:        BlobConfig{Driver: blob.DriverFilesystem, Dir: "blobdata"},
		Filter:      FilterConfig{DefaultSelection: string(filter.SelectNone), Debounce: filter.DefaultDebounce},
		Map: MapConfig{
			CoverageThreshold: mapview.DefaultCoverageThreshold,
			SampleSize:        simulate.DefaultSampleSize,
			PerStateFill:      simulate.DefaultPerStateFill,
			BoundaryRetries:   3,
		},
		Alerts:   AlertsConfig{Interval: 5 * time.Minute},
		Sessions: SessionsConfig{Max: 256},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path skips the file; a missing file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := Decode(bytes.NewReader(raw), &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Decode merges YAML from r into cfg. Unknown keys are rejected.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides cfg from RISKMAP_* variables read through lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"RISKMAP_ADDR":              &cfg.Addr,
		"RISKMAP_GEOJSON_URL":       &cfg.GeoJSONURL,
		"RISKMAP_COUNTY_API_URL":    &cfg.CountyAPIURL,
		"RISKMAP_DB_DRIVER":         &cfg.Store.Driver,
		"RISKMAP_DB_DSN":            &cfg.Store.DSN,
		"RISKMAP_BLOB_DRIVER":       &cfg.Blob.Driver,
		"RISKMAP_BLOB_DIR":          &cfg.Blob.Dir,
		"RISKMAP_BLOB_S3_BUCKET":    &cfg.Blob.Bucket,
		"RISKMAP_BLOB_S3_REGION":    &cfg.Blob.Region,
		"RISKMAP_BLOB_S3_ENDPOINT":  &cfg.Blob.Endpoint,
		"RISKMAP_DEFAULT_SELECTION": &cfg.Filter.DefaultSelection,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	if v, ok := lookup("RISKMAP_ALERT_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RISKMAP_ALERT_INTERVAL: %w", err)
		}
		cfg.Alerts.Interval = d
	}
	if v, ok := lookup("RISKMAP_SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("RISKMAP_SEED: %w", err)
		}
		cfg.Seed = n
	}
	return nil
}

// Validate checks enumerated values and clamps the alert interval.
func (c *Config) Validate() error {
	switch filter.Policy(strings.ToLower(c.Filter.DefaultSelection)) {
	case "", filter.SelectNone, filter.SelectAll:
	default:
		return fmt.Errorf("default_selection must be %q or %q", filter.SelectNone, filter.SelectAll)
	}
	switch strings.ToLower(c.Store.Driver) {
	case store.DriverSQLite, store.DriverPostgres, "pgx":
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}
	switch strings.ToLower(c.Blob.Driver) {
	case "", blob.DriverFilesystem:
	case blob.DriverS3:
		if c.Blob.Bucket == "" {
			return errors.New("blob driver s3 needs a bucket")
		}
	default:
		return fmt.Errorf("unsupported blob driver %q", c.Blob.Driver)
	}
	if c.Map.CoverageThreshold < 0 || c.Map.CoverageThreshold > 1 {
		return fmt.Errorf("coverage_threshold %v outside [0,1]", c.Map.CoverageThreshold)
	}
	if c.Alerts.Interval < MinAlertInterval {
		c.Alerts.Interval = MinAlertInterval
	}
	if c.Sessions.Max <= 0 {
		c.Sessions.Max = Default().Sessions.Max
	}
	return nil
}

// BlobStore converts the blob section to a blob.Config.
func (c Config) BlobStore() blob.Config {
	return blob.Config{
		Driver:   c.Blob.Driver,
		Dir:      c.Blob.Dir,
		Bucket:   c.Blob.Bucket,
		Region:   c.Blob.Region,
		Endpoint: c.Blob.Endpoint,
	}
}
