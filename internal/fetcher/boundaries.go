package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/simulate"
)

// DefaultBoundariesURL is the public US county boundary dataset.
const DefaultBoundariesURL = "https://raw.githubusercontent.com/plotly/datasets/master/geojson-counties-fips.json"

const userAgent = "riskmap-dashboard/1.0 (github.com/Zachdehooge/riskmap-dashboard)"

// Boundaries is the boundary set the map renders, plus whether it came from
// the hand-placed fallback.
type Boundaries struct {
	Collection *model.FeatureCollection
	Fallback   bool
}

// FetchBoundaries downloads and decodes the county GeoJSON dataset at url.
// Transient failures are retried up to retries times.
func FetchBoundaries(ctx context.Context, client *http.Client, url string, retries uint64) (*model.FeatureCollection, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	var fc *model.FeatureCollection
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/geo+json, application/json")

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("HTTP GET failed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read body failed: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("boundary dataset returned HTTP %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		var decoded model.FeatureCollection
		if err := json.Unmarshal(body, &decoded); err != nil {
			return backoff.Permanent(fmt.Errorf("JSON decode failed: %w", err))
		}
		fc = &decoded
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return fc, nil
}

// LoadBoundaries fetches the boundary dataset and, if it cannot be fetched
// at all, falls back to the hand-placed squares so the map is never empty.
func LoadBoundaries(ctx context.Context, client *http.Client, url string, retries uint64) (Boundaries, error) {
	fc, err := FetchBoundaries(ctx, client, url, retries)
	if err == nil {
		log.Printf("[fetcher] loaded %d county boundaries", len(fc.Features))
		return Boundaries{Collection: fc}, nil
	}
	log.Printf("[fetcher] boundary dataset unavailable, using fallback counties: %v", err)

	fallback, ferr := simulate.FallbackBoundaries()
	if ferr != nil {
		return Boundaries{}, fmt.Errorf("build fallback boundaries: %w", ferr)
	}
	return Boundaries{Collection: fallback, Fallback: true}, nil
}
