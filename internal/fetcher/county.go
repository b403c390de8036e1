package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
)

// ErrUnreachable is returned when the county backend cannot be contacted.
var ErrUnreachable = errors.New("county backend unreachable")

// StatusError reports a non-OK HTTP status from the county backend.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Endpoint, e.Code)
}

// APIError is a well-formed response with success=false.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "county data request failed"
	}
	return e.Message
}

// CountyQuery carries the map filters sent to /api/county_data.
type CountyQuery struct {
	Industry    string
	Metric      string
	ClientTypes model.ClientTypes
}

// Values encodes the query. client_type is repeated and omitted when empty.
func (q CountyQuery) Values() url.Values {
	v := url.Values{}
	v.Set("industry", q.Industry)
	v.Set("metric", q.Metric)
	for _, ct := range q.ClientTypes {
		v.Add("client_type", string(ct))
	}
	return v
}

// CountyResponse is the /api/county_data payload.
type CountyResponse struct {
	Success  bool             `json:"success"`
	Counties model.CountyData `json:"counties"`
	Message  string           `json:"message,omitempty"`
}

// CountyClient talks to the backend that serves live county data.
type CountyClient struct {
	BaseURL     string
	HTTP        *http.Client
	PingTimeout time.Duration
}

// NewCountyClient creates a client rooted at baseURL.
func NewCountyClient(baseURL string, pingTimeout time.Duration) *CountyClient {
	return &CountyClient{
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		HTTP:        &http.Client{Timeout: 15 * time.Second},
		PingTimeout: pingTimeout,
	}
}

// Ping checks /api/ping. A transport failure wraps ErrUnreachable; a non-OK
// status is a *StatusError.
func (c *CountyClient) Ping(ctx context.Context) error {
	if c.PingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.PingTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/ping", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: "/api/ping", Code: resp.StatusCode}
	}
	return nil
}

// CountyData fetches /api/county_data for q.
func (c *CountyClient) CountyData(ctx context.Context, q CountyQuery) (model.CountyData, error) {
	endpoint := c.BaseURL + "/api/county_data?" + q.Values().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	var payload CountyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &StatusError{Endpoint: "/api/county_data", Code: resp.StatusCode}
		}
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if !payload.Success {
		return nil, &APIError{Message: payload.Message}
	}
	if payload.Counties == nil {
		payload.Counties = model.CountyData{}
	}
	return payload.Counties, nil
}
