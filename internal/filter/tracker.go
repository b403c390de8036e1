package filter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

var (
	// ErrDuplicateIndustry matches any *DuplicateError.
	ErrDuplicateIndustry = errors.New("industry already tracked")
	// ErrDefaultIndustry is returned when deleting a default industry.
	ErrDefaultIndustry = errors.New("default industries cannot be deleted")
	// ErrNotConfirmed is returned when the user declines a deletion.
	ErrNotConfirmed = errors.New("deletion not confirmed")
)

// Error codes carried in the JSON body of failed add/delete responses.
const (
	CodeDuplicate       = "duplicate"
	CodeDefaultIndustry = "default_industry"
)

// DuplicateError names the tracked industry that a new one collides with.
type DuplicateError struct {
	Industry string
	Existing string
}

func (e *DuplicateError) Error() string {
	if strings.EqualFold(e.Industry, e.Existing) {
		return fmt.Sprintf("industry %q is already tracked", e.Existing)
	}
	return fmt.Sprintf("industry %q is too similar to tracked industry %q", e.Industry, e.Existing)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicateIndustry }

// Near reports whether the collision is a near match rather than the same
// name. Near matches may still be added on request.
func (e *DuplicateError) Near() bool { return !strings.EqualFold(e.Industry, e.Existing) }

// nearMatchMinLen keeps short names such as "AI" out of fuzzy matching.
const nearMatchMinLen = 5

// ExactIndustry finds the tracked industry equal to name, ignoring case.
func ExactIndustry(tracked []string, name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, t := range tracked {
		if strings.EqualFold(t, name) {
			return t, true
		}
	}
	return "", false
}

// MatchIndustry finds the tracked industry that name duplicates: an exact
// case-insensitive match, or for longer names one edit away.
func MatchIndustry(tracked []string, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if t, ok := ExactIndustry(tracked, name); ok {
		return t, true
	}
	if utf8.RuneCountInString(name) < nearMatchMinLen {
		return "", false
	}
	for _, t := range tracked {
		if utf8.RuneCountInString(t) < nearMatchMinLen {
			continue
		}
		if levenshtein.ComputeDistance(strings.ToLower(t), strings.ToLower(name)) <= 1 {
			return t, true
		}
	}
	return "", false
}

// Response is the JSON body of /add_industry and /delete_industry.
type Response struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
	Existing string `json:"existing,omitempty"`
	Near     bool   `json:"near,omitempty"`
}

// Tracker adds and deletes a user's tracked industries over HTTP.
type Tracker struct {
	BaseURL  string
	Username string
	HTTP     *http.Client
}

func NewTracker(baseURL, username string) *Tracker {
	return &Tracker{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		Username: username,
		HTTP:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Add tracks industry. A duplicate of one of tracked is reported locally as
// a *DuplicateError without contacting the server; the server's own
// duplicate response maps to the same error.
func (t *Tracker) Add(ctx context.Context, industry string, tracked []string) error {
	industry = strings.TrimSpace(industry)
	if industry == "" {
		return errors.New("industry name is required")
	}
	if existing, ok := MatchIndustry(tracked, industry); ok {
		return &DuplicateError{Industry: industry, Existing: existing}
	}
	_, err := t.post(ctx, "/add_industry", url.Values{"industry": {industry}})
	return err
}

// AddAnyway tracks industry even when it is a near match of a tracked one.
// Exact duplicates are still rejected.
func (t *Tracker) AddAnyway(ctx context.Context, industry string, tracked []string) error {
	industry = strings.TrimSpace(industry)
	if industry == "" {
		return errors.New("industry name is required")
	}
	if existing, ok := ExactIndustry(tracked, industry); ok {
		return &DuplicateError{Industry: industry, Existing: existing}
	}
	_, err := t.post(ctx, "/add_industry", url.Values{"industry": {industry}, "force": {"true"}})
	return err
}

// Delete untracks industry once confirm approves it.
func (t *Tracker) Delete(ctx context.Context, industry string, confirm func(industry string) bool) error {
	if IsDefaultIndustry(industry) {
		return ErrDefaultIndustry
	}
	if confirm == nil || !confirm(industry) {
		return ErrNotConfirmed
	}
	_, err := t.post(ctx, "/delete_industry", url.Values{"industry": {industry}})
	return err
}

func (t *Tracker) post(ctx context.Context, path string, form url.Values) (*Response, error) {
	endpoint := t.BaseURL + path
	if t.Username != "" {
		endpoint += "?" + url.Values{"username": {t.Username}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := t.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", path, err)
	}
	defer resp.Body.Close()

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s returned HTTP %d: %w", path, resp.StatusCode, err)
	}
	if body.Success {
		return &body, nil
	}
	switch {
	case resp.StatusCode == http.StatusConflict || body.Code == CodeDuplicate:
		return nil, &DuplicateError{Industry: form.Get("industry"), Existing: body.Existing}
	case body.Code == CodeDefaultIndustry:
		return nil, ErrDefaultIndustry
	case body.Error != "":
		return nil, errors.New(body.Error)
	default:
		return nil, fmt.Errorf("%s returned HTTP %d", path, resp.StatusCode)
	}
}
