// Package filter keeps the dashboard's search box, industry checkboxes and
// URL query string consistent with each other.
package filter

import (
	"net/url"
	"strings"
)

// DefaultIndustries are tracked for every user and cannot be deleted.
var DefaultIndustries = []string{
	"Healthcare", "Technology", "Energy", "Financials", "Industrials",
	"Real Estate", "Utilities", "Materials", "Biotech", "AI", "Mining",
}

// IsDefaultIndustry reports whether name is one of DefaultIndustries,
// ignoring case.
func IsDefaultIndustry(name string) bool {
	for _, d := range DefaultIndustries {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

// Policy decides the industry selection when the URL has no industries key.
type Policy string

const (
	SelectNone Policy = "none"
	SelectAll  Policy = "all"
)

// ParsePolicy defaults to SelectNone.
func ParsePolicy(s string) Policy {
	if Policy(strings.ToLower(s)) == SelectAll {
		return SelectAll
	}
	return SelectNone
}

// FilterState is the selection encoded in a dashboard URL. Search and
// Industries are never both non-empty. A nil Industries states no selection;
// an empty one is a selection of nothing.
type FilterState struct {
	Search     string   `json:"search,omitempty"`
	Industries []string `json:"industries"`
	Username   string   `json:"username,omitempty"`
}

// Parse reads search, industries (or industries[]) and username from v.
// Industries not in available are dropped when available is non-empty. A
// search clears the industry selection. policy applies only when neither
// industries key is present; an industries key with nothing valid in it
// parses to an empty selection.
func Parse(v url.Values, available []string, policy Policy) FilterState {
	st := FilterState{
		Search:   strings.TrimSpace(v.Get("search")),
		Username: v.Get("username"),
	}

	_, hasKey := v["industries"]
	_, hasBracket := v["industries[]"]
	raw := append(append([]string(nil), v["industries"]...), v["industries[]"]...)
	seen := map[string]bool{}
	for _, ind := range raw {
		ind = strings.TrimSpace(ind)
		if ind == "" || seen[ind] {
			continue
		}
		if len(available) > 0 && !contains(available, ind) {
			continue
		}
		seen[ind] = true
		st.Industries = append(st.Industries, ind)
	}

	if st.Search != "" {
		st.Industries = nil
		return st
	}
	switch {
	case hasKey || hasBracket:
		if st.Industries == nil {
			st.Industries = []string{}
		}
	case policy == SelectAll:
		st.Industries = append([]string(nil), available...)
	}
	return st
}

// Values encodes the state. Empty fields are omitted, except that a
// deliberately empty selection is kept as a bare industries= marker.
func (s FilterState) Values() url.Values {
	v := url.Values{}
	if s.Search != "" {
		v.Set("search", s.Search)
	}
	for _, ind := range s.Industries {
		v.Add("industries", ind)
	}
	if s.Search == "" && s.Industries != nil && len(s.Industries) == 0 {
		v.Set("industries", "")
	}
	if s.Username != "" {
		v.Set("username", s.Username)
	}
	return v
}

// Encode is the query string of the state.
func (s FilterState) Encode() string { return s.Values().Encode() }

// URL joins path and the encoded state.
func (s FilterState) URL(path string) string {
	q := s.Encode()
	if q == "" {
		return path
	}
	return path + "?" + q
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
