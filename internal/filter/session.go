package filter

import (
	"encoding/json"
	"log"
)

// Session storage keys, used only to restore UI state across partial
// navigation.
const (
	KeyDashboardSearch     = "dashboard_search"
	KeyDashboardIndustries = "dashboard_industries"
	KeyCompaniesSearch     = "companies_search"
	KeyCompaniesRiskFilter = "companies_risk_filter"
)

// SessionStore is a string key-value store scoped to one browser tab.
type SessionStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// MemorySession is an in-memory SessionStore.
type MemorySession map[string]string

func (m MemorySession) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MemorySession) Set(key, value string) { m[key] = value }

// SaveDashboard remembers the dashboard search and selection.
func SaveDashboard(s SessionStore, st FilterState) {
	s.Set(KeyDashboardSearch, st.Search)
	b, err := json.Marshal(st.Industries)
	if err != nil {
		log.Printf("[filter] encode industries: %v", err)
		return
	}
	s.Set(KeyDashboardIndustries, string(b))
}

// RestoreDashboard reads back what SaveDashboard stored. ok is false when
// nothing was saved.
func RestoreDashboard(s SessionStore) (st FilterState, ok bool) {
	search, hasSearch := s.Get(KeyDashboardSearch)
	raw, hasInd := s.Get(KeyDashboardIndustries)
	if !hasSearch && !hasInd {
		return st, false
	}
	st.Search = search
	if hasInd && raw != "" {
		if err := json.Unmarshal([]byte(raw), &st.Industries); err != nil {
			log.Printf("[filter] decode %s: %v", KeyDashboardIndustries, err)
		}
	}
	if st.Search != "" {
		st.Industries = nil
	}
	return st, true
}

// SaveCompanies remembers the companies page search and risk filter.
func SaveCompanies(s SessionStore, search, risk string) {
	s.Set(KeyCompaniesSearch, search)
	s.Set(KeyCompaniesRiskFilter, risk)
}

func RestoreCompanies(s SessionStore) (search, risk string) {
	search, _ = s.Get(KeyCompaniesSearch)
	risk, _ = s.Get(KeyCompaniesRiskFilter)
	return search, risk
}
