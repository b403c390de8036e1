package filter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Route binds a page path to the container swapped on partial navigation
// and the initializer re-run against the new content.
type Route struct {
	Path        string   `json:"path"`
	Title       string   `json:"title"`
	Container   string   `json:"container"`
	Init        string   `json:"init"`
	SessionKeys []string `json:"sessionKeys,omitempty"`
}

// Routes is the page table shared by the server and the browser router.
var Routes = []Route{
	{Path: "/dashboard", Title: "Dashboard", Container: "#main-content", Init: "dashboard",
		SessionKeys: []string{KeyDashboardSearch, KeyDashboardIndustries}},
	{Path: "/companies", Title: "Companies", Container: "#main-content", Init: "companies",
		SessionKeys: []string{KeyCompaniesSearch, KeyCompaniesRiskFilter}},
	{Path: "/company_profiles", Title: "Company Profiles", Container: "#main-content", Init: "company_profiles"},
	{Path: "/geoheatmap", Title: "Risk Map", Container: "#main-content", Init: "geoheatmap"},
}

// LookupRoute finds the route of path.
func LookupRoute(path string) (Route, bool) {
	path = strings.TrimSuffix(path, "/")
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Page is the content currently swapped into a route's container.
type Page struct {
	URL   string
	Route Route
	HTML  string
	State FilterState
}

// View is whatever an initializer attached to a page.
type View interface {
	Detach()
}

// Initializer attaches behaviour to freshly swapped content.
type Initializer func(p *Page) View

// Loader shows the loading overlay while a request is in flight.
type Loader interface {
	ShowLoading()
	HideLoading()
}

// Navigator moves the UI to another URL.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// Router performs partial navigation: it fetches the target with ajax=true,
// swaps the content, records history and re-runs the route's initializer.
// Only one View is attached at a time.
type Router struct {
	BaseURL  string
	HTTP     *http.Client
	Inits    map[string]Initializer
	Loader   Loader
	Policy   Policy
	Industry func() []string

	mu      sync.Mutex
	current *Page
	view    View
	history []string
}

func NewRouter(baseURL string, inits map[string]Initializer) *Router {
	return &Router{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Inits:   inits,
		Policy:  SelectNone,
	}
}

// Navigate implements Navigator.
func (r *Router) Navigate(ctx context.Context, target string) error {
	if r.Loader != nil {
		r.Loader.ShowLoading()
		defer r.Loader.HideLoading()
	}

	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid navigation target %q: %w", target, err)
	}
	route, ok := LookupRoute(u.Path)
	if !ok {
		return fmt.Errorf("no route for %s", u.Path)
	}

	q := u.Query()
	q.Set("ajax", "true")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+u.Path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := r.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", u.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned HTTP %d", u.Path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", u.Path, err)
	}

	var available []string
	if r.Industry != nil {
		available = r.Industry()
	}
	page := &Page{
		URL:   target,
		Route: route,
		HTML:  string(body),
		State: Parse(u.Query(), available, r.Policy),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.view != nil {
		r.view.Detach()
		r.view = nil
	}
	r.current = page
	r.history = append(r.history, target)
	if init := r.Inits[route.Init]; init != nil {
		r.view = init(page)
	}
	return nil
}

// Current is the page last navigated to.
func (r *Router) Current() *Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History lists every URL navigated to, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}
