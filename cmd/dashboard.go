package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/Zachdehooge/riskmap-dashboard/internal/filter"
)

var (
	dashToggle  []string
	dashAll     bool
	dashNone    bool
	dashSearch  string
	dashAdd     string
	sessionFile string
	dashOutput  string
)

// addDashboardCmd adds a 'dashboard' subcommand driving the filters of a
// running dashboard the way the browser does
func addDashboardCmd(rootCmd *cobra.Command) {
	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Apply dashboard filters against a running server",
		Long: `Dashboard opens the dashboard of a running server, restoring the last
selection from --session, applies the requested changes in order (select
all or none, toggles, a new industry, a search) and prints the resulting
URL and selection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := loadSession(sessionFile)
			if err != nil {
				return err
			}
			d := newDashboardClient(serverURL, username, session, cmdLoader{cmd})

			ctx := cmd.Context()
			if err := d.open(ctx); err != nil {
				return fmt.Errorf("failed to open dashboard: %w", err)
			}
			if err := applyDashboardFlags(ctx, d, func(dup *filter.DuplicateError) filter.DuplicateChoice {
				cmd.PrintErrln(dup.Error())
				return filter.UseExisting
			}); err != nil {
				return err
			}

			page := d.router.Current()
			cmd.Println(fmt.Sprintf("URL: %s", page.URL))
			st := d.view().State()
			switch {
			case st.Search != "":
				cmd.Println(fmt.Sprintf("Search: %s", st.Search))
			case len(st.Industries) == 0:
				cmd.Println("Industries: none")
			default:
				cmd.Println(fmt.Sprintf("Industries: %s", strings.Join(st.Industries, ", ")))
			}

			if dashOutput != "" {
				if err := atomic.WriteFile(dashOutput, strings.NewReader(page.HTML)); err != nil {
					return fmt.Errorf("failed to write %s: %w", dashOutput, err)
				}
				cmd.Println(fmt.Sprintf("Page saved to %s", dashOutput))
			}
			if sessionFile != "" {
				if err := session.save(); err != nil {
					return fmt.Errorf("failed to save session: %w", err)
				}
			}
			return nil
		},
	}

	dashboardCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Dashboard base URL")
	dashboardCmd.Flags().StringVarP(&username, "username", "u", "", "Dashboard username")
	dashboardCmd.Flags().BoolVar(&dashAll, "all", false, "Select every industry")
	dashboardCmd.Flags().BoolVar(&dashNone, "none", false, "Clear the industry selection")
	dashboardCmd.Flags().StringSliceVarP(&dashToggle, "toggle", "t", nil, "Industries to toggle, in order")
	dashboardCmd.Flags().StringVar(&dashAdd, "add", "", "Track a new industry and select only it")
	dashboardCmd.Flags().StringVarP(&dashSearch, "search", "s", "", "Search companies instead of filtering by industry")
	dashboardCmd.Flags().StringVar(&sessionFile, "session", "", "JSON file keeping the selection between runs")
	dashboardCmd.Flags().StringVarP(&dashOutput, "output", "o", "", "Write the dashboard fragment to this file")

	rootCmd.AddCommand(dashboardCmd)
}

// applyDashboardFlags runs the flag actions against the current view. Each
// action navigates, which attaches a fresh view.
func applyDashboardFlags(ctx context.Context, d *dashboardClient, choose func(*filter.DuplicateError) filter.DuplicateChoice) error {
	if dashAll && dashNone {
		return errors.New("--all and --none are exclusive")
	}
	if dashAll || dashNone {
		if err := d.view().SelectAll(ctx, dashAll); err != nil {
			return err
		}
	}
	for _, ind := range dashToggle {
		if err := d.view().Toggle(ctx, strings.TrimSpace(ind)); err != nil {
			return err
		}
	}
	if dashAdd != "" {
		if err := d.view().AddIndustry(ctx, dashAdd, choose); err != nil {
			return fmt.Errorf("failed to add industry: %w", err)
		}
	}
	if q := strings.TrimSpace(dashSearch); q != "" {
		v := d.view()
		v.Type(ctx, q)
		if err := v.Submit(ctx); err != nil {
			return err
		}
	}
	return nil
}

// dashboardClient pairs a Router with the Synchronizer attached to the
// dashboard page it last loaded.
type dashboardClient struct {
	username string
	router   *filter.Router
	session  filter.SessionStore
	tracker  *filter.Tracker

	mu      sync.Mutex
	current *filter.Synchronizer
	names   []string
}

func newDashboardClient(baseURL, user string, session filter.SessionStore, loader filter.Loader) *dashboardClient {
	d := &dashboardClient{
		username: user,
		session:  session,
		tracker:  filter.NewTracker(baseURL, user),
	}
	d.router = filter.NewRouter(baseURL, map[string]filter.Initializer{"dashboard": d.attach})
	d.router.Loader = loader
	d.router.Industry = d.industries
	return d
}

// open navigates to the saved selection, or the bare dashboard.
func (d *dashboardClient) open(ctx context.Context) error {
	st, ok := filter.RestoreDashboard(d.session)
	if !ok {
		st = filter.FilterState{}
	}
	st.Username = d.username
	return d.router.Navigate(ctx, st.URL("/dashboard"))
}

func (d *dashboardClient) industries() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.names
}

func (d *dashboardClient) view() *filter.Synchronizer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// attach binds a Synchronizer to the checkboxes the server rendered.
func (d *dashboardClient) attach(p *filter.Page) filter.View {
	names, checked := checkboxesIn(p.HTML)
	st := p.State
	st.Username = d.username
	if st.Search == "" {
		st.Industries = checked
	}
	s := filter.NewSynchronizer(p.Route.Path, names, st, d.router, filter.DefaultDebounce)
	s.Tracker = d.tracker
	s.Session = d.session
	filter.SaveDashboard(d.session, s.State())

	d.mu.Lock()
	d.current = s
	d.names = names
	d.mu.Unlock()
	return s
}

var checkboxPattern = regexp.MustCompile(`class="industry-checkbox" value="([^"]*)"\s*(checked)?`)

// checkboxesIn lists the industry checkboxes of a dashboard fragment and
// the checked ones, both in page order.
func checkboxesIn(fragment string) (names, checked []string) {
	checked = []string{}
	for _, m := range checkboxPattern.FindAllStringSubmatch(fragment, -1) {
		name := html.UnescapeString(m[1])
		names = append(names, name)
		if m[2] != "" {
			checked = append(checked, name)
		}
	}
	return names, checked
}

// fileSession is a SessionStore persisted as a JSON object.
type fileSession struct {
	path   string
	values filter.MemorySession
}

func loadSession(path string) (*fileSession, error) {
	s := &fileSession{path: path, values: filter.MemorySession{}}
	if path == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", path, err)
	}
	if err := json.Unmarshal(b, &s.values); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", path, err)
	}
	if s.values == nil {
		s.values = filter.MemorySession{}
	}
	return s, nil
}

func (s *fileSession) Get(key string) (string, bool) { return s.values.Get(key) }
func (s *fileSession) Set(key, value string)         { s.values.Set(key, value) }

func (s *fileSession) save() error {
	b, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(s.path, bytes.NewReader(b))
}

// cmdLoader reports navigation in verbose mode.
type cmdLoader struct{ cmd *cobra.Command }

func (l cmdLoader) ShowLoading() {
	if verbose {
		l.cmd.PrintErrln("Loading...")
	}
}

func (l cmdLoader) HideLoading() {}
