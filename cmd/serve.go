package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Zachdehooge/riskmap-dashboard/internal/alerts"
	"github.com/Zachdehooge/riskmap-dashboard/internal/blob"
	"github.com/Zachdehooge/riskmap-dashboard/internal/config"
	"github.com/Zachdehooge/riskmap-dashboard/internal/fetcher"
	"github.com/Zachdehooge/riskmap-dashboard/internal/filter"
	"github.com/Zachdehooge/riskmap-dashboard/internal/mapview"
	"github.com/Zachdehooge/riskmap-dashboard/internal/metrics"
	"github.com/Zachdehooge/riskmap-dashboard/internal/report"
	"github.com/Zachdehooge/riskmap-dashboard/internal/server"
	"github.com/Zachdehooge/riskmap-dashboard/internal/simulate"
)

var timeNow = time.Now

// addServeCmd adds an explicit 'serve' subcommand; the root command serves
// too.
func addServeCmd(rootCmd *cobra.Command) {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and run the alert checker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides the config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	bs, err := blob.Open(ctx, cfg.BlobStore())
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}

	if verbose {
		cmd.Println("Loading county boundaries...")
	}
	b, err := loadBoundaries(ctx, cfg)
	if err != nil {
		return err
	}

	var source mapview.CountySource
	if cfg.CountyAPIURL != "" {
		source = fetcher.NewCountyClient(cfg.CountyAPIURL, cfg.PingTimeout)
	}

	m := metrics.New()
	srv, err := server.New(server.Options{
		Policy:            filter.ParsePolicy(cfg.Filter.DefaultSelection),
		Seed:              cfg.Seed,
		CoverageThreshold: cfg.Map.CoverageThreshold,
		SampleSize:        cfg.Map.SampleSize,
		PerStateFill:      cfg.Map.PerStateFill,
		MaxSessions:       cfg.Sessions.Max,
		Debounce:          cfg.Filter.Debounce,
		CountySource:      source,
	}, server.Deps{
		Store:      st,
		Reports:    &report.Generator{Companies: st, Records: st, Blob: bs, Metrics: m},
		Metrics:    m,
		Boundaries: b,
	})
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}
	checker := alerts.NewChecker(st, m, cfg.Alerts.Interval)

	cmd.Println(fmt.Sprintf("Dashboard at http://localhost%s/dashboard. Press Ctrl+C to stop.", cfg.Addr))
	cmd.Println(fmt.Sprintf("Checking alerts every %s.", checker.Interval))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx, cfg.Addr) })
	g.Go(func() error { return checker.Run(gctx) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// loadBoundaries downloads the county dataset, falling back to the built-in
// counties. An empty URL skips the download.
func loadBoundaries(ctx context.Context, cfg config.Config) (fetcher.Boundaries, error) {
	if cfg.GeoJSONURL == "" {
		fc, err := simulate.FallbackBoundaries()
		if err != nil {
			return fetcher.Boundaries{}, err
		}
		return fetcher.Boundaries{Collection: fc, Fallback: true}, nil
	}
	client := &http.Client{Timeout: 30 * time.Second}
	return fetcher.LoadBoundaries(ctx, client, cfg.GeoJSONURL, cfg.Map.BoundaryRetries)
}
