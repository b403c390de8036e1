package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zachdehooge/riskmap-dashboard/internal/config"
	"github.com/Zachdehooge/riskmap-dashboard/internal/server"
	"github.com/Zachdehooge/riskmap-dashboard/internal/store"
)

var (
	configPath string
	verbose    bool
	addr       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "riskmap",
		Short: "Serve the credit risk dashboard",
		Long: `riskmap serves the credit risk dashboard: the company tables and
profiles, the county risk map, alerts and generated reports.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides the config)")

	addServeCmd(rootCmd)
	addSimulateCmd(rootCmd)
	addListCmd(rootCmd)
	addSortCmd(rootCmd)
	addIndustriesCmd(rootCmd)
	addDashboardCmd(rootCmd)
	addRenderCmd(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and environment, then the flags that
// override them.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if verbose {
		cmd.Println(fmt.Sprintf("Using %s store %s", cfg.Store.Driver, cfg.Store.DSN))
	}
	return cfg, nil
}

// openStore opens the configured store and seeds an empty company table.
func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if _, err := server.SeedCompanies(ctx, st, cfg.Seed, timeNow()); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}
