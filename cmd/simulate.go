package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/Zachdehooge/riskmap-dashboard/internal/config"
	"github.com/Zachdehooge/riskmap-dashboard/internal/fetcher"
	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/simulate"
)

var (
	outputFile     string
	seed           int64
	clientTypes    []string
	saveToStore    bool
	interval       int
	watchMode      bool
	fillBoundaries bool
)

// addSimulateCmd adds a 'simulate' subcommand writing simulated county data
func addSimulateCmd(rootCmd *cobra.Command) {
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate simulated county risk data",
		Long: `Simulate generates county risk metrics the way the map does when live
data is unavailable, and writes them as an /api/county_data payload.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s := seed
			if !cmd.Flags().Changed("seed") {
				s = cfg.Seed
			}
			if err := generateSimulation(cmd, cfg, s); err != nil {
				return fmt.Errorf("failed to simulate county data: %w", err)
			}
			if watchMode {
				runWatchMode(cmd, cfg, s)
			}
			return nil
		},
	}

	simulateCmd.Flags().StringVarP(&outputFile, "output", "o", "county_data.json", "Output JSON file path")
	simulateCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	simulateCmd.Flags().StringSliceVar(&clientTypes, "client-type", nil, "Client types to include (current, potential); default all")
	simulateCmd.Flags().BoolVar(&saveToStore, "store", false, "Also save the data to the configured store")
	simulateCmd.Flags().BoolVar(&fillBoundaries, "fill", false, "Top up sparse states from the county boundary dataset")
	simulateCmd.Flags().IntVarP(&interval, "interval", "i", 300, "Update interval in seconds (minimum 30)")
	simulateCmd.Flags().BoolVar(&watchMode, "watch", false, "Continuously regenerate the data")

	rootCmd.AddCommand(simulateCmd)
}

// generateSimulation writes one simulated data set
func generateSimulation(cmd *cobra.Command, cfg config.Config, s int64) error {
	ct := model.ParseClientTypes(clientTypes)
	if len(ct) == 0 {
		ct = model.AllClientTypes()
	}
	sim := simulate.New(s, ct)
	sim.SampleSize = cfg.Map.SampleSize
	sim.PerStateFill = cfg.Map.PerStateFill
	data := sim.Simulate()

	if fillBoundaries {
		b, err := loadBoundaries(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		added := sim.FillSparse(data, b.Collection.Features)
		if verbose {
			cmd.Println(fmt.Sprintf("Added %d counties from %d boundaries", added, len(b.Collection.Features)))
		}
	}

	payload, err := json.MarshalIndent(fetcher.CountyResponse{Success: true, Counties: data}, "", "  ")
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(outputFile, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputFile, err)
	}
	cmd.Println(fmt.Sprintf("%d simulated counties saved to %s", len(data), outputFile))

	if saveToStore {
		st, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveCountyData(cmd.Context(), data); err != nil {
			return fmt.Errorf("failed to save county data: %w", err)
		}
		cmd.Println(fmt.Sprintf("Saved to %s store", cfg.Store.Driver))
	}
	return nil
}

// runWatchMode regenerates the data with a fresh seed every interval
func runWatchMode(cmd *cobra.Command, cfg config.Config, s int64) {
	// Enforce minimum interval
	if interval < 30 {
		interval = 30
	}

	cmd.Println(fmt.Sprintf("Watch mode activated. Updating every %d seconds. Press Ctrl+C to stop.", interval))
	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s++
		if err := generateSimulation(cmd, cfg, s); err != nil {
			cmd.PrintErrln(fmt.Errorf("update failed: %w", err))
		}
	}
}
