package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zachdehooge/riskmap-dashboard/internal/filter"
	"github.com/Zachdehooge/riskmap-dashboard/internal/generator"
	"github.com/Zachdehooge/riskmap-dashboard/internal/mapview"
	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/store"
	"github.com/Zachdehooge/riskmap-dashboard/internal/table"
)

var (
	renderPage   string
	renderOutput string
)

// addRenderCmd adds a 'render' subcommand writing a page snapshot to disk
func addRenderCmd(rootCmd *cobra.Command) {
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a dashboard page to a static HTML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			pages, err := generator.New()
			if err != nil {
				return err
			}

			var data any
			switch renderPage {
			case generator.PageCompanies:
				st, err := openStore(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer st.Close()
				profiles, err := st.Companies(cmd.Context(), store.CompanyFilter{})
				if err != nil {
					return fmt.Errorf("failed to load companies: %w", err)
				}
				sort := table.ParseSort(sortColumn, sortDirection)
				data = generator.CompaniesData{
					Nav:     generator.NavFor(generator.PageCompanies, ""),
					Sort:    sort,
					Headers: generator.Headers("/companies", filter.FilterState{}, "", sort),
					Rows:    generator.CompanyRows(profiles, sort),
				}
			case generator.PageGeoHeatmap:
				data = generator.MapData{
					Nav:         generator.NavFor(generator.PageGeoHeatmap, ""),
					Industries:  model.CompanyIndustries,
					Metric:      "pd",
					ClientTypes: model.AllClientTypes(),
					Legend:      mapview.Legend(),
				}
			default:
				return fmt.Errorf("unknown page %q (want %s or %s)", renderPage, generator.PageCompanies, generator.PageGeoHeatmap)
			}

			cmd.Println(fmt.Sprintf("Generating HTML to %s...", renderOutput))
			if err := pages.WriteFile(renderOutput, renderPage, data); err != nil {
				return fmt.Errorf("failed to generate HTML: %w", err)
			}
			cmd.Println(fmt.Sprintf("Page saved to %s", renderOutput))
			return nil
		},
	}

	renderCmd.Flags().StringVarP(&renderPage, "page", "p", generator.PageCompanies, "Page to render (companies, geoheatmap)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "companies.html", "Output HTML file path")
	renderCmd.Flags().StringVar(&sortColumn, "sort", string(table.DefaultSort.Column), "Column to sort by")
	renderCmd.Flags().StringVar(&sortDirection, "direction", string(table.DefaultSort.Direction), "Sort direction (asc, desc)")

	rootCmd.AddCommand(renderCmd)
}
