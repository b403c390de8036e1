package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Zachdehooge/riskmap-dashboard/internal/filter"
	"github.com/Zachdehooge/riskmap-dashboard/internal/generator"
	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
	"github.com/Zachdehooge/riskmap-dashboard/internal/store"
	"github.com/Zachdehooge/riskmap-dashboard/internal/table"
)

var (
	listSearch    string
	listRisk      string
	sortColumn    string
	sortDirection string
	csvOutput     bool
	sortInput     string
	listSession   string
)

// addListCmd adds a 'list' subcommand printing the company table
func addListCmd(rootCmd *cobra.Command) {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List companies and their credit risk",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			session, err := loadSession(listSession)
			if err != nil {
				return err
			}
			if listSession != "" && !cmd.Flags().Changed("search") && !cmd.Flags().Changed("risk") {
				listSearch, listRisk = filter.RestoreCompanies(session)
			}

			risk := model.RiskLevel(strings.ToLower(strings.TrimSpace(listRisk)))
			switch risk {
			case "", model.RiskHigh, model.RiskMedium, model.RiskLow:
			default:
				return fmt.Errorf("unknown risk level %q", listRisk)
			}
			profiles, err := st.Companies(cmd.Context(), store.CompanyFilter{
				Search: strings.TrimSpace(listSearch),
				Risk:   risk,
			})
			if err != nil {
				return fmt.Errorf("failed to list companies: %w", err)
			}
			if listSession != "" {
				filter.SaveCompanies(session, strings.TrimSpace(listSearch), string(risk))
				if err := session.save(); err != nil {
					return fmt.Errorf("failed to save session: %w", err)
				}
			}
			rows := generator.CompanyRows(profiles, table.ParseSort(sortColumn, sortDirection))

			if csvOutput {
				return writeRows(cmd.OutOrStdout(), rows)
			}
			if len(rows) == 0 {
				cmd.Println("No companies found.")
				return nil
			}
			cmd.Println("Companies:")
			for _, row := range rows {
				cmd.Println("---")
				for _, d := range table.Columns {
					value := row.Cells[d.Index]
					if d.Column == table.ColRisk {
						value = riskColor(model.RiskLevel(strings.ToLower(value))).Sprint(value)
					}
					cmd.Println(fmt.Sprintf("%s: %s", d.Header, value))
				}
			}
			return nil
		},
	}

	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Filter by company or industry")
	listCmd.Flags().StringVar(&listRisk, "risk", "", "Filter by risk level (high, medium, low)")
	listCmd.Flags().StringVar(&sortColumn, "sort", string(table.DefaultSort.Column), "Column to sort by")
	listCmd.Flags().StringVar(&sortDirection, "direction", string(table.DefaultSort.Direction), "Sort direction (asc, desc)")
	listCmd.Flags().BoolVar(&csvOutput, "csv", false, "Print CSV instead of text")
	listCmd.Flags().StringVar(&listSession, "session", "", "JSON file remembering the search and risk filter between runs")

	rootCmd.AddCommand(listCmd)
}

// addSortCmd adds a 'sort' subcommand reordering an exported CSV table
func addSortCmd(rootCmd *cobra.Command) {
	sortCmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort an exported company table by one column",
		Long: `Sort reads a CSV company table with a header row, as printed by
'list --csv', and writes it back sorted by the given column.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if sortInput != "-" {
				f, err := os.Open(sortInput)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			rows, err := readRows(in)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", sortInput, err)
			}
			table.Sort(rows, table.ParseSort(sortColumn, sortDirection))
			return writeRows(cmd.OutOrStdout(), rows)
		},
	}

	sortCmd.Flags().StringVarP(&sortInput, "input", "i", "-", "CSV file to sort (- for stdin)")
	sortCmd.Flags().StringVar(&sortColumn, "column", string(table.DefaultSort.Column), "Column to sort by")
	sortCmd.Flags().StringVar(&sortDirection, "direction", string(table.DefaultSort.Direction), "Sort direction (asc, desc)")

	rootCmd.AddCommand(sortCmd)
}

func riskColor(level model.RiskLevel) *color.Color {
	switch level {
	case model.RiskHigh:
		return color.New(color.FgRed, color.Bold)
	case model.RiskMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func writeRows(w io.Writer, rows []table.Row) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(table.Columns))
	for i, d := range table.Columns {
		header[i] = d.Header
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.Cells); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readRows(r io.Reader) ([]table.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("missing header row")
	}
	rows := make([]table.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, table.Row{ID: rec[0], Cells: rec})
	}
	return rows, nil
}
