package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zachdehooge/riskmap-dashboard/internal/filter"
)

var (
	serverURL string
	username  string
	assumeYes bool
	forceAdd  bool
)

// addIndustriesCmd adds 'industries add' and 'industries delete' against a
// running dashboard
func addIndustriesCmd(rootCmd *cobra.Command) {
	industriesCmd := &cobra.Command{
		Use:   "industries",
		Short: "Manage tracked industries on a running dashboard",
	}
	industriesCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Dashboard base URL")
	industriesCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "Dashboard username")

	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Track a new industry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := filter.NewTracker(serverURL, username)
			add := t.Add
			if forceAdd {
				add = t.AddAnyway
			}
			err := add(cmd.Context(), args[0], filter.DefaultIndustries)
			var dup *filter.DuplicateError
			if errors.As(err, &dup) {
				cmd.PrintErrln(dup.Error())
				if dup.Near() {
					cmd.PrintErrln("Use --force to track it as a separate industry.")
				}
				return err
			}
			if err != nil {
				return fmt.Errorf("failed to add industry: %w", err)
			}
			cmd.Println(fmt.Sprintf("Now tracking %s", strings.TrimSpace(args[0])))
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Stop tracking a custom industry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := filter.NewTracker(serverURL, username)
			confirm := func(industry string) bool {
				if assumeYes {
					return true
				}
				cmd.Print(fmt.Sprintf("Stop tracking %s? [y/N] ", industry))
				line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				switch strings.ToLower(strings.TrimSpace(line)) {
				case "y", "yes":
					return true
				}
				return false
			}
			err := t.Delete(cmd.Context(), args[0], confirm)
			if errors.Is(err, filter.ErrNotConfirmed) {
				cmd.Println("Cancelled.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to delete industry: %w", err)
			}
			cmd.Println(fmt.Sprintf("Stopped tracking %s", args[0]))
			return nil
		},
	}
	addCmd.Flags().BoolVar(&forceAdd, "force", false, "Track the name even if it is close to a tracked industry")
	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")

	industriesCmd.AddCommand(addCmd, deleteCmd)
	rootCmd.AddCommand(industriesCmd)
}
