package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/ktsim/internal/report"
	"github.com/abhisek/ktsim/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse recorded fits",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.RunRepo().List(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.Runs(runs))
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the fitted parameters of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.RunRepo().Get(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no run with id %q", args[0])
		}
		if err != nil {
			return err
		}
		out, err := report.Run(run)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the most recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetInt("keep")
		if keep < 0 {
			return fmt.Errorf("--keep must not be negative")
		}
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		return st.RunRepo().Prune(cmd.Context(), keep)
	},
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "Maximum runs to show (0 = all)")
	runsPruneCmd.Flags().Int("keep", 10, "Number of most recent runs to keep")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsPruneCmd)
}
