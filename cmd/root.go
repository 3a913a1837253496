package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/ktsim/internal/logger"
	"github.com/abhisek/ktsim/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "ktsim",
	Short: "Simulate knowledge tracing and fit a hidden Markov model",
	Long: "ktsim simulates students whose per-concept mastery evolves as they answer questions, " +
		"then fits a 2-state hidden Markov model to each student's per-concept answer sequences.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which simulation and
// fitting observe for cancellation.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides KTSIM_DB env var)")
	rootCmd.PersistentFlags().String("log-mode", "dev", "Log format (dev, prod)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(fitCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then KTSIM_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the run database for cmd.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// newLogger builds the logger selected by --log-mode and --log-level.
func newLogger(cmd *cobra.Command) (*logger.Logger, error) {
	v := viperForCmd(cmd)
	log, err := logger.New(v.GetString("log-mode"), v.GetString("log-level"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}
