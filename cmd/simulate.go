package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/ktsim/internal/report"
	"github.com/abhisek/ktsim/internal/sim"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate students and print a summary of the generated data",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		v := viperForCmd(cmd)
		cfg := runConfig(v).Sim

		gen, err := sim.New(cfg)
		if err != nil {
			return err
		}
		res, err := gen.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("simulate: %w", err)
		}
		log.Info("simulation done",
			"model", gen.Model().Name(),
			"seed", gen.Config().Seed,
			"students", res.NumStudents(),
			"questions", res.NumQuestions(),
			"transitions", len(res.Transitions),
		)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		fmt.Fprintln(cmd.OutOrStdout(), report.Simulation(res))
		return nil
	},
}

func init() {
	addRunFlags(simulateCmd)
	simulateCmd.Flags().Bool("json", false, "Write the full answer and mastery tables as JSON")
}
