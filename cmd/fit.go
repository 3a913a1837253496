package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/ktsim/internal/hmm"
	"github.com/abhisek/ktsim/internal/pipeline"
	"github.com/abhisek/ktsim/internal/report"
	"github.com/abhisek/ktsim/internal/store"
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Simulate students, then fit a 2-state HMM to their answer sequences",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		v := viperForCmd(cmd)
		cfg := runConfig(v)

		res, err := pipeline.New(log).Run(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.Fit(res))

		if noSave, _ := cmd.Flags().GetBool("no-save"); noSave {
			return nil
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := runFromResult(cfg, res)
		if err != nil {
			return err
		}
		if err := st.RunRepo().Save(cmd.Context(), run); err != nil {
			return err
		}
		log.Info("run saved", "id", run.ID, "sequence", run.Sequence)
		fmt.Fprintf(cmd.OutOrStdout(), "\nSaved run %s\n", run.ID)
		return nil
	},
}

func init() {
	addRunFlags(fitCmd)
	fitCmd.Flags().Bool("no-save", false, "Do not record the run in the database")
}

// runFromResult converts a pipeline result into a storable run.
func runFromResult(cfg pipeline.Config, res *pipeline.Result) (*store.Run, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return &store.Run{
		Config:        raw,
		Students:      res.Simulation.NumStudents(),
		Questions:     res.Simulation.NumQuestions(),
		Concepts:      res.Simulation.NumConcepts(),
		Observations:  len(res.Input.Observations),
		Segments:      len(res.Input.Lengths),
		MeanCorrect:   res.Simulation.MeanCorrect(),
		LogLikelihood: res.Model.LogLikelihood,
		Iterations:    res.Model.Iterations,
		Converged:     res.Model.Converged,
		Start:         res.Model.Start,
		Transition:    hmm.Rows(res.Model.Transition),
		Emission:      hmm.Rows(res.Model.Emission),
	}, nil
}
