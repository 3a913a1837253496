package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/ktsim/internal/pipeline"
	"github.com/abhisek/ktsim/internal/sim"
)

// addRunFlags registers the simulation and fit parameters on cmd.
func addRunFlags(cmd *cobra.Command) {
	def := pipeline.DefaultConfig()
	f := cmd.Flags()

	f.Int("students", def.Sim.NumStudents, "Number of simulated students")
	f.Int("questions", def.Sim.NumQuestions, "Number of questions each student answers")
	f.Int("concepts", def.Sim.NumConcepts, "Number of concepts")
	f.Float64("p-initial", def.Sim.PInitialMastery, "Probability a concept starts mastered")
	f.Float64("p-transition", def.Sim.PMasteryTransition, "Probability of learning a concept after each attempt")
	f.Float64("p-guess", def.Sim.PGuess, "Guess probability (bkt model only)")
	f.Float64("p-slip", def.Sim.PSlip, "Slip probability (bkt model only)")
	f.String("model", string(def.Sim.Model), "Correctness model (irt, bkt)")
	f.Uint64("seed", def.Sim.Seed, "Simulation seed")
	f.Int("workers", def.Sim.Workers, "Parallel student workers (results do not depend on this)")

	f.Int("fit-max-iter", def.Fit.MaxIter, "Maximum Baum-Welch iterations")
	f.Float64("fit-tol", def.Fit.Tol, "Log-likelihood gain that counts as converged")
	f.Uint64("fit-seed", def.Fit.Seed, "Seed for the initial HMM parameters")
	f.Bool("fit-strict", def.Fit.Strict, "Fail when the fit does not converge")
	f.Bool("skip-empty", def.SkipEmptySegments, "Drop zero-length (student, concept) segments")
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("KTSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("ktsim")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/ktsim")
	_ = v.ReadInConfig()

	return v
}

// runConfig assembles the pipeline configuration from flags, environment
// and an optional ktsim config file. Validation happens in the pipeline.
func runConfig(v *viper.Viper) pipeline.Config {
	cfg := pipeline.DefaultConfig()

	cfg.Sim.NumStudents = v.GetInt("students")
	cfg.Sim.NumQuestions = v.GetInt("questions")
	cfg.Sim.NumConcepts = v.GetInt("concepts")
	cfg.Sim.PInitialMastery = v.GetFloat64("p-initial")
	cfg.Sim.PMasteryTransition = v.GetFloat64("p-transition")
	cfg.Sim.PGuess = v.GetFloat64("p-guess")
	cfg.Sim.PSlip = v.GetFloat64("p-slip")
	cfg.Sim.Model = sim.ModelKind(strings.ToLower(v.GetString("model")))
	cfg.Sim.Seed = v.GetUint64("seed")
	cfg.Sim.Workers = v.GetInt("workers")

	cfg.Fit.MaxIter = v.GetInt("fit-max-iter")
	cfg.Fit.Tol = v.GetFloat64("fit-tol")
	cfg.Fit.Seed = v.GetUint64("fit-seed")
	cfg.Fit.Strict = v.GetBool("fit-strict")
	cfg.SkipEmptySegments = v.GetBool("skip-empty")

	return cfg
}
