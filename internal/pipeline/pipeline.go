// Package pipeline connects simulation, sequence extraction and HMM fitting
// into a single run that either fully succeeds or returns nothing.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/ktsim/internal/hmm"
	"github.com/abhisek/ktsim/internal/logger"
	"github.com/abhisek/ktsim/internal/sequence"
	"github.com/abhisek/ktsim/internal/sim"
)

// Result is the output of a successful run.
type Result struct {
	Simulation *sim.Result
	Input      *sequence.Input
	Model      *hmm.Model
	Elapsed    time.Duration
}

// Pipeline runs simulate -> extract -> fit.
type Pipeline struct {
	log    *logger.Logger
	fitter hmm.Fitter
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFitter replaces the Baum-Welch fitter built from Config.Fit.
func WithFitter(f hmm.Fitter) Option {
	return func(p *Pipeline) { p.fitter = f }
}

func New(baseLog *logger.Logger, opts ...Option) *Pipeline {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	p := &Pipeline{log: baseLog.With("job", "kt_fit")}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run validates cfg, simulates, extracts sequences and fits. Configuration
// errors surface before any sampling. Fitter errors are returned as is.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*Result, error) {
	start := time.Now()

	gen, err := sim.New(cfg.Sim)
	if err != nil {
		return nil, err
	}
	fitter := p.fitter
	if fitter == nil {
		bw, err := hmm.New(cfg.Fit)
		if err != nil {
			return nil, err
		}
		fitter = bw
	}

	simRes, err := gen.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	p.log.Debug("simulation done",
		"model", gen.Model().Name(),
		"students", simRes.NumStudents(),
		"questions", simRes.NumQuestions(),
		"concepts", simRes.NumConcepts(),
		"transitions", len(simRes.Transitions),
		"mean_correct", simRes.MeanCorrect(),
	)

	in, err := sequence.Extract(
		simRes.Answers,
		simRes.Curriculum.QuestionConcepts(),
		gen.Config().NumConcepts,
		sequence.Options{SkipEmpty: cfg.SkipEmptySegments},
	)
	if err != nil {
		return nil, fmt.Errorf("extract sequences: %w", err)
	}
	p.log.Debug("sequences extracted",
		"segments", len(in.Lengths),
		"observations", len(in.Observations),
	)

	model, err := fitter.Fit(ctx, in.Rows(), in.Lengths)
	if err != nil {
		p.log.Error("fit failed", "error", err)
		return nil, err
	}

	res := &Result{
		Simulation: simRes,
		Input:      in,
		Model:      model,
		Elapsed:    time.Since(start),
	}
	p.log.Info("run complete",
		"log_likelihood", model.LogLikelihood,
		"iterations", model.Iterations,
		"converged", model.Converged,
		"elapsed", res.Elapsed,
	)
	return res, nil
}
