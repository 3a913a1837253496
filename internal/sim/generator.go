// Package sim simulates students answering questions while their
// per-concept mastery evolves.
package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/ktsim/internal/mastery"
	"github.com/abhisek/ktsim/internal/rng"
)

// Generator runs simulations for a validated Config.
type Generator struct {
	cfg   Config
	model CorrectnessModel
	src   rng.Source
}

// New validates cfg and returns a Generator. No sampling happens here.
func New(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model, err := cfg.CorrectnessModel()
	if err != nil {
		return nil, err
	}
	return &Generator{
		cfg:   cfg,
		model: model,
		src:   rng.New(cfg.Seed),
	}, nil
}

// Config returns the generator's configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// Model returns the correctness model in use.
func (g *Generator) Model() CorrectnessModel {
	return g.model
}

// Setup draws a curriculum from the setup stream.
func (g *Generator) Setup() *Curriculum {
	return DrawCurriculum(g.cfg.NumConcepts, g.cfg.NumQuestions, g.src.Stream(rng.SetupStream))
}

// Run draws a curriculum and simulates every student against it.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	return g.Simulate(ctx, g.Setup())
}

// Simulate runs every student against cur. Student s draws from stream s+1,
// so the output does not depend on Workers.
func (g *Generator) Simulate(ctx context.Context, cur *Curriculum) (*Result, error) {
	if cur == nil {
		return nil, &ConfigError{Field: "curriculum", Reason: "must not be nil"}
	}
	if len(cur.Questions) != g.cfg.NumQuestions || len(cur.Concepts) != g.cfg.NumConcepts {
		return nil, &ConfigError{
			Field: "curriculum",
			Reason: fmt.Sprintf("has %d concepts and %d questions, config wants %d and %d",
				len(cur.Concepts), len(cur.Questions), g.cfg.NumConcepts, g.cfg.NumQuestions),
		}
	}
	if err := cur.validate(); err != nil {
		return nil, err
	}

	n := g.cfg.NumStudents
	res := &Result{
		Curriculum: cur,
		Answers:    make([][]int, n),
		PCorrect:   make([][]float64, n),
		KnowTrack:  make([][][]int, n),
		Final:      make([][]int, n),
	}
	transitions := make([][]mastery.Transition, n)

	run := func(s int) {
		transitions[s] = g.simulateStudent(s, cur, res)
	}

	if g.cfg.Workers <= 1 {
		for s := range n {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			run(s)
		}
	} else {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(g.cfg.Workers)
		for s := range n {
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				run(s)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	for _, ts := range transitions {
		res.Transitions = append(res.Transitions, ts...)
	}
	return res, nil
}

// simulateStudent fills row s of every table. Each attempt records the
// mastery snapshot, scores the answer, then applies the transition draw.
func (g *Generator) simulateStudent(s int, cur *Curriculum, res *Result) []mastery.Transition {
	r := g.src.Stream(uint64(s) + 1)
	nc, nq := len(cur.Concepts), len(cur.Questions)

	initial := mastery.NewVector(nc)
	for c := range initial {
		initial[c] = r.Bernoulli(g.cfg.PInitialMastery)
	}
	tracker := mastery.NewTracker(s, initial)

	answers := make([]int, nq)
	probs := make([]float64, nq)
	know := make([][]int, nc)
	for c := range know {
		know[c] = make([]int, nq)
	}

	for _, q := range cur.Questions {
		c := q.Concept
		for k, m := range tracker.State() {
			know[k][q.ID] = m
		}

		p := g.model.PCorrect(q.Difficulty, tracker.Skill(c))
		probs[q.ID] = p
		answers[q.ID] = r.Bernoulli(p)

		if r.Bernoulli(g.cfg.PMasteryTransition) == 1 {
			tracker.Learn(c, q.ID)
		}
	}

	final := make([]int, nc)
	tracker.Snapshot(final)

	res.Answers[s] = answers
	res.PCorrect[s] = probs
	res.KnowTrack[s] = know
	res.Final[s] = final
	return tracker.Transitions()
}
