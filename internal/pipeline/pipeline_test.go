package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/ktsim/internal/hmm"
	"github.com/abhisek/ktsim/internal/sim"
)

// fakeFitter records its input and returns a canned result.
type fakeFitter struct {
	calls   int
	obs     [][]float64
	lengths []int
	model   *hmm.Model
	err     error
}

func (f *fakeFitter) Fit(_ context.Context, obs [][]float64, lengths []int) (*hmm.Model, error) {
	f.calls++
	f.obs = obs
	f.lengths = lengths
	return f.model, f.err
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Sim.NumStudents = 4
	cfg.Sim.NumQuestions = 60
	cfg.Sim.NumConcepts = 3
	cfg.Sim.Seed = 77
	return cfg
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := testConfig()
	res, err := New(nil).Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Len(t, res.Input.Lengths, cfg.Sim.NumStudents*cfg.Sim.NumConcepts)
	assert.Equal(t, cfg.Sim.NumStudents*cfg.Sim.NumQuestions, res.Input.Total())
	assert.Equal(t, len(res.Input.Observations), res.Input.Total())

	assert.True(t, hmm.RowsStochastic(res.Model.Transition, 1e-6))
	assert.True(t, hmm.RowsStochastic(res.Model.Emission, 1e-6))
	assert.Equal(t, 2, res.Model.States())
	assert.Equal(t, 2, res.Model.Symbols())
}

func TestRun_FitterReceivesExtractedStream(t *testing.T) {
	cfg := testConfig()
	model, err := hmm.NewModel([]float64{0.5, 0.5}, [][]float64{{1, 0}, {0, 1}}, [][]float64{{1, 0}, {0, 1}})
	require.NoError(t, err)
	fake := &fakeFitter{model: model}

	res, err := New(nil, WithFitter(fake)).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
	assert.Same(t, model, res.Model)
	assert.Equal(t, res.Input.Lengths, fake.lengths)
	assert.Len(t, fake.obs, cfg.Sim.NumStudents*cfg.Sim.NumQuestions)

	// Segments per student cover every question exactly once.
	perStudent := make(map[int]int)
	for _, seg := range res.Input.Segments {
		perStudent[seg.Student] += seg.Length
	}
	for s := range cfg.Sim.NumStudents {
		assert.Equal(t, cfg.Sim.NumQuestions, perStudent[s])
	}
}

func TestRun_FitterErrorPropagatedUnmodified(t *testing.T) {
	fitErr := &hmm.FitError{Iteration: 3, Reason: "boom", Err: hmm.ErrDivergence}
	fake := &fakeFitter{err: fitErr}

	res, err := New(nil, WithFitter(fake)).Run(context.Background(), testConfig())
	assert.Nil(t, res)
	assert.Same(t, fitErr, err)
	assert.True(t, errors.Is(err, hmm.ErrDivergence))
}

func TestRun_InvalidConfigurationBeforeSampling(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.PMasteryTransition = 1.5
	fake := &fakeFitter{}

	res, err := New(nil, WithFitter(fake)).Run(context.Background(), cfg)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, sim.ErrInvalidConfiguration)
	assert.Zero(t, fake.calls)
}

func TestRun_InvalidFitConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Fit.MaxIter = 0

	res, err := New(nil).Run(context.Background(), cfg)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, hmm.ErrFitFailure)
}

func TestRun_SkipEmptySegments(t *testing.T) {
	cfg := testConfig()
	// Far more concepts than questions guarantees empty concepts.
	cfg.Sim.NumQuestions = 3
	cfg.Sim.NumConcepts = 20
	cfg.SkipEmptySegments = true

	fake := &fakeFitter{model: &hmm.Model{}}
	res, err := New(nil, WithFitter(fake)).Run(context.Background(), cfg)
	require.NoError(t, err)
	for _, l := range res.Input.Lengths {
		assert.Positive(t, l)
	}
	assert.Equal(t, cfg.Sim.NumStudents*cfg.Sim.NumQuestions, res.Input.Total())
}

func TestRun_DeterministicUnderSeed(t *testing.T) {
	cfg := testConfig()
	a, err := New(nil).Run(context.Background(), cfg)
	require.NoError(t, err)
	b, err := New(nil).Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Simulation.Answers, b.Simulation.Answers)
	assert.Equal(t, a.Simulation.KnowTrack, b.Simulation.KnowTrack)
	assert.Equal(t, hmm.Rows(a.Model.Emission), hmm.Rows(b.Model.Emission))
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := New(nil).Run(ctx, testConfig())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}
