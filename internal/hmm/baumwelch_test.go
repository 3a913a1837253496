package hmm

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/ktsim/internal/rng"
)

// sample draws one-hot observations from a known 2-state model.
func sample(t *testing.T, seed uint64, lengths []int) [][]float64 {
	t.Helper()
	start := []float64{0.7, 0.3}
	trans := [][]float64{{0.85, 0.15}, {0.05, 0.95}}
	emit := [][]float64{{0.7, 0.3}, {0.15, 0.85}}

	r := rng.New(seed).Stream(1)
	var obs [][]float64
	for _, l := range lengths {
		state := r.Bernoulli(start[1])
		for range l {
			sym := r.Bernoulli(emit[state][1])
			row := make([]float64, 2)
			row[sym] = 1
			obs = append(obs, row)
			state = r.Bernoulli(trans[state][1])
		}
	}
	return obs
}

func fitter(t *testing.T, mutate func(*Config)) *BaumWelch {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	b, err := New(cfg)
	require.NoError(t, err)
	return b
}

func TestFit_OutputShape(t *testing.T) {
	lengths := []int{40, 55, 0, 30, 60, 45}
	obs := sample(t, 3, lengths)

	m, err := fitter(t, nil).Fit(context.Background(), obs, lengths)
	require.NoError(t, err)

	r, c := m.Transition.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	r, c = m.Emission.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)

	assert.True(t, RowsStochastic(m.Transition, 1e-6))
	assert.True(t, RowsStochastic(m.Emission, 1e-6))
	assert.InDelta(t, 1.0, m.Start[0]+m.Start[1], 1e-6)
	assert.False(t, math.IsNaN(m.LogLikelihood))
	assert.Greater(t, m.Iterations, 0)
}

func TestFit_ImprovesOnInitialParameters(t *testing.T) {
	lengths := []int{80, 80, 80, 80}
	obs := sample(t, 9, lengths)
	b := fitter(t, func(c *Config) { c.Seed = 17 })

	m, err := b.Fit(context.Background(), obs, lengths)
	require.NoError(t, err)

	initial := initParams(2, 2, rng.New(17).Stream(0)).model()
	initialLL, err := initial.Score(obs, lengths)
	require.NoError(t, err)

	fittedLL, err := m.Score(obs, lengths)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, fittedLL, initialLL)
	assert.InDelta(t, fittedLL, m.LogLikelihood, 1e-9)
}

func TestFit_Deterministic(t *testing.T) {
	lengths := []int{50, 50, 50}
	obs := sample(t, 4, lengths)

	a, err := fitter(t, nil).Fit(context.Background(), obs, lengths)
	require.NoError(t, err)
	b, err := fitter(t, nil).Fit(context.Background(), obs, lengths)
	require.NoError(t, err)

	assert.Equal(t, Rows(a.Transition), Rows(b.Transition))
	assert.Equal(t, Rows(a.Emission), Rows(b.Emission))
	assert.Equal(t, a.LogLikelihood, b.LogLikelihood)
}

func TestFit_ConstantObservations(t *testing.T) {
	lengths := []int{5, 5}
	obs := make([][]float64, 10)
	for i := range obs {
		obs[i] = []float64{1, 0}
	}

	m, err := fitter(t, nil).Fit(context.Background(), obs, lengths)
	require.NoError(t, err)
	assert.True(t, m.Converged)
	for i := range 2 {
		assert.InDelta(t, 1.0, m.Emission.At(i, 0), 1e-6)
	}
	assert.InDelta(t, 0.0, m.LogLikelihood, 1e-6)
}

func TestFit_InputErrors(t *testing.T) {
	ok := [][]float64{{1, 0}, {0, 1}}
	tests := []struct {
		name    string
		obs     [][]float64
		lengths []int
	}{
		{"length sum mismatch", ok, []int{3}},
		{"negative length", ok, []int{3, -1}},
		{"not one-hot", [][]float64{{1, 1}, {0, 1}}, []int{2}},
		{"all zero row", [][]float64{{0, 0}, {0, 1}}, []int{2}},
		{"wrong width", [][]float64{{1, 0, 0}, {0, 1, 0}}, []int{2}},
		{"only empty sequences", nil, []int{0, 0}},
		{"no sequences", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := fitter(t, nil).Fit(context.Background(), tt.obs, tt.lengths)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, ErrFitFailure)
		})
	}
}

func TestFit_StrictNonConvergence(t *testing.T) {
	lengths := []int{60, 60}
	obs := sample(t, 5, lengths)
	b := fitter(t, func(c *Config) {
		c.MaxIter = 1
		c.Strict = true
	})

	_, err := b.Fit(context.Background(), obs, lengths)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDivergence)

	var fe *FitError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 1, fe.Iteration)
}

func TestFit_LenientNonConvergence(t *testing.T) {
	lengths := []int{60, 60}
	obs := sample(t, 5, lengths)

	m, err := fitter(t, func(c *Config) { c.MaxIter = 1 }).Fit(context.Background(), obs, lengths)
	require.NoError(t, err)
	assert.False(t, m.Converged)
	assert.Equal(t, 1, m.Iterations)
}

func TestFit_CanceledContext(t *testing.T) {
	lengths := []int{20}
	obs := sample(t, 1, lengths)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fitter(t, nil).Fit(ctx, obs, lengths)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"states", func(c *Config) { c.States = 0 }},
		{"symbols", func(c *Config) { c.Symbols = 0 }},
		{"max iter", func(c *Config) { c.MaxIter = 0 }},
		{"tol", func(c *Config) { c.Tol = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := New(cfg)
			assert.ErrorIs(t, err, ErrFitFailure)
		})
	}
}
