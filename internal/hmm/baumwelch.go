// Package hmm fits categorical hidden Markov models with Baum-Welch.
package hmm

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/abhisek/ktsim/internal/rng"
)

// Fitter estimates model parameters from a flat one-hot observation stream
// split into sequences by lengths. Zero-length sequences are allowed.
type Fitter interface {
	Fit(ctx context.Context, obs [][]float64, lengths []int) (*Model, error)
}

// BaumWelch is the EM Fitter.
type BaumWelch struct {
	cfg Config
}

// New validates cfg and returns a BaumWelch fitter.
func New(cfg Config) (*BaumWelch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &BaumWelch{cfg: cfg}, nil
}

// Fit runs EM from seeded random parameters until the log-likelihood gain
// drops below Tol or MaxIter is reached.
func (b *BaumWelch) Fit(ctx context.Context, obs [][]float64, lengths []int) (*Model, error) {
	seqs, err := split(obs, lengths, b.cfg.Symbols)
	if err != nil {
		return nil, err
	}
	if len(seqs) == 0 {
		return nil, failure("no non-empty sequences to fit")
	}

	p := initParams(b.cfg.States, b.cfg.Symbols, rng.New(b.cfg.Seed).Stream(0))

	var (
		prev      = math.Inf(-1)
		iters     int
		converged bool
	)
	for it := 1; it <= b.cfg.MaxIter; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		acc := newStats(b.cfg.States, b.cfg.Symbols)
		for _, seq := range seqs {
			if err := p.accumulate(seq, acc); err != nil {
				return nil, diverged(it, "%v", err)
			}
		}
		if math.IsNaN(acc.ll) || math.IsInf(acc.ll, 0) {
			return nil, diverged(it, "log-likelihood is %v", acc.ll)
		}
		// EM never lowers the likelihood; a real drop means the numerics broke.
		if acc.ll < prev-1e-8*math.Max(1, math.Abs(prev)) {
			return nil, diverged(it, "log-likelihood fell from %v to %v", prev, acc.ll)
		}

		p = acc.maximize(p, len(seqs))
		iters = it
		if acc.ll-prev < b.cfg.Tol {
			converged = true
			break
		}
		prev = acc.ll
	}

	if !converged && b.cfg.Strict {
		return nil, diverged(iters, "not converged after %d iterations", iters)
	}

	// The loop measured the parameters before each update; score the
	// returned ones.
	final := newStats(b.cfg.States, b.cfg.Symbols)
	for _, seq := range seqs {
		if err := p.accumulate(seq, final); err != nil {
			return nil, diverged(iters, "%v", err)
		}
	}

	m := p.model()
	m.LogLikelihood = final.ll
	m.Iterations = iters
	m.Converged = converged
	return m, nil
}

// params holds row-major model parameters.
type params struct {
	start []float64
	trans [][]float64
	emit  [][]float64
}

func (p *params) states() int  { return len(p.start) }
func (p *params) symbols() int { return len(p.emit[0]) }

func initParams(states, symbols int, r rng.Rand) *params {
	randomRow := func(n int) []float64 {
		row := make([]float64, n)
		for i := range row {
			row[i] = 0.5 + r.Float64()
		}
		floats.Scale(1/floats.Sum(row), row)
		return row
	}
	p := &params{
		start: randomRow(states),
		trans: make([][]float64, states),
		emit:  make([][]float64, states),
	}
	for i := range states {
		p.trans[i] = randomRow(states)
		p.emit[i] = randomRow(symbols)
	}
	return p
}

func paramsFromModel(m *Model) *params {
	return &params{
		start: append([]float64(nil), m.Start...),
		trans: Rows(m.Transition),
		emit:  Rows(m.Emission),
	}
}

func (p *params) model() *Model {
	return &Model{
		Start:      p.start,
		Transition: dense(p.trans),
		Emission:   dense(p.emit),
	}
}

// stats accumulates expected counts across sequences.
type stats struct {
	start []float64
	trans [][]float64
	emit  [][]float64
	ll    float64
}

func newStats(states, symbols int) *stats {
	s := &stats{
		start: make([]float64, states),
		trans: make([][]float64, states),
		emit:  make([][]float64, states),
	}
	for i := range states {
		s.trans[i] = make([]float64, states)
		s.emit[i] = make([]float64, symbols)
	}
	return s
}

// accumulate runs the scaled forward-backward pass over one sequence and
// adds its expected counts to acc.
func (p *params) accumulate(seq []int, acc *stats) error {
	n, T := p.states(), len(seq)
	if T == 0 {
		return nil
	}

	alpha := make([][]float64, T)
	scale := make([]float64, T)
	for t := range T {
		alpha[t] = make([]float64, n)
		for j := range n {
			if t == 0 {
				alpha[t][j] = p.start[j]
			} else {
				for i := range n {
					alpha[t][j] += alpha[t-1][i] * p.trans[i][j]
				}
			}
			alpha[t][j] *= p.emit[j][seq[t]]
		}
		scale[t] = floats.Sum(alpha[t])
		if !(scale[t] > 0) || math.IsInf(scale[t], 0) {
			return fmt.Errorf("scaling factor %v at step %d", scale[t], t)
		}
		floats.Scale(1/scale[t], alpha[t])
		acc.ll += math.Log(scale[t])
	}

	beta := make([][]float64, T)
	beta[T-1] = make([]float64, n)
	for i := range n {
		beta[T-1][i] = 1
	}
	for t := T - 2; t >= 0; t-- {
		beta[t] = make([]float64, n)
		for i := range n {
			for j := range n {
				beta[t][i] += p.trans[i][j] * p.emit[j][seq[t+1]] * beta[t+1][j]
			}
			beta[t][i] /= scale[t+1]
		}
	}

	gamma := make([]float64, n)
	for t := range T {
		for i := range n {
			gamma[i] = alpha[t][i] * beta[t][i]
		}
		if sum := floats.Sum(gamma); sum > 0 {
			floats.Scale(1/sum, gamma)
		}
		for i := range n {
			if t == 0 {
				acc.start[i] += gamma[i]
			}
			acc.emit[i][seq[t]] += gamma[i]
		}
		if t == T-1 {
			continue
		}
		for i := range n {
			for j := range n {
				acc.trans[i][j] += alpha[t][i] * p.trans[i][j] * p.emit[j][seq[t+1]] * beta[t+1][j] / scale[t+1]
			}
		}
	}
	return nil
}

// maximize turns the expected counts into new parameters. Rows with no
// expected mass keep their previous values.
func (acc *stats) maximize(prev *params, numSeqs int) *params {
	next := &params{
		start: append([]float64(nil), acc.start...),
		trans: make([][]float64, len(acc.trans)),
		emit:  make([][]float64, len(acc.emit)),
	}
	floats.Scale(1/float64(numSeqs), next.start)
	normalize := func(row, fallback []float64) []float64 {
		sum := floats.Sum(row)
		if !(sum > 0) {
			return append([]float64(nil), fallback...)
		}
		out := append([]float64(nil), row...)
		floats.Scale(1/sum, out)
		return out
	}
	for i := range acc.trans {
		next.trans[i] = normalize(acc.trans[i], prev.trans[i])
		next.emit[i] = normalize(acc.emit[i], prev.emit[i])
	}
	return next
}

// split decodes one-hot rows into symbol sequences, dropping empty ones.
func split(obs [][]float64, lengths []int, symbols int) ([][]int, error) {
	total := 0
	for k, l := range lengths {
		if l < 0 {
			return nil, failure("length %d at index %d is negative", l, k)
		}
		total += l
	}
	if total != len(obs) {
		return nil, failure("lengths sum to %d but there are %d observations", total, len(obs))
	}

	symbolsOf := make([]int, len(obs))
	for t, row := range obs {
		if len(row) != symbols {
			return nil, failure("observation %d has width %d, want %d", t, len(row), symbols)
		}
		hot := -1
		for k, v := range row {
			switch {
			case v == 1 && hot == -1:
				hot = k
			case v == 0:
			default:
				return nil, failure("observation %d is not one-hot: %v", t, row)
			}
		}
		if hot == -1 {
			return nil, failure("observation %d is not one-hot: %v", t, row)
		}
		symbolsOf[t] = hot
	}

	var seqs [][]int
	offset := 0
	for _, l := range lengths {
		if l > 0 {
			seqs = append(seqs, symbolsOf[offset:offset+l])
		}
		offset += l
	}
	return seqs, nil
}
