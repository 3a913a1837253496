package hmm

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Model is a fitted categorical hidden Markov model.
//
// Hidden states carry no labels. Which row corresponds to "mastered" is not
// decided here; a second fit with another seed may swap them.
type Model struct {
	Start      []float64
	Transition *mat.Dense // States x States
	Emission   *mat.Dense // States x Symbols

	LogLikelihood float64
	Iterations    int
	Converged     bool
}

// NewModel builds a model from row-major parameter slices.
func NewModel(start []float64, transition, emission [][]float64) (*Model, error) {
	n := len(start)
	if n == 0 {
		return nil, failure("start distribution is empty")
	}
	if len(transition) != n || len(emission) != n {
		return nil, failure("have %d start entries, %d transition rows, %d emission rows", n, len(transition), len(emission))
	}
	for i := range transition {
		if len(transition[i]) != n {
			return nil, failure("transition row %d has %d entries, want %d", i, len(transition[i]), n)
		}
		if len(emission[i]) != len(emission[0]) || len(emission[i]) == 0 {
			return nil, failure("emission rows must share a positive width")
		}
	}
	return &Model{
		Start:      append([]float64(nil), start...),
		Transition: dense(transition),
		Emission:   dense(emission),
	}, nil
}

// States returns the number of hidden states.
func (m *Model) States() int {
	r, _ := m.Transition.Dims()
	return r
}

// Symbols returns the alphabet size.
func (m *Model) Symbols() int {
	_, c := m.Emission.Dims()
	return c
}

// Score returns the log-likelihood of the observations under m.
func (m *Model) Score(obs [][]float64, lengths []int) (float64, error) {
	seqs, err := split(obs, lengths, m.Symbols())
	if err != nil {
		return 0, err
	}
	p := paramsFromModel(m)
	acc := newStats(p.states(), p.symbols())
	for _, seq := range seqs {
		if err := p.accumulate(seq, acc); err != nil {
			return 0, diverged(0, "%v", err)
		}
	}
	return acc.ll, nil
}

// RowsStochastic reports whether every row of d sums to 1 within tol and
// holds no negative entries.
func RowsStochastic(d mat.Matrix, tol float64) bool {
	r, c := d.Dims()
	for i := range r {
		row := make([]float64, c)
		mat.Row(row, i, d)
		if floats.Min(row) < 0 {
			return false
		}
		if math.Abs(floats.Sum(row)-1) > tol {
			return false
		}
	}
	return true
}

// Rows copies d into a row-major [][]float64.
func Rows(d mat.Matrix) [][]float64 {
	r, c := d.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		mat.Row(out[i], i, d)
	}
	return out
}

func dense(rows [][]float64) *mat.Dense {
	r, c := len(rows), len(rows[0])
	data := make([]float64, 0, r*c)
	for _, row := range rows {
		data = append(data, row...)
	}
	return mat.NewDense(r, c, data)
}
