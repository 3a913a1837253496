package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_Deterministic(t *testing.T) {
	a := New(42).Stream(3)
	b := New(42).Stream(3)
	for range 100 {
		require.Equal(t, a.Normal(0, 1), b.Normal(0, 1))
		require.Equal(t, a.UniformInt(0, 7), b.UniformInt(0, 7))
		require.Equal(t, a.Bernoulli(0.4), b.Bernoulli(0.4))
	}
}

func TestStream_DistinctStreams(t *testing.T) {
	src := New(42)
	a := src.Stream(1)
	b := src.Stream(2)

	same := 0
	for range 50 {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	assert.Less(t, same, 50)
}

func TestStream_UniformIntRange(t *testing.T) {
	st := New(7).Stream(0)
	seen := make(map[int]bool)
	for range 1000 {
		v := st.UniformInt(2, 5)
		require.GreaterOrEqual(t, v, 2)
		require.Less(t, v, 5)
		seen[v] = true
	}
	assert.Len(t, seen, 3)
	assert.Equal(t, 4, st.UniformInt(4, 4))
}

func TestStream_BernoulliEdges(t *testing.T) {
	st := New(1).Stream(0)
	for range 100 {
		assert.Equal(t, 0, st.Bernoulli(0))
		assert.Equal(t, 1, st.Bernoulli(1))
	}
}

func TestStream_BernoulliRate(t *testing.T) {
	st := New(99).Stream(5)
	n, ones := 20000, 0
	for range n {
		ones += st.Bernoulli(0.3)
	}
	assert.InDelta(t, 0.3, float64(ones)/float64(n), 0.02)
}

func TestIsProbability(t *testing.T) {
	tests := []struct {
		p    float64
		want bool
	}{
		{0, true},
		{1, true},
		{0.5, true},
		{-0.01, false},
		{1.01, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsProbability(tt.p), "p=%v", tt.p)
	}
}
