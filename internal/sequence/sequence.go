// Package sequence reshapes an answer table into per-(student, concept)
// observation segments for sequence-model fitting.
//
// Segments are emitted with students in the outer loop and concepts in the
// inner loop, both ascending. Within a segment, observations keep question
// order. Segment k of Input.Lengths is Input.Segments[k].
package sequence

import (
	"fmt"
)

// Alphabet size of the one-hot encoding: 0 = incorrect, 1 = correct.
const NumSymbols = 2

// OneHot is a single encoded observation.
type OneHot [NumSymbols]float64

// Encode maps an answer value to its one-hot vector.
func Encode(answer int) (OneHot, error) {
	switch answer {
	case 0:
		return OneHot{1, 0}, nil
	case 1:
		return OneHot{0, 1}, nil
	}
	return OneHot{}, fmt.Errorf("answer value %d is not 0 or 1", answer)
}

// Symbol returns the index of the hot entry.
func (o OneHot) Symbol() int {
	if o[1] == 1 {
		return 1
	}
	return 0
}

// Valid reports whether exactly one entry is 1 and the rest are 0.
func (o OneHot) Valid() bool {
	ones := 0
	for _, v := range o {
		switch v {
		case 1:
			ones++
		case 0:
		default:
			return false
		}
	}
	return ones == 1
}

// Segment locates one (student, concept) subsequence in the flat stream.
type Segment struct {
	Student int `json:"student"`
	Concept int `json:"concept"`
	Offset  int `json:"offset"`
	Length  int `json:"length"`
}

// Input is the fitter-ready flat observation stream.
type Input struct {
	Observations []OneHot
	Lengths      []int
	Segments     []Segment
}

// Options controls extraction.
type Options struct {
	// SkipEmpty drops segments for concepts that own no questions. When
	// false they are kept with length 0.
	SkipEmpty bool
}

// Extract builds the flat observation stream from answers[s][q] given the
// concept of every question. numConcepts fixes the inner loop range, so
// concepts without questions still produce (possibly skipped) segments.
func Extract(answers [][]int, questionConcept []int, numConcepts int, opts Options) (*Input, error) {
	byConcept := make([][]int, numConcepts)
	for q, c := range questionConcept {
		if c < 0 || c >= numConcepts {
			return nil, fmt.Errorf("question %d has concept %d outside [0,%d)", q, c, numConcepts)
		}
		byConcept[c] = append(byConcept[c], q)
	}

	in := &Input{
		Observations: make([]OneHot, 0, len(answers)*len(questionConcept)),
	}
	for s, row := range answers {
		if len(row) != len(questionConcept) {
			return nil, fmt.Errorf("student %d has %d answers, want %d", s, len(row), len(questionConcept))
		}
		for c, qs := range byConcept {
			if len(qs) == 0 && opts.SkipEmpty {
				continue
			}
			seg := Segment{Student: s, Concept: c, Offset: len(in.Observations), Length: len(qs)}
			for _, q := range qs {
				o, err := Encode(row[q])
				if err != nil {
					return nil, fmt.Errorf("student %d question %d: %w", s, q, err)
				}
				in.Observations = append(in.Observations, o)
			}
			in.Lengths = append(in.Lengths, seg.Length)
			in.Segments = append(in.Segments, seg)
		}
	}
	return in, nil
}

// Rows returns the observations as a [][]float64 matrix, one row per step.
func (in *Input) Rows() [][]float64 {
	out := make([][]float64, len(in.Observations))
	for i := range in.Observations {
		out[i] = in.Observations[i][:]
	}
	return out
}

// Symbols returns the observations as symbol indices.
func (in *Input) Symbols() []int {
	out := make([]int, len(in.Observations))
	for i, o := range in.Observations {
		out[i] = o.Symbol()
	}
	return out
}

// Total returns the sum of all segment lengths.
func (in *Input) Total() int {
	n := 0
	for _, l := range in.Lengths {
		n += l
	}
	return n
}

// Segment returns the observations of segment k.
func (in *Input) Segment(k int) []OneHot {
	seg := in.Segments[k]
	return in.Observations[seg.Offset : seg.Offset+seg.Length]
}
