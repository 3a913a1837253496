package mastery

// Level values stored in a Vector.
const (
	Unmastered = 0
	Mastered   = 1
)

// Vector holds one binary mastery flag per concept.
type Vector []int

// NewVector returns an all-unmastered vector for n concepts.
func NewVector(n int) Vector {
	return make(Vector, n)
}

// IsMastered reports whether concept c is mastered.
func (v Vector) IsMastered(c int) bool {
	return v[c] == Mastered
}

// Skill returns the mastery flag of concept c as a skill level for the
// correctness models.
func (v Vector) Skill(c int) float64 {
	return float64(v[c])
}

// Count returns the number of mastered concepts.
func (v Vector) Count() int {
	n := 0
	for _, m := range v {
		n += m
	}
	return n
}

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Transition records a concept moving from unmastered to mastered right
// after the given question attempt.
type Transition struct {
	Student  int `json:"student"`
	Concept  int `json:"concept"`
	Question int `json:"question"`
}
