package mastery

// Tracker owns a single student's mastery vector for one run.
// Mastery only moves forward: once a concept is learned it stays learned.
type Tracker struct {
	student     int
	state       Vector
	transitions []Transition
}

// NewTracker creates a tracker seeded with the student's initial mastery.
func NewTracker(student int, initial Vector) *Tracker {
	return &Tracker{
		student: student,
		state:   initial.Clone(),
	}
}

// State returns the live mastery vector. Callers must not modify it.
func (t *Tracker) State() Vector {
	return t.state
}

// Snapshot copies the current vector into dst, one entry per concept.
func (t *Tracker) Snapshot(dst []int) {
	copy(dst, t.state)
}

// Skill returns the skill level of concept c.
func (t *Tracker) Skill(c int) float64 {
	return t.state.Skill(c)
}

// Learn marks concept c as mastered after the given question attempt.
// Returns the Transition when the flag changed, nil if c was already mastered.
func (t *Tracker) Learn(c, question int) *Transition {
	if t.state.IsMastered(c) {
		return nil
	}
	t.state[c] = Mastered
	tr := Transition{
		Student:  t.student,
		Concept:  c,
		Question: question,
	}
	t.transitions = append(t.transitions, tr)
	return &tr
}

// Transitions returns every transition recorded so far, in attempt order.
func (t *Tracker) Transitions() []Transition {
	return t.transitions
}
