package sim

import (
	"fmt"
	"math"

	"github.com/abhisek/ktsim/internal/rng"
)

// Concept is a skill area with a base difficulty shared by its questions.
type Concept struct {
	ID             int     `json:"id"`
	BaseDifficulty float64 `json:"base_difficulty"`
}

// Question belongs to exactly one concept. Questions are presented in ID
// order, so ID order is also temporal order.
type Question struct {
	ID         int     `json:"id"`
	Concept    int     `json:"concept"`
	Difficulty float64 `json:"difficulty"`
}

// Curriculum is the fixed set of concepts and questions all students see.
type Curriculum struct {
	Concepts  []Concept  `json:"concepts"`
	Questions []Question `json:"questions"`
}

// NewCurriculum validates a caller-built curriculum. IDs must match slice
// positions, every question must reference an existing concept and every
// difficulty must be finite.
func NewCurriculum(concepts []Concept, questions []Question) (*Curriculum, error) {
	cur := &Curriculum{Concepts: concepts, Questions: questions}
	if err := cur.validate(); err != nil {
		return nil, err
	}
	return cur, nil
}

func (c *Curriculum) validate() error {
	if len(c.Concepts) == 0 {
		return &ConfigError{Field: "concepts", Reason: "must not be empty"}
	}
	if len(c.Questions) == 0 {
		return &ConfigError{Field: "questions", Reason: "must not be empty"}
	}
	for i, cn := range c.Concepts {
		if cn.ID != i {
			return &ConfigError{Field: "concepts", Reason: fmt.Sprintf("concept at %d has id %d", i, cn.ID)}
		}
		if !finite(cn.BaseDifficulty) {
			return &ConfigError{Field: "concepts", Reason: fmt.Sprintf("concept %d has non-finite base difficulty", i)}
		}
	}
	for i, q := range c.Questions {
		if q.ID != i {
			return &ConfigError{Field: "questions", Reason: fmt.Sprintf("question at %d has id %d", i, q.ID)}
		}
		if q.Concept < 0 || q.Concept >= len(c.Concepts) {
			return &ConfigError{Field: "questions", Reason: fmt.Sprintf("question %d references unknown concept %d", i, q.Concept)}
		}
		if !finite(q.Difficulty) {
			return &ConfigError{Field: "questions", Reason: fmt.Sprintf("question %d has non-finite difficulty", i)}
		}
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// DrawCurriculum samples concept difficulties, question concepts and
// question difficulties, in that order.
func DrawCurriculum(numConcepts, numQuestions int, r rng.Rand) *Curriculum {
	concepts := make([]Concept, numConcepts)
	for c := range concepts {
		concepts[c] = Concept{ID: c, BaseDifficulty: r.Normal(0, 1)}
	}

	questions := make([]Question, numQuestions)
	for q := range questions {
		questions[q] = Question{ID: q, Concept: r.UniformInt(0, numConcepts)}
	}
	for q := range questions {
		base := concepts[questions[q].Concept].BaseDifficulty
		questions[q].Difficulty = base + r.Normal(0, 1)
	}

	return &Curriculum{Concepts: concepts, Questions: questions}
}

// QuestionConcepts returns the concept of every question, indexed by question.
func (c *Curriculum) QuestionConcepts() []int {
	out := make([]int, len(c.Questions))
	for i, q := range c.Questions {
		out[i] = q.Concept
	}
	return out
}

// QuestionsFor returns the ascending question IDs belonging to concept.
func (c *Curriculum) QuestionsFor(concept int) []int {
	var out []int
	for _, q := range c.Questions {
		if q.Concept == concept {
			out = append(out, q.ID)
		}
	}
	return out
}
