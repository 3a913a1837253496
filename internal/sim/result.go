package sim

import "github.com/abhisek/ktsim/internal/mastery"

// Result holds the observed and ground-truth tables of one run.
type Result struct {
	Curriculum *Curriculum `json:"curriculum"`

	// Answers[s][q] is 1 when student s answered question q correctly.
	Answers [][]int `json:"answers"`
	// PCorrect[s][q] is the probability the answer was drawn with.
	PCorrect [][]float64 `json:"p_correct"`
	// KnowTrack[s][c][q] is student s's mastery of concept c when question
	// q was presented, before that attempt's transition.
	KnowTrack [][][]int `json:"know_track"`
	// Final[s][c] is the mastery after the last attempt.
	Final [][]int `json:"final"`
	// Transitions lists every learning event, ordered by student then question.
	Transitions []mastery.Transition `json:"transitions"`
}

func (r *Result) NumStudents() int  { return len(r.Answers) }
func (r *Result) NumQuestions() int { return len(r.Curriculum.Questions) }
func (r *Result) NumConcepts() int  { return len(r.Curriculum.Concepts) }

// MeanCorrect returns the fraction of correct answers over all attempts.
func (r *Result) MeanCorrect() float64 {
	total, correct := 0, 0
	for _, row := range r.Answers {
		for _, a := range row {
			correct += a
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// MeanMastered returns the average number of concepts a student had
// mastered at the end of the run.
func (r *Result) MeanMastered() float64 {
	if len(r.Final) == 0 {
		return 0
	}
	n := 0
	for _, f := range r.Final {
		n += mastery.Vector(f).Count()
	}
	return float64(n) / float64(len(r.Final))
}

// MasteryRate returns the fraction of students who finished the run with
// concept mastered.
func (r *Result) MasteryRate(concept int) float64 {
	if len(r.Final) == 0 {
		return 0
	}
	n := 0
	for _, f := range r.Final {
		n += f[concept]
	}
	return float64(n) / float64(len(r.Final))
}
