package sim

import "math"

// DefaultIRTFloor is the guess floor of the logistic correctness curve.
const DefaultIRTFloor = 0.25

// CorrectnessModel maps a question difficulty and the student's skill on
// the question's concept to the probability of a correct answer.
type CorrectnessModel interface {
	Name() ModelKind
	PCorrect(difficulty, skill float64) float64
}

// IRT is a logistic curve in (skill - difficulty) lifted onto [Floor, 1).
// Skill is the 0/1 mastery flag.
type IRT struct {
	Floor float64
}

// DefaultIRT returns the IRT model with a 0.25 guess floor.
func DefaultIRT() IRT {
	return IRT{Floor: DefaultIRTFloor}
}

func (m IRT) Name() ModelKind { return ModelIRT }

// maxPCorrect keeps p strictly below 1 once exp underflows against 1.
var maxPCorrect = math.Nextafter(1, 0)

func (m IRT) PCorrect(difficulty, skill float64) float64 {
	p := m.Floor + (1-m.Floor)/(1+math.Exp(difficulty-skill))
	return math.Min(p, maxPCorrect)
}

// BKT ignores difficulty: a mastered concept is answered correctly unless
// the student slips, an unmastered one only by guessing.
type BKT struct {
	Guess float64
	Slip  float64
}

func (m BKT) Name() ModelKind { return ModelBKT }

func (m BKT) PCorrect(_, skill float64) float64 {
	if skill >= 1 {
		return 1 - m.Slip
	}
	return m.Guess
}
