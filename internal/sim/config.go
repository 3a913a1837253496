package sim

import (
	"errors"
	"fmt"

	"github.com/abhisek/ktsim/internal/rng"
)

// ModelKind selects the correctness model used to score attempts.
type ModelKind string

const (
	ModelIRT ModelKind = "irt"
	ModelBKT ModelKind = "bkt"
)

// Config holds every parameter of a simulation run.
type Config struct {
	NumStudents  int `json:"num_students"`
	NumQuestions int `json:"num_questions"`
	NumConcepts  int `json:"num_concepts"`

	// PInitialMastery is the chance a concept starts mastered.
	PInitialMastery float64 `json:"p_initial_mastery"`
	// PMasteryTransition is the chance an unmastered concept becomes
	// mastered right after each attempt on one of its questions.
	PMasteryTransition float64 `json:"p_mastery_transition"`

	// PGuess and PSlip are only read by the BKT model.
	PGuess float64 `json:"p_guess"`
	PSlip  float64 `json:"p_slip"`

	Model ModelKind `json:"model"`

	Seed uint64 `json:"seed"`
	// Workers bounds parallel student simulation. 0 or 1 runs sequentially.
	Workers int `json:"workers"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		NumStudents:        10,
		NumQuestions:       300,
		NumConcepts:        5,
		PInitialMastery:    0.3,
		PMasteryTransition: 0.1,
		PGuess:             0.25,
		PSlip:              0.05,
		Model:              ModelIRT,
		Seed:               1,
		Workers:            1,
	}
}

// Validate checks every field and returns all violations joined together.
// Each violation is a *ConfigError matching ErrInvalidConfiguration.
func (c Config) Validate() error {
	var errs []error

	counts := []struct {
		name string
		v    int
	}{
		{"num_students", c.NumStudents},
		{"num_questions", c.NumQuestions},
		{"num_concepts", c.NumConcepts},
	}
	for _, n := range counts {
		if n.v <= 0 {
			errs = append(errs, &ConfigError{Field: n.name, Reason: fmt.Sprintf("must be positive, got %d", n.v)})
		}
	}

	probs := []struct {
		name string
		v    float64
	}{
		{"p_initial_mastery", c.PInitialMastery},
		{"p_mastery_transition", c.PMasteryTransition},
		{"p_guess", c.PGuess},
		{"p_slip", c.PSlip},
	}
	for _, p := range probs {
		if !rng.IsProbability(p.v) {
			errs = append(errs, &ConfigError{Field: p.name, Reason: fmt.Sprintf("must be in [0,1], got %v", p.v)})
		}
	}

	switch c.Model {
	case ModelIRT, ModelBKT:
	default:
		errs = append(errs, &ConfigError{Field: "model", Reason: fmt.Sprintf("unknown correctness model %q", c.Model)})
	}

	if c.Workers < 0 {
		errs = append(errs, &ConfigError{Field: "workers", Reason: fmt.Sprintf("must not be negative, got %d", c.Workers)})
	}

	return errors.Join(errs...)
}

// CorrectnessModel builds the model selected by c.Model.
func (c Config) CorrectnessModel() (CorrectnessModel, error) {
	switch c.Model {
	case ModelIRT:
		return DefaultIRT(), nil
	case ModelBKT:
		return BKT{Guess: c.PGuess, Slip: c.PSlip}, nil
	}
	return nil, &ConfigError{Field: "model", Reason: fmt.Sprintf("unknown correctness model %q", c.Model)}
}
