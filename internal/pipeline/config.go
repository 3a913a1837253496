package pipeline

import (
	"github.com/abhisek/ktsim/internal/hmm"
	"github.com/abhisek/ktsim/internal/sim"
)

// Config bundles the simulation, extraction and fitting settings of a run.
type Config struct {
	Sim sim.Config `json:"sim"`
	Fit hmm.Config `json:"fit"`
	// SkipEmptySegments drops zero-length (student, concept) segments.
	SkipEmptySegments bool `json:"skip_empty_segments"`
}

// DefaultConfig returns the reference simulation with a 2-state fit.
func DefaultConfig() Config {
	return Config{
		Sim: sim.DefaultConfig(),
		Fit: hmm.DefaultConfig(),
	}
}
