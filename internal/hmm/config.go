package hmm

// Config controls Baum-Welch estimation.
type Config struct {
	States  int `json:"states"`
	Symbols int `json:"symbols"`
	// MaxIter caps EM iterations.
	MaxIter int `json:"max_iter"`
	// Tol is the log-likelihood gain below which the fit is converged.
	Tol float64 `json:"tol"`
	// Seed drives the random initial parameters.
	Seed uint64 `json:"seed"`
	// Strict turns a fit that hits MaxIter without converging into
	// ErrDivergence instead of a model with Converged=false.
	Strict bool `json:"strict"`
}

// DefaultConfig returns a 2-state model over a 2-symbol alphabet.
func DefaultConfig() Config {
	return Config{
		States:  2,
		Symbols: 2,
		MaxIter: 100,
		Tol:     1e-4,
		Seed:    1,
	}
}

// Validate reports the first invalid field as ErrFitFailure.
func (c Config) Validate() error {
	switch {
	case c.States < 1:
		return failure("states must be positive, got %d", c.States)
	case c.Symbols < 1:
		return failure("symbols must be positive, got %d", c.Symbols)
	case c.MaxIter < 1:
		return failure("max_iter must be positive, got %d", c.MaxIter)
	case c.Tol < 0:
		return failure("tol must not be negative, got %v", c.Tol)
	}
	return nil
}
