package hmm

import (
	"errors"
	"fmt"
)

var (
	// ErrFitFailure means the input or configuration cannot be fitted.
	ErrFitFailure = errors.New("hmm fit failed")
	// ErrDivergence means the numerics broke down or the fit did not
	// converge under a strict configuration.
	ErrDivergence = errors.New("hmm fit diverged")
)

// FitError carries the EM iteration at which a fit stopped. Iteration is 0
// when the failure happened before the first iteration.
type FitError struct {
	Iteration int
	Reason    string
	Err       error
}

func (e *FitError) Error() string {
	if e.Iteration == 0 {
		return fmt.Sprintf("%v: %s", e.Err, e.Reason)
	}
	return fmt.Sprintf("%v at iteration %d: %s", e.Err, e.Iteration, e.Reason)
}

func (e *FitError) Unwrap() error { return e.Err }

func failure(reason string, args ...any) error {
	return &FitError{Reason: fmt.Sprintf(reason, args...), Err: ErrFitFailure}
}

func diverged(iteration int, reason string, args ...any) error {
	return &FitError{Iteration: iteration, Reason: fmt.Sprintf(reason, args...), Err: ErrDivergence}
}
