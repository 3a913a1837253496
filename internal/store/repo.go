package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("run not found")

// QueryOpts configures run queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // created_at >= From
	To     time.Time // created_at <= To
}

// Run is a persisted fit: its configuration, a summary of the simulated
// data, and the fitted parameters.
type Run struct {
	ID        string
	Sequence  int64
	CreatedAt time.Time
	Config    json.RawMessage

	Students     int
	Questions    int
	Concepts     int
	Observations int
	Segments     int
	MeanCorrect  float64

	LogLikelihood float64
	Iterations    int
	Converged     bool
	Start         []float64
	Transition    [][]float64
	Emission      [][]float64
}

// RunRepo manages fitted runs.
type RunRepo interface {
	// Save stores run, assigning ID, Sequence and CreatedAt when unset.
	Save(ctx context.Context, run *Run) error

	// Get returns the run with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns runs matching opts, newest sequence first.
	List(ctx context.Context, opts QueryOpts) ([]Run, error)

	// Prune deletes all but the N most recent runs.
	Prune(ctx context.Context, keep int) error
}
