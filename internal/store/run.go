package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// runRepo implements RunRepo with raw SQL.
type runRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

// timeLayout is fixed-width so created_at compares correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const runColumns = `id, sequence, created_at, config, students, questions, concepts,
	observations, segments, mean_correct, log_likelihood, iterations, converged,
	start, transition, emission`

func (r *runRepo) Save(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Sequence == 0 {
		seq, err := r.seq.Next(ctx)
		if err != nil {
			return err
		}
		run.Sequence = seq
	}
	if len(run.Config) == 0 {
		run.Config = json.RawMessage("{}")
	}

	start, err := json.Marshal(run.Start)
	if err != nil {
		return fmt.Errorf("marshal start: %w", err)
	}
	trans, err := json.Marshal(run.Transition)
	if err != nil {
		return fmt.Errorf("marshal transition: %w", err)
	}
	emit, err := json.Marshal(run.Emission)
	if err != nil {
		return fmt.Errorf("marshal emission: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Sequence, run.CreatedAt.UTC().Format(timeLayout), string(run.Config),
		run.Students, run.Questions, run.Concepts, run.Observations, run.Segments,
		run.MeanCorrect, run.LogLikelihood, run.Iterations, run.Converged,
		string(start), string(trans), string(emit),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (r *runRepo) Get(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

func (r *runRepo) List(ctx context.Context, opts QueryOpts) ([]Run, error) {
	var (
		where []string
		args  []any
	)
	if opts.After > 0 {
		where = append(where, "sequence > ?")
		args = append(args, opts.After)
	}
	if opts.Before > 0 {
		where = append(where, "sequence < ?")
		args = append(args, opts.Before)
	}
	if !opts.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, opts.From.UTC().Format(timeLayout))
	}
	if !opts.To.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, opts.To.UTC().Format(timeLayout))
	}

	q := `SELECT ` + runColumns + ` FROM runs`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sequence DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

func (r *runRepo) Prune(ctx context.Context, keep int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM runs WHERE sequence NOT IN (SELECT sequence FROM runs ORDER BY sequence DESC LIMIT ?)`,
		keep,
	)
	if err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run                Run
		createdAt, cfg     string
		start, trans, emit string
	)
	err := s.Scan(
		&run.ID, &run.Sequence, &createdAt, &cfg,
		&run.Students, &run.Questions, &run.Concepts, &run.Observations, &run.Segments,
		&run.MeanCorrect, &run.LogLikelihood, &run.Iterations, &run.Converged,
		&start, &trans, &emit,
	)
	if err != nil {
		return nil, err
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	run.CreatedAt = t
	run.Config = json.RawMessage(cfg)

	if err := json.Unmarshal([]byte(start), &run.Start); err != nil {
		return nil, fmt.Errorf("unmarshal start: %w", err)
	}
	if err := json.Unmarshal([]byte(trans), &run.Transition); err != nil {
		return nil, fmt.Errorf("unmarshal transition: %w", err)
	}
	if err := json.Unmarshal([]byte(emit), &run.Emission); err != nil {
		return nil, fmt.Errorf("unmarshal emission: %w", err)
	}
	return &run, nil
}
