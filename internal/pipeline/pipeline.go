// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences extract → transform → load for one dataset.
// A Pipeline is single-shot: it moves idle → extracting → transforming →
// loading → done, or to failed from any stage, and never back.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/occurrence-etl/internal/extract"
	"github.com/pdiddy/occurrence-etl/internal/load"
	"github.com/pdiddy/occurrence-etl/internal/transform"
	"github.com/pdiddy/occurrence-etl/pkg/types"
)

// ErrAlreadyRun is returned by Run on a pipeline that has already run.
var ErrAlreadyRun = errors.New("pipeline already run")

// Recorder persists run summaries. Recording is advisory: failures are
// logged and never change the run outcome.
type Recorder interface {
	RecordRun(ctx context.Context, summary types.RunSummary) error
}

// StageError wraps the error that moved a run to failed with the stage
// it failed in.
type StageError struct {
	Dataset string
	Stage   types.RunState
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Dataset, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress sets the writer receiving human-readable progress lines.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) { p.progress = w }
}

// WithLogger sets the structured diagnostic logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithRecorder sets where run summaries are persisted.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithClock overrides the time source used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// Pipeline runs one dataset through extract, transform and load.
type Pipeline struct {
	dataset  types.DatasetConfig
	keep     transform.RowPredicate
	progress io.Writer
	log      zerolog.Logger
	recorder Recorder
	now      func() time.Time

	state   types.RunState
	history []types.RunState
}

// New builds a pipeline for a resolved dataset. SourcePath and OutputPath
// must be set; the catalog resolves them from the configured roots.
func New(ds types.DatasetConfig, opts ...Option) (*Pipeline, error) {
	if ds.Name == "" {
		return nil, fmt.Errorf("dataset name is required")
	}
	if ds.SourcePath == "" || ds.OutputPath == "" {
		return nil, fmt.Errorf("dataset %s: source and output paths must be set", ds.Name)
	}
	if len(ds.Columns) == 0 {
		return nil, fmt.Errorf("dataset %s: no columns selected", ds.Name)
	}
	keep, err := transform.PredicateFor(ds.Columns, ds.Cleaning)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", ds.Name, err)
	}

	p := &Pipeline{
		dataset:  ds,
		keep:     keep,
		progress: io.Discard,
		log:      zerolog.Nop(),
		now:      time.Now,
		state:    types.StateIdle,
		history:  []types.RunState{types.StateIdle},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// State returns the current state.
func (p *Pipeline) State() types.RunState { return p.state }

// History returns every state the pipeline has been in, in order.
func (p *Pipeline) History() []types.RunState {
	return append([]types.RunState(nil), p.history...)
}

// Run executes the pipeline once. It returns the run summary together
// with a *StageError when any stage fails. Context cancellation is
// honoured between stages.
func (p *Pipeline) Run(ctx context.Context) (types.RunSummary, error) {
	if p.state != types.StateIdle {
		return types.RunSummary{}, ErrAlreadyRun
	}

	summary := types.RunSummary{
		RunID:       uuid.NewString(),
		Dataset:     p.dataset.Name,
		Source:      p.dataset.SourcePath,
		Destination: p.dataset.OutputPath,
		StartedAt:   p.now().UTC(),
	}
	log := p.log.With().Str("dataset", summary.Dataset).Str("run_id", summary.RunID).Logger()

	err := p.run(ctx, &summary, log)
	summary.FinishedAt = p.now().UTC()

	if err != nil {
		var se *StageError
		if errors.As(err, &se) {
			summary.FailedStage = se.Stage
		}
		summary.ErrorKind = types.KindOf(err)
		summary.Error = err.Error()
		p.transition(types.StateFailed, log)
		log.Error().Err(err).Str("stage", string(summary.FailedStage)).Msg("pipeline failed")
	} else {
		p.transition(types.StateDone, log)
	}
	summary.State = p.state

	p.record(ctx, summary, log)
	return summary, err
}

func (p *Pipeline) run(ctx context.Context, summary *types.RunSummary, log zerolog.Logger) error {
	if err := p.enter(ctx, types.StateExtracting, log); err != nil {
		return err
	}
	fmt.Fprintln(p.progress, "Extracting...")
	tbl, err := extract.Extract(p.dataset.SourcePath)
	if err != nil {
		return p.fail(err)
	}
	summary.ExtractedRows = tbl.Len()
	fmt.Fprintf(p.progress, "Extracted %d rows\n", tbl.Len())
	log.Info().Int("rows", tbl.Len()).Int("columns", len(tbl.Columns)).Msg("extracted")

	if err := p.enter(ctx, types.StateTransforming, log); err != nil {
		return err
	}
	fmt.Fprintln(p.progress, "Transforming...")
	cleaned, err := transform.Transform(tbl, p.dataset.Columns, p.keep)
	if err != nil {
		return p.fail(err)
	}
	summary.TransformedRows = cleaned.Len()
	fmt.Fprintf(p.progress, "Transformed %d rows\n", cleaned.Len())
	log.Info().Int("rows", cleaned.Len()).Int("dropped", tbl.Len()-cleaned.Len()).Msg("transformed")

	if err := p.enter(ctx, types.StateLoading, log); err != nil {
		return err
	}
	fmt.Fprintln(p.progress, "Loading...")
	if err := load.Load(cleaned, p.dataset.OutputPath); err != nil {
		return p.fail(err)
	}
	fmt.Fprintf(p.progress, "Saved processed data to %s\n", p.dataset.OutputPath)
	fmt.Fprintln(p.progress, "Pipeline complete!")
	log.Info().Str("destination", p.dataset.OutputPath).Msg("loaded")

	return nil
}

// enter moves to next unless the context is done, in which case the run
// fails in the stage it was about to enter.
func (p *Pipeline) enter(ctx context.Context, next types.RunState, log zerolog.Logger) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Dataset: p.dataset.Name, Stage: next, Err: err}
	}
	p.transition(next, log)
	return nil
}

func (p *Pipeline) fail(err error) error {
	return &StageError{Dataset: p.dataset.Name, Stage: p.state, Err: err}
}

func (p *Pipeline) transition(next types.RunState, log zerolog.Logger) {
	log.Debug().Str("from", string(p.state)).Str("to", string(next)).Msg("state")
	p.state = next
	p.history = append(p.history, next)
}

func (p *Pipeline) record(ctx context.Context, summary types.RunSummary, log zerolog.Logger) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.RecordRun(context.WithoutCancel(ctx), summary); err != nil {
		log.Warn().Err(err).Msg("recording run history failed")
	}
}
