// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunState is a step of the pipeline state machine:
// idle → extracting → transforming → loading → done, with any stage able
// to move to failed. done and failed are terminal.
type RunState string

const (
	StateIdle         RunState = "idle"
	StateExtracting   RunState = "extracting"
	StateTransforming RunState = "transforming"
	StateLoading      RunState = "loading"
	StateDone         RunState = "done"
	StateFailed       RunState = "failed"
)

// Terminal reports whether no further transition is possible.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// RunSummary records the outcome of one pipeline run.
type RunSummary struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id" yaml:"run_id"`

	// Dataset is the catalog name of the dataset.
	Dataset string `json:"dataset" yaml:"dataset"`

	// Source is the path of the extracted file.
	Source string `json:"source" yaml:"source"`

	// Destination is the path of the JSON Lines output.
	Destination string `json:"destination" yaml:"destination"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	// State is the final state: done or failed.
	State RunState `json:"state" yaml:"state"`

	// ExtractedRows is the row count after extraction.
	ExtractedRows int `json:"extracted_rows" yaml:"extracted_rows"`

	// TransformedRows is the row count after transformation.
	TransformedRows int `json:"transformed_rows" yaml:"transformed_rows"`

	// FailedStage is the state the run was in when it failed. Empty on success.
	FailedStage RunState `json:"failed_stage,omitempty" yaml:"failed_stage,omitempty"`

	// ErrorKind classifies the failure. Empty on success.
	ErrorKind ErrorKind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`

	// Error is the failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Duration returns how long the run took.
func (s RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
