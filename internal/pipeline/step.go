package pipeline

import (
	"context"
	"time"

	"fluxcli/internal/config"
	"fluxcli/pkg/contracts/domain"
)

// Step is a single pipeline stage.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() string

	// Name returns the human-readable name for this step.
	Name() string

	// Run executes the step against the shared run state.
	Run(ctx context.Context, state *State) error
}

// State is the data threaded through the steps of one run.
type State struct {
	Config *config.Config
	Paths  *config.Paths

	// Readings is the current reading table; each step that transforms
	// it replaces the slice.
	Readings []domain.Reading

	// Results is the flux summary produced by the estimate step.
	Results []domain.FluxResult

	Report Report
}

// Report aggregates the per-run counts surfaced at exit.
type Report struct {
	RunID string

	FilesDiscovered int
	FilesProcessed  int
	FilesSkipped    int

	RowsRead     int
	RowsJoined   int
	RowsFiltered int

	GroupsFitted  int
	GroupsSkipped int

	OutputPaths []string
}

// StepStatus tracks one step through its lifecycle.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// StepState is the runtime bookkeeping for one step.
type StepState struct {
	ID        string
	Name      string
	Status    StepStatus
	StartTime time.Time
	EndTime   time.Time
	Err       error
}

// Duration returns how long the step ran.
func (s *StepState) Duration() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}
