package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fluxcli/internal/config"
	"fluxcli/internal/infrastructure"
)

// Runner executes the steps sequentially against one shared State.
type Runner struct {
	steps  []Step
	logger *slog.Logger
}

// NewRunner creates a runner over the given steps.
func NewRunner(steps []Step, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Runner{steps: steps, logger: logger}
}

// Run executes the pipeline. The first step error stops the run; the
// partially filled report is returned either way so the caller can
// still surface counts.
func (r *Runner) Run(ctx context.Context, cfg *config.Config, paths *config.Paths) (*Report, error) {
	runID := infrastructure.RunIDFromContext(ctx)
	if runID == "" {
		runID = infrastructure.NewRunID()
		ctx = infrastructure.WithRunID(ctx, runID)
	}

	state := &State{
		Config: cfg,
		Paths:  paths,
		Report: Report{RunID: runID},
	}

	start := time.Now()
	r.logger.InfoContext(ctx, "pipeline started",
		"steps", len(r.steps),
		"input_dir", paths.InputDir,
		"output_dir", paths.OutputDir,
		"measurement_interval", cfg.Chamber.MeasurementInterval,
		"subsample_fraction", cfg.Reader.SubsampleFraction,
	)

	states := make([]*StepState, len(r.steps))
	for i, step := range r.steps {
		states[i] = &StepState{
			ID:     step.ID(),
			Name:   step.Name(),
			Status: StepStatusPending,
		}
	}

	for i, step := range r.steps {
		stepState := states[i]
		stepState.Status = StepStatusActive
		stepState.StartTime = time.Now()
		r.logger.InfoContext(ctx, "step started", "step", step.ID())

		if err := step.Run(ctx, state); err != nil {
			stepState.Status = StepStatusFailed
			stepState.EndTime = time.Now()
			stepState.Err = err
			r.logger.ErrorContext(ctx, "step failed",
				"step", step.ID(),
				"duration", stepState.Duration(),
				"error", err,
			)
			for _, skipped := range states[i+1:] {
				r.logger.WarnContext(ctx, "step not run",
					"step", skipped.ID,
					"status", skipped.Status,
				)
			}
			return &state.Report, fmt.Errorf("step %s: %w", step.ID(), err)
		}

		stepState.Status = StepStatusCompleted
		stepState.EndTime = time.Now()
		r.logger.InfoContext(ctx, "step completed",
			"step", step.ID(),
			"duration", stepState.Duration(),
		)
	}

	r.logger.InfoContext(ctx, "pipeline completed",
		"duration", time.Since(start),
		"files_processed", state.Report.FilesProcessed,
		"files_skipped", state.Report.FilesSkipped,
		"rows_read", state.Report.RowsRead,
		"rows_after_filter", state.Report.RowsFiltered,
		"groups_fitted", state.Report.GroupsFitted,
		"groups_skipped", state.Report.GroupsSkipped,
	)
	return &state.Report, nil
}
