package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	apperrors "fluxcli/internal/errors"
	"fluxcli/internal/exporter"
	"fluxcli/internal/files"
	"fluxcli/internal/flux"
	"fluxcli/internal/metadata"
	"fluxcli/internal/reader"
	"fluxcli/pkg/contracts/domain"
)

// ReadStep discovers instrument files and reads them into one table.
type ReadStep struct {
	logger *slog.Logger
}

// NewReadStep creates the read step.
func NewReadStep(logger *slog.Logger) *ReadStep {
	return &ReadStep{logger: logger}
}

func (s *ReadStep) ID() string   { return "read" }
func (s *ReadStep) Name() string { return "Read instrument files" }

// Run reads every discovered file, in parallel up to the configured
// limit. A missing or malformed file is skipped and counted; the
// surviving tables are concatenated in path order so the output does
// not depend on scheduling.
func (s *ReadStep) Run(ctx context.Context, state *State) error {
	discovery := files.NewDiscovery(state.Paths.InputDir)
	found, err := discovery.FindInstrumentFiles(state.Config.Reader.FilePattern)
	if err != nil {
		return err
	}
	state.Report.FilesDiscovered = len(found)
	s.logger.InfoContext(ctx, "instrument files discovered",
		"count", len(found),
		"pattern", state.Config.Reader.FilePattern,
	)

	r := reader.New(
		state.Paths.InputDir,
		state.Config.Reader.SubsampleFraction,
		state.Config.Reader.SubsampleSeed,
	)

	perFile := make([][]domain.Reading, len(found))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(state.Config.Reader.MaxParallelReads)

	for i, file := range found {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			readings, err := r.ReadFile(file.Path)
			if err != nil {
				// Group-key derivation failures mean the whole tree is
				// laid out wrong; everything else skips just this file.
				if apperrors.IsFatal(err) {
					return err
				}
				s.logger.WarnContext(gctx, "instrument file skipped",
					"path", file.Path,
					"error", err,
				)
				mu.Lock()
				state.Report.FilesSkipped++
				mu.Unlock()
				return nil
			}

			// Subsampling breaks row spacing, so cadence is only
			// meaningful on full reads.
			if state.Config.Reader.SubsampleFraction >= 1 {
				interval := state.Config.Chamber.MeasurementInterval
				if gaps := reader.CadenceGaps(readings, interval); gaps > 0 {
					s.logger.WarnContext(gctx, "reading cadence deviates from measurement interval",
						"path", file.Path,
						"interval", interval,
						"gaps", gaps,
					)
				}
			}

			perFile[i] = readings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var all []domain.Reading
	for i := range perFile {
		if perFile[i] == nil {
			continue
		}
		state.Report.FilesProcessed++
		all = append(all, perFile[i]...)
	}
	state.Readings = all
	state.Report.RowsRead = len(all)

	s.logger.InfoContext(ctx, "instrument files read",
		"files_processed", state.Report.FilesProcessed,
		"files_skipped", state.Report.FilesSkipped,
		"rows", len(all),
	)
	return nil
}

// JoinStep merges the metadata tables onto the reading table.
type JoinStep struct {
	logger *slog.Logger
}

// NewJoinStep creates the join step.
func NewJoinStep(logger *slog.Logger) *JoinStep {
	return &JoinStep{logger: logger}
}

func (s *JoinStep) ID() string   { return "join" }
func (s *JoinStep) Name() string { return "Join metadata" }

func (s *JoinStep) Run(ctx context.Context, state *State) error {
	var valves metadata.ValveSchedule
	if state.Paths.ValveScheduleFile != "" {
		loaded, err := metadata.LoadValveSchedule(state.Paths.ValveScheduleFile, s.logger)
		if err != nil {
			// A configured but missing metadata table aborts the run.
			return err
		}
		valves = loaded
	}

	field, err := metadata.LoadFieldMetadata(state.Paths.FieldMetadataFile, s.logger)
	if err != nil {
		return err
	}

	joined, err := metadata.NewJoiner(valves, field, s.logger).Join(ctx, state.Readings)
	if err != nil {
		return err
	}
	state.Readings = joined
	state.Report.RowsJoined = len(joined)
	return nil
}

// FilterStep applies the quality filter.
type FilterStep struct {
	logger *slog.Logger
}

// NewFilterStep creates the filter step.
func NewFilterStep(logger *slog.Logger) *FilterStep {
	return &FilterStep{logger: logger}
}

func (s *FilterStep) ID() string   { return "filter" }
func (s *FilterStep) Name() string { return "Quality filter" }

func (s *FilterStep) Run(ctx context.Context, state *State) error {
	f := flux.NewFilter(state.Config.Filter, s.logger)
	state.Readings = f.Apply(ctx, state.Readings)
	state.Report.RowsFiltered = len(state.Readings)
	return nil
}

// NormalizeStep computes per-group elapsed time.
type NormalizeStep struct {
	logger *slog.Logger
}

// NewNormalizeStep creates the normalize step.
func NewNormalizeStep(logger *slog.Logger) *NormalizeStep {
	return &NormalizeStep{logger: logger}
}

func (s *NormalizeStep) ID() string   { return "normalize" }
func (s *NormalizeStep) Name() string { return "Normalize elapsed time" }

func (s *NormalizeStep) Run(ctx context.Context, state *State) error {
	state.Readings = flux.Normalize(state.Readings)
	s.logger.InfoContext(ctx, "elapsed time normalized", "rows", len(state.Readings))
	return nil
}

// EstimateStep fits per-group fluxes and aggregates the summary.
type EstimateStep struct {
	logger *slog.Logger
}

// NewEstimateStep creates the estimate step.
func NewEstimateStep(logger *slog.Logger) *EstimateStep {
	return &EstimateStep{logger: logger}
}

func (s *EstimateStep) ID() string   { return "estimate" }
func (s *EstimateStep) Name() string { return "Estimate fluxes" }

func (s *EstimateStep) Run(ctx context.Context, state *State) error {
	estimator := flux.NewEstimator(state.Config.Chamber, state.Config.Conversion, s.logger)
	results, skipped := estimator.Estimate(ctx, state.Readings)

	state.Results = flux.Aggregate(ctx, s.logger, results)
	state.Report.GroupsFitted = len(state.Results)
	state.Report.GroupsSkipped = skipped
	return nil
}

// ExportStep writes the cleaned readings and the flux summary.
type ExportStep struct {
	logger *slog.Logger
}

// NewExportStep creates the export step.
func NewExportStep(logger *slog.Logger) *ExportStep {
	return &ExportStep{logger: logger}
}

func (s *ExportStep) ID() string   { return "export" }
func (s *ExportStep) Name() string { return "Write output tables" }

func (s *ExportStep) Run(ctx context.Context, state *State) error {
	w := exporter.NewCSVWriter(state.Paths, s.logger)

	readingsPath, err := w.WriteReadings(exporter.CleanedReadingsFile, state.Readings)
	if err != nil {
		return err
	}
	summaryPath, err := w.WriteFluxSummary(exporter.FluxSummaryFile, state.Results)
	if err != nil {
		return err
	}

	state.Report.OutputPaths = []string{readingsPath, summaryPath}
	return nil
}

// DefaultSteps returns the full pipeline in execution order.
func DefaultSteps(logger *slog.Logger) []Step {
	return []Step{
		NewReadStep(logger),
		NewJoinStep(logger),
		NewFilterStep(logger),
		NewNormalizeStep(logger),
		NewEstimateStep(logger),
		NewExportStep(logger),
	}
}
