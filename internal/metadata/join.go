package metadata

import (
	"context"
	"log/slog"

	apperrors "fluxcli/internal/errors"
	"fluxcli/pkg/contracts/domain"
)

// Joiner merges the metadata tables onto a reading table. Both tables
// are read-only; Join returns a new slice and never mutates its input.
type Joiner struct {
	valves ValveSchedule
	field  FieldMetadata
	logger *slog.Logger
}

// NewJoiner creates a joiner over the loaded tables. A nil or empty
// valve schedule disables the valve join.
func NewJoiner(valves ValveSchedule, field FieldMetadata, logger *slog.Logger) *Joiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Joiner{valves: valves, field: field, logger: logger}
}

// Join performs the inner joins.
//
// Valve join (only when a valve column is present in the readings and a
// schedule was loaded): rows at an integer valve position without a
// schedule entry are dropped; matched rows get the entry's mass, a
// chamber-area override, and an added volume. Rows with a fractional or
// unparseable valve pass through untouched for the quality filter to
// count and drop.
//
// Field join (unconditional): rows join on replicate = plot; unmatched
// rows are dropped silently. An empty plot key on the reading side of a
// non-empty table is a fatal JoinError.
func (j *Joiner) Join(ctx context.Context, readings []domain.Reading) ([]domain.Reading, error) {
	if len(readings) == 0 {
		return nil, nil
	}

	if err := j.checkJoinKey(readings); err != nil {
		return nil, err
	}

	joinValves := len(j.valves) > 0 && hasValveColumn(readings)

	before := len(readings)
	out := make([]domain.Reading, 0, len(readings))
	for _, r := range readings {
		if joinValves {
			v, integral := r.ValveInt()
			if integral {
				entry, found := j.valves[v]
				if !found {
					continue // inner join: no schedule entry, row drops
				}
				r.SampleMass = entry.Mass
				r.ChamberArea = entry.Area
				r.AddedVolume = entry.Volume
			}
		}

		entry, found := j.field[r.Replicate]
		if !found {
			continue
		}
		r.Label = entry.Treatment
		r.CoreID = entry.Core
		r.SampleDay = entry.Day
		r.SampleMonth = entry.Month

		out = append(out, r)
	}

	j.logger.InfoContext(ctx, "metadata join complete",
		"valve_join", joinValves,
		"rows_before", before,
		"rows_after", len(out),
	)
	return out, nil
}

// checkJoinKey verifies the reading table actually carries the plot
// key the field join needs.
func (j *Joiner) checkJoinKey(readings []domain.Reading) error {
	for _, r := range readings {
		if r.Replicate != "" {
			return nil
		}
	}
	return apperrors.JoinError("plot", "reading table")
}

func hasValveColumn(readings []domain.Reading) bool {
	for _, r := range readings {
		if r.Valve != nil {
			return true
		}
	}
	return false
}
