package flux

import (
	"context"
	"log/slog"

	"fluxcli/internal/config"
	"fluxcli/pkg/contracts/domain"
)

// Filter drops physically invalid or incomplete readings. Predicates
// commute; they are applied in a fixed order only so the per-predicate
// row counts in the log stay comparable between runs.
type Filter struct {
	co2Ceiling float64
	logger     *slog.Logger
}

// NewFilter creates a quality filter with the configured thresholds.
func NewFilter(cfg config.FilterConfig, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{co2Ceiling: cfg.CO2CeilingPPM, logger: logger}
}

// Apply runs the row-drop predicates, logging the row count before and
// after each. It never fails: the result may legitimately be empty.
func (f *Filter) Apply(ctx context.Context, readings []domain.Reading) []domain.Reading {
	readings = f.applyPredicate(ctx, readings, "integer_valve", keepIntegerValve)
	readings = f.applyPredicate(ctx, readings, "co2_ceiling", f.keepBelowCeiling)
	readings = f.applyPredicate(ctx, readings, "group_id", keepGrouped)
	return readings
}

func (f *Filter) applyPredicate(ctx context.Context, readings []domain.Reading, name string, keep func(domain.Reading) bool) []domain.Reading {
	before := len(readings)
	out := make([]domain.Reading, 0, before)
	for _, r := range readings {
		if keep(r) {
			out = append(out, r)
		}
	}
	f.logger.InfoContext(ctx, "quality filter predicate applied",
		"predicate", name,
		"rows_before", before,
		"rows_after", len(out),
		"rows_dropped", before-len(out),
	)
	return out
}

// keepIntegerValve drops readings sampled while the analyzer was
// switching streams: a fractional solenoid value is physically
// meaningless. Readings without a valve column pass.
func keepIntegerValve(r domain.Reading) bool {
	if r.Valve == nil {
		return true
	}
	_, integral := r.ValveInt()
	return integral
}

// keepBelowCeiling drops readings whose primary gas concentration
// exceeds the sanity ceiling. NaN concentrations pass here and fall out
// of the regression later.
func (f *Filter) keepBelowCeiling(r domain.Reading) bool {
	return !(r.CO2 > f.co2Ceiling)
}

// keepGrouped drops readings without a complete group key.
func keepGrouped(r domain.Reading) bool {
	return r.HasGroup()
}
