package flux

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"fluxcli/internal/config"
	apperrors "fluxcli/internal/errors"
	"fluxcli/pkg/contracts/domain"
)

// Estimator reduces each measurement group to a single flux value: an
// OLS fit of concentration versus elapsed seconds, converted with the
// chamber geometry and the configured gas constants.
type Estimator struct {
	chamber config.ChamberConfig
	conv    config.ConversionConfig
	logger  *slog.Logger
}

// NewEstimator creates an estimator over the run-wide chamber geometry
// and conversion constants. Valve-schedule attributes on the readings
// override the area and mass, and add to the volume, per group.
func NewEstimator(chamber config.ChamberConfig, conv config.ConversionConfig, logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{chamber: chamber, conv: conv, logger: logger}
}

// Estimate fits one flux per measurement group. Groups with fewer than
// two distinct time points are skipped, logged, and counted — never
// fatal. Results are ordered by group key.
func (e *Estimator) Estimate(ctx context.Context, readings []domain.Reading) ([]domain.FluxResult, int) {
	groups := make(map[domain.FluxGroupKey][]domain.Reading)
	for _, r := range readings {
		valve, _ := r.ValveInt()
		key := domain.FluxGroupKey{Treatment: r.Treatment, Replicate: r.Replicate, Valve: valve}
		groups[key] = append(groups[key], r)
	}

	keys := make([]domain.FluxGroupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	var (
		results []domain.FluxResult
		skipped int
	)
	for _, key := range keys {
		result, err := e.estimateGroup(key, groups[key])
		if err != nil {
			skipped++
			e.logger.WarnContext(ctx, "measurement group skipped",
				"group", key.String(),
				"error", err,
			)
			continue
		}
		results = append(results, result)
	}

	e.logger.InfoContext(ctx, "flux estimation complete",
		"groups", len(groups),
		"fitted", len(results),
		"skipped", skipped,
	)
	return results, skipped
}

func (e *Estimator) estimateGroup(key domain.FluxGroupKey, group []domain.Reading) (domain.FluxResult, error) {
	xs := make([]float64, len(group))
	ys := make([]float64, len(group))
	for i, r := range group {
		xs[i] = r.ElapsedMin * 60 // regression runs over seconds
		ys[i] = r.CO2
	}

	slope, _, ok := fitLine(xs, ys)
	if !ok {
		return domain.FluxResult{}, apperrors.RegressionUndefined(key.String(), distinctValues(xs, ys))
	}

	area := e.chamber.ChamberArea
	volume := e.chamber.SystemVolume
	mass := 1.0
	for _, r := range group {
		if r.ChamberArea != nil {
			area = *r.ChamberArea
			break
		}
	}
	for _, r := range group {
		if r.AddedVolume != nil {
			volume += *r.AddedVolume
			break
		}
	}
	for _, r := range group {
		if r.SampleMass != nil {
			mass = *r.SampleMass
			break
		}
	}

	meanTair := meanAirTemp(group)

	// Ideal-gas correction of the raw ppm/s trend, then scale into the
	// configured output convention.
	resp := slope * volume / area / mass *
		e.conv.PressureKPa / (e.conv.GasConstant * (e.conv.KelvinOffset + meanTair))
	flux := resp / e.conv.MoleFractionScale *
		e.conv.CarbonMolarMass * e.conv.MassUnitScale * e.conv.AreaUnitScale * e.conv.SecondsPerDay

	return domain.FluxResult{
		Treatment:     key.Treatment,
		Replicate:     key.Replicate,
		Valve:         key.Valve,
		SampleCount:   len(group),
		MeanAirTemp:   meanTair,
		Slope:         slope,
		Flux:          flux,
		ChamberVolume: volume,
		ChamberArea:   area,
	}, nil
}

func meanAirTemp(group []domain.Reading) float64 {
	var sum float64
	var n int
	for _, r := range group {
		if math.IsNaN(r.AirTemp) {
			continue
		}
		sum += r.AirTemp
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
