package flux

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluxcli/internal/config"
	"fluxcli/pkg/contracts/domain"
)

func testChamber() config.ChamberConfig {
	return config.ChamberConfig{
		SystemVolume:        1000,
		ChamberArea:         10,
		MeasurementInterval: 10 * time.Second,
	}
}

func testConversion() config.ConversionConfig {
	return config.Default().Conversion
}

// linearGroup builds readings with C(t) = 400 + slope*t over t seconds,
// already time-normalized.
func linearGroup(treatment, replicate string, valve float64, slope float64, seconds []float64) []domain.Reading {
	readings := make([]domain.Reading, 0, len(seconds))
	for _, t := range seconds {
		r := valveReading(treatment, replicate, valve)
		r.ElapsedMin = t / 60
		r.CO2 = 400 + slope*t
		r.AirTemp = 20
		readings = append(readings, r)
	}
	return readings
}

func TestEstimateKnownFlux(t *testing.T) {
	seconds := []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	readings := linearGroup("A", "1", 1, 0.01, seconds)

	e := NewEstimator(testChamber(), testConversion(), testLogger())
	results, skipped := e.Estimate(context.Background(), readings)

	require.Len(t, results, 1)
	assert.Zero(t, skipped)

	result := results[0]
	assert.Equal(t, "A", result.Treatment)
	assert.Equal(t, "1", result.Replicate)
	assert.Equal(t, 1, result.Valve)
	assert.Equal(t, len(seconds), result.SampleCount)
	assert.InDelta(t, 20.0, result.MeanAirTemp, 1e-9)
	assert.InDelta(t, 0.01, result.Slope, 1e-9)
	assert.Equal(t, 1000.0, result.ChamberVolume)
	assert.Equal(t, 10.0, result.ChamberArea)

	// Same closed-form conversion the estimator applies, evaluated
	// against the known slope.
	conv := testConversion()
	resp := 0.01 * 1000 / 10 / 1 * conv.PressureKPa / (conv.GasConstant * (conv.KelvinOffset + 20))
	expected := resp / conv.MoleFractionScale * conv.CarbonMolarMass *
		conv.MassUnitScale * conv.AreaUnitScale * conv.SecondsPerDay
	assert.InDelta(t, expected, result.Flux, math.Abs(expected)*1e-9)
}

func TestEstimateUsesValveScheduleOverrides(t *testing.T) {
	readings := linearGroup("A", "1", 1, 0.01, []float64{0, 10, 20, 30})
	area := 12.0
	volume := 100.0
	mass := 2.5
	for i := range readings {
		readings[i].ChamberArea = &area
		readings[i].AddedVolume = &volume
		readings[i].SampleMass = &mass
	}

	e := NewEstimator(testChamber(), testConversion(), testLogger())
	results, skipped := e.Estimate(context.Background(), readings)

	require.Len(t, results, 1)
	assert.Zero(t, skipped)
	assert.Equal(t, 12.0, results[0].ChamberArea)
	assert.Equal(t, 1100.0, results[0].ChamberVolume)

	// Same trend through half the footprint, more volume, and a 2.5x
	// mass divisor.
	base, _ := e.Estimate(context.Background(), linearGroup("A", "1", 1, 0.01, []float64{0, 10, 20, 30}))
	require.Len(t, base, 1)
	scale := (1100.0 / 12.0 / 2.5) / (1000.0 / 10.0)
	assert.InDelta(t, base[0].Flux*scale, results[0].Flux, math.Abs(results[0].Flux)*1e-9)
}

func TestEstimateSkipsDegenerateGroups(t *testing.T) {
	healthy := linearGroup("A", "1", 1, 0.01, []float64{0, 10, 20})
	// All rows of this group share one time point; the regression is
	// undefined.
	flat := linearGroup("A", "1", 2, 0.01, []float64{30, 30, 30})

	e := NewEstimator(testChamber(), testConversion(), testLogger())
	results, skipped := e.Estimate(context.Background(), append(healthy, flat...))

	require.Len(t, results, 1)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, results[0].Valve)
}

func TestEstimateGroupsByValve(t *testing.T) {
	readings := append(
		linearGroup("A", "1", 1, 0.01, []float64{0, 10, 20}),
		linearGroup("A", "1", 2, 0.02, []float64{30, 40, 50})...,
	)

	e := NewEstimator(testChamber(), testConversion(), testLogger())
	results, skipped := e.Estimate(context.Background(), readings)

	require.Len(t, results, 2)
	assert.Zero(t, skipped)
	assert.Equal(t, 1, results[0].Valve)
	assert.Equal(t, 2, results[1].Valve)
	assert.InDelta(t, 0.01, results[0].Slope, 1e-9)
	assert.InDelta(t, 0.02, results[1].Slope, 1e-9)
}

func TestEstimateReadingsWithoutValve(t *testing.T) {
	readings := linearGroup("A", "1", 0, 0.01, []float64{0, 10, 20})
	for i := range readings {
		readings[i].Valve = nil
	}

	e := NewEstimator(testChamber(), testConversion(), testLogger())
	results, _ := e.Estimate(context.Background(), readings)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Valve)
}

func TestEstimateMeanAirTempIgnoresNaN(t *testing.T) {
	readings := linearGroup("A", "1", 1, 0.01, []float64{0, 10, 20, 30})
	readings[0].AirTemp = math.NaN()
	readings[1].AirTemp = 18
	readings[2].AirTemp = 22
	readings[3].AirTemp = math.NaN()

	e := NewEstimator(testChamber(), testConversion(), testLogger())
	results, _ := e.Estimate(context.Background(), readings)
	require.Len(t, results, 1)
	assert.InDelta(t, 20.0, results[0].MeanAirTemp, 1e-9)
}

func TestEstimateEmptyInput(t *testing.T) {
	e := NewEstimator(testChamber(), testConversion(), testLogger())
	results, skipped := e.Estimate(context.Background(), nil)
	assert.Empty(t, results)
	assert.Zero(t, skipped)
}
