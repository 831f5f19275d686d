package domain

import (
	"fmt"
	"math"
	"time"
)

// Reading is one timestamped analyzer record. Instances are produced by
// the reader and enriched (never mutated in place) by later pipeline
// stages: each stage returns a new slice.
type Reading struct {
	Timestamp time.Time `csv:"timestamp"`

	// Gas mole fractions in ppm. NaN when the column was absent or the
	// field failed to parse; validation happens in the quality filter,
	// not at read time.
	CO2 float64 `csv:"co2_ppm"`
	CH4 float64 `csv:"ch4_ppm"`
	H2O float64 `csv:"h2o_ppm"`

	// AirTemp is the chamber air temperature in degrees Celsius.
	AirTemp float64 `csv:"air_temp_c"`

	// Valve is the raw solenoid position. Nil when the instrument file
	// carries no valve column. Fractional values mean the analyzer was
	// sampled mid-switch.
	Valve *float64 `csv:"valve"`

	// Source identification, stamped by the reader.
	SourceFile string `csv:"source_file"`
	SourceDir  string `csv:"source_dir"`

	// Group key derived from the storage path.
	Treatment string `csv:"treatment"`
	Replicate string `csv:"replicate"`

	// Attributes attached by the field-metadata join.
	Label       string `csv:"label,omitempty"`
	CoreID      string `csv:"core_id,omitempty"`
	SampleDay   int    `csv:"sample_day,omitempty"`
	SampleMonth int    `csv:"sample_month,omitempty"`

	// Chamber attributes attached by the valve-schedule join. Nil means
	// the run-wide configured value applies.
	SampleMass  *float64 `csv:"sample_mass,omitempty"`
	ChamberArea *float64 `csv:"chamber_area,omitempty"`
	AddedVolume *float64 `csv:"added_volume,omitempty"`

	// ElapsedMin is minutes since the first reading of this reading's
	// measurement group. Zero until the time normalizer has run.
	ElapsedMin float64 `csv:"elapsed_min"`
}

// GroupKey identifies a treatment/replicate measurement group.
type GroupKey struct {
	Treatment string
	Replicate string
}

// Key returns the group key of the reading.
func (r Reading) Key() GroupKey {
	return GroupKey{Treatment: r.Treatment, Replicate: r.Replicate}
}

// String renders the key in treatment/replicate form.
func (k GroupKey) String() string {
	return k.Treatment + "/" + k.Replicate
}

// HasGroup reports whether both key components are set.
func (r Reading) HasGroup() bool {
	return r.Treatment != "" && r.Replicate != ""
}

// ValveInt returns the valve position as an integer and whether the raw
// value was present and integral. A fractional solenoid reading means
// the analyzer was transitioning between streams.
func (r Reading) ValveInt() (int, bool) {
	if r.Valve == nil {
		return 0, false
	}
	v := *r.Valve
	if math.IsNaN(v) || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

// FluxGroupKey identifies a flux-estimation group: readings sharing a
// treatment/replicate key and a valve position.
type FluxGroupKey struct {
	Treatment string
	Replicate string
	Valve     int
}

// String renders the key for logging and duplicate reporting.
func (k FluxGroupKey) String() string {
	return fmt.Sprintf("%s/%s@%d", k.Treatment, k.Replicate, k.Valve)
}
