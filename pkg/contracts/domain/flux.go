package domain

// FluxResult is one row of the flux summary table: the fitted trend for
// a single measurement group converted to a physical flux. Derived
// output, never mutated after creation.
type FluxResult struct {
	Treatment string `csv:"treatment"`
	Replicate string `csv:"replicate"`
	Valve     int    `csv:"valve"`

	// SampleCount is the number of readings the regression used.
	SampleCount int `csv:"n"`

	// MeanAirTemp is the mean chamber air temperature over the group,
	// in degrees Celsius.
	MeanAirTemp float64 `csv:"mean_air_temp_c"`

	// Slope is the fitted concentration trend in ppm per second.
	Slope float64 `csv:"slope_ppm_s"`

	// Flux is the converted value in the configured output convention
	// (mass of carbon per unit area per day by default).
	Flux float64 `csv:"flux"`

	// Chamber geometry the conversion used, after any valve-schedule
	// overrides.
	ChamberVolume float64 `csv:"chamber_volume"`
	ChamberArea   float64 `csv:"chamber_area"`
}

// Key returns the flux group key of the result row.
func (f FluxResult) Key() FluxGroupKey {
	return FluxGroupKey{Treatment: f.Treatment, Replicate: f.Replicate, Valve: f.Valve}
}
