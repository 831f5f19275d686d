// Package reader parses raw analyzer output files into Reading tables.
//
// The reader performs no value validation: out-of-range concentrations
// and fractional valve states pass through untouched and are handled by
// the quality filter. Its only hard failures are a missing file, a
// header without a timestamp column, and a storage path that does not
// follow the treatment/replicate directory convention.
package reader
