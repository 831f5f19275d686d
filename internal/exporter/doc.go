// Package exporter writes the pipeline's two output tables — the
// combined cleaned readings and the flux summary — as delimited text
// with a header row.
package exporter
