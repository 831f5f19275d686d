// Package flux holds the numeric core of the pipeline: quality
// filtering, per-group elapsed-time normalization, ordinary
// least-squares trend fitting, and the slope-to-flux physical
// conversion.
//
// Every stage consumes its input table and produces a new one; nothing
// is mutated across stage boundaries. An empty table is a legal input
// and output everywhere: zero groups produce an empty result without
// error.
package flux
