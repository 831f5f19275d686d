// Package pipeline orchestrates the batch run as a fixed sequence of
// steps: read, join, filter, normalize, estimate, export. Data flows
// strictly left to right through the shared State; each step replaces
// the table it consumes rather than mutating it.
//
// File reads inside the read step may run in parallel, but the step
// joins all of them and concatenates in path order before returning, so
// nothing downstream ever observes partial results.
package pipeline
