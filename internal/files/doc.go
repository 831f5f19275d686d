// Package files discovers instrument output files under the input
// tree. Discovery order is deterministic (sorted by path) so that
// downstream concatenation does not depend on filesystem iteration
// order or read parallelism.
package files
