// Package config loads and validates the immutable run configuration.
//
// Configuration is assembled in three layers: built-in defaults, an
// optional YAML file on top, and FLUX-prefixed environment variables
// overriding both.
// The loaded Config is a read-only snapshot; stages receive it (or a
// sub-struct of it) explicitly and never consult process-wide state.
//
// Physical constants used by the flux conversion are configuration, not
// code: the ppm scale, molar mass, and unit factors are specific to one
// experimental convention and must be overridable without touching the
// estimator.
package config
