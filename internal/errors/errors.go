// Package errors defines the coded error taxonomy for the flux
// pipeline. Configuration and join-key failures are fatal; per-file and
// per-group failures are recovered, counted, and reported at the end of
// the run.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies an error for propagation decisions and log filtering.
type Code string

const (
	// CodeConfig marks missing or invalid configuration. Fatal; the run
	// aborts before any processing begins.
	CodeConfig Code = "CONFIG_ERROR"

	// CodeFileNotFound marks a missing input file. Fatal for that file
	// only, unless the file is a required metadata table.
	CodeFileNotFound Code = "FILE_NOT_FOUND"

	// CodeJoin marks an absent join key field. Fatal; downstream stages
	// cannot produce meaningful output.
	CodeJoin Code = "JOIN_ERROR"

	// CodeRegressionUndefined marks a group with fewer than two
	// distinct time points. Recovered; the group is skipped and counted.
	CodeRegressionUndefined Code = "REGRESSION_UNDEFINED"

	// CodeDataQuality marks a non-fatal data-quality condition that is
	// logged and surfaced in the run report.
	CodeDataQuality Code = "DATA_QUALITY_WARNING"
)

// Error is a coded pipeline error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded error around an underlying cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// ConfigError reports invalid or missing configuration.
func ConfigError(format string, args ...any) *Error {
	return New(CodeConfig, format, args...)
}

// FileNotFound reports a missing input file.
func FileNotFound(path string, err error) *Error {
	return Wrap(CodeFileNotFound, err, "input file %s", path)
}

// JoinError reports an absent join key.
func JoinError(field, table string) *Error {
	return New(CodeJoin, "join field %q not present in %s", field, table)
}

// RegressionUndefined reports a group that cannot be fitted.
func RegressionUndefined(group string, distinctTimes int) *Error {
	return New(CodeRegressionUndefined, "group %s has %d distinct time points, need at least 2", group, distinctTimes)
}

// DataQuality reports a logged, non-fatal data-quality condition.
func DataQuality(format string, args ...any) *Error {
	return New(CodeDataQuality, format, args...)
}

// HasCode reports whether err or anything it wraps carries the code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsFatal reports whether the error must abort the whole run.
func IsFatal(err error) bool {
	return HasCode(err, CodeConfig) || HasCode(err, CodeJoin)
}
