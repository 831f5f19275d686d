package errors

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without cause",
			err:      ConfigError("system volume must be positive"),
			expected: "CONFIG_ERROR: system volume must be positive",
		},
		{
			name:     "with cause",
			err:      Wrap(CodeFileNotFound, fs.ErrNotExist, "input file %s", "a.txt"),
			expected: "FILE_NOT_FOUND: input file a.txt: file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestHasCode(t *testing.T) {
	err := JoinError("plot", "reading table")
	assert.True(t, HasCode(err, CodeJoin))
	assert.False(t, HasCode(err, CodeConfig))

	// Codes survive fmt wrapping.
	wrapped := fmt.Errorf("step join: %w", err)
	assert.True(t, HasCode(wrapped, CodeJoin))

	assert.False(t, HasCode(nil, CodeJoin))
	assert.False(t, HasCode(fs.ErrNotExist, CodeFileNotFound))
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"config", ConfigError("bad"), true},
		{"join", JoinError("plot", "table"), true},
		{"file not found", FileNotFound("x.txt", fs.ErrNotExist), false},
		{"regression undefined", RegressionUndefined("A/1@1", 1), false},
		{"data quality", DataQuality("missing column"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := fs.ErrNotExist
	err := FileNotFound("data.txt", cause)
	require.ErrorIs(t, err, fs.ErrNotExist)
}
