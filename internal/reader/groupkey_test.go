package reader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fluxcli/internal/errors"
)

func TestDeriveGroupKey(t *testing.T) {
	input := filepath.Join("data", "input")

	tests := []struct {
		name      string
		path      string
		treatment string
		replicate string
		wantErr   bool
	}{
		{
			name:      "conventional layout",
			path:      filepath.Join(input, "warmed", "plot-3", "meas.txt"),
			treatment: "warmed",
			replicate: "plot-3",
		},
		{
			name:    "file directly under input dir",
			path:    filepath.Join(input, "meas.txt"),
			wantErr: true,
		},
		{
			name:    "one level too shallow",
			path:    filepath.Join(input, "warmed", "meas.txt"),
			wantErr: true,
		},
		{
			name:    "one level too deep",
			path:    filepath.Join(input, "warmed", "plot-3", "extra", "meas.txt"),
			wantErr: true,
		},
		{
			name:    "outside input dir",
			path:    filepath.Join("elsewhere", "warmed", "plot-3", "meas.txt"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			treatment, replicate, err := DeriveGroupKey(input, tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.CodeConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.treatment, treatment)
			assert.Equal(t, tt.replicate, replicate)
		})
	}
}
