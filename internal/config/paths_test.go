package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fluxcli/internal/errors"
)

func TestResolvePaths(t *testing.T) {
	inputDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	logDir := filepath.Join(t.TempDir(), "logs")

	paths, err := ResolvePaths(PathsConfig{
		InputDir:          inputDir,
		OutputDir:         outDir,
		LogDir:            logDir,
		FieldMetadataFile: "field.csv",
		ValveScheduleFile: "valves.csv",
	})
	require.NoError(t, err)

	// Relative metadata paths resolve against the input directory.
	assert.Equal(t, filepath.Join(inputDir, "field.csv"), paths.FieldMetadataFile)
	assert.Equal(t, filepath.Join(inputDir, "valves.csv"), paths.ValveScheduleFile)
	assert.True(t, filepath.IsAbs(paths.OutputDir))
}

func TestResolvePathsAbsoluteMetadata(t *testing.T) {
	inputDir := t.TempDir()
	fieldFile := filepath.Join(t.TempDir(), "field.csv")

	paths, err := ResolvePaths(PathsConfig{
		InputDir:          inputDir,
		OutputDir:         t.TempDir(),
		LogDir:            t.TempDir(),
		FieldMetadataFile: fieldFile,
	})
	require.NoError(t, err)
	assert.Equal(t, fieldFile, paths.FieldMetadataFile)
	assert.Empty(t, paths.ValveScheduleFile)
}

func TestResolvePathsMissingInputDir(t *testing.T) {
	_, err := ResolvePaths(PathsConfig{
		InputDir:          filepath.Join(t.TempDir(), "missing"),
		OutputDir:         t.TempDir(),
		LogDir:            t.TempDir(),
		FieldMetadataFile: "field.csv",
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfig))
}

func TestResolvePathsInputNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := ResolvePaths(PathsConfig{
		InputDir:          file,
		OutputDir:         t.TempDir(),
		LogDir:            t.TempDir(),
		FieldMetadataFile: "field.csv",
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfig))
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths := &Paths{
		OutputDir: filepath.Join(base, "out"),
		LogDir:    filepath.Join(base, "logs"),
	}
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.OutputDir, paths.LogDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	assert.Equal(t, filepath.Join(paths.OutputDir, "flux_summary.csv"), paths.OutputPath("flux_summary.csv"))
	assert.Equal(t, filepath.Join(paths.LogDir, "fluxproc.log"), paths.LogPath("fluxproc.log"))
}
