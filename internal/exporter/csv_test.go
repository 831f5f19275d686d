package exporter

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluxcli/internal/config"
	"fluxcli/pkg/contracts/domain"
)

func testWriter(t *testing.T) *CSVWriter {
	t.Helper()
	paths := &config.Paths{OutputDir: t.TempDir()}
	return NewCSVWriter(paths, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestWriteReadings(t *testing.T) {
	w := testWriter(t)
	readings := []domain.Reading{
		{
			Timestamp:  time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			CO2:        400.1,
			Treatment:  "A",
			Replicate:  "p1",
			SourceFile: "meas.txt",
		},
		{
			Timestamp: time.Date(2024, 6, 1, 10, 0, 10, 0, time.UTC),
			CO2:       400.2,
			Treatment: "A",
			Replicate: "p1",
		},
	}

	path, err := w.WriteReadings(CleanedReadingsFile, readings)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// BOM first so the file opens cleanly in Excel.
	require.True(t, len(data) > 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])

	lines := strings.Split(strings.TrimSpace(string(data[3:])), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "timestamp")
	assert.Contains(t, lines[0], "co2_ppm")
	assert.Contains(t, lines[0], "treatment")
	assert.Contains(t, lines[1], "400.1")
	assert.Contains(t, lines[1], "meas.txt")
}

func TestWriteFluxSummary(t *testing.T) {
	w := testWriter(t)
	results := []domain.FluxResult{
		{Treatment: "A", Replicate: "p1", Valve: 1, SampleCount: 6, Slope: 0.01, Flux: 123.4},
	}

	path, err := w.WriteFluxSummary(FluxSummaryFile, results)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data[3:])), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "flux")
	assert.Contains(t, lines[1], "123.4")
}

func TestWriteEmptyTableKeepsHeader(t *testing.T) {
	w := testWriter(t)

	path, err := w.WriteFluxSummary(FluxSummaryFile, []domain.FluxResult{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data[3:])), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "treatment")
}
