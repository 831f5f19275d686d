package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"

	"fluxcli/internal/config"
	"fluxcli/pkg/contracts/domain"
)

// Default output file names.
const (
	CleanedReadingsFile = "cleaned_readings.csv"
	FluxSummaryFile     = "flux_summary.csv"
)

// CSVWriter writes output tables under the configured output directory.
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a writer rooted at the run's output directory.
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger}
}

// WriteReadings writes the combined cleaned-reading table.
func (w *CSVWriter) WriteReadings(name string, readings []domain.Reading) (string, error) {
	return w.write(name, readings, len(readings))
}

// WriteFluxSummary writes the flux summary table.
func (w *CSVWriter) WriteFluxSummary(name string, results []domain.FluxResult) (string, error) {
	return w.write(name, results, len(results))
}

// write marshals records and writes them with a UTF-8 BOM so the file
// opens cleanly in Excel. An empty table still gets its header row.
func (w *CSVWriter) write(name string, records any, count int) (string, error) {
	path := w.paths.OutputPath(name)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	data, err := csvutil.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("write BOM: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	w.logger.Info("output table written",
		slog.String("path", path),
		slog.Int("record_count", count),
	)
	return path, nil
}
