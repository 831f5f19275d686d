package metadata

import (
	"encoding/csv"
	"log/slog"
	"os"
	"strings"

	"github.com/jszwec/csvutil"

	apperrors "fluxcli/internal/errors"
)

// ValveEntry maps one valve position to its optional chamber
// attributes. A nil attribute means the run-wide configured value
// applies for groups at this position.
type ValveEntry struct {
	Valve  int      `csv:"valve"`
	Mass   *float64 `csv:"mass"`
	Area   *float64 `csv:"area"`
	Volume *float64 `csv:"volume"`
}

// ValveSchedule is the loaded valve table, keyed by position. Read-only
// for the run.
type ValveSchedule map[int]ValveEntry

// LoadValveSchedule reads a delimited valve table. A table without a
// valve column is a data-quality condition, not an error: it is logged
// and an empty schedule is returned, which skips the valve join.
func LoadValveSchedule(path string, logger *slog.Logger) (ValveSchedule, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.FileNotFound(path, err)
		}
		return nil, err
	}
	defer file.Close()

	csvReader := csv.NewReader(file)
	csvReader.Comma = detectDelimiter(path)
	csvReader.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(csvReader)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDataQuality, err, "valve schedule %s is unreadable", path)
	}

	if !headerHas(dec.Header(), "valve") {
		warn := apperrors.DataQuality("valve schedule %s has no valve column, valve join skipped", path)
		logger.Warn(warn.Message, "path", path)
		return ValveSchedule{}, nil
	}

	var entries []ValveEntry
	if err := dec.Decode(&entries); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDataQuality, err, "decode valve schedule %s", path)
	}

	schedule := make(ValveSchedule, len(entries))
	for _, entry := range entries {
		if _, dup := schedule[entry.Valve]; dup {
			logger.Warn("duplicate valve position in schedule, keeping last",
				"path", path, "valve", entry.Valve)
		}
		schedule[entry.Valve] = entry
	}

	logger.Info("valve schedule loaded", "path", path, "positions", len(schedule))
	return schedule, nil
}

// detectDelimiter sniffs tab-separated tables by extension.
func detectDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") ||
		strings.HasSuffix(strings.ToLower(path), ".txt") {
		return '\t'
	}
	return ','
}

// headerHas matches exactly (after trimming) because csvutil maps
// header names to tags case-sensitively.
func headerHas(header []string, name string) bool {
	for _, h := range header {
		if strings.TrimSpace(h) == name {
			return true
		}
	}
	return false
}
