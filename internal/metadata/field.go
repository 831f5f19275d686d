package metadata

import (
	"encoding/csv"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/xuri/excelize/v2"

	apperrors "fluxcli/internal/errors"
)

// FieldEntry describes one plot/core from the field sheet.
type FieldEntry struct {
	Plot      string `csv:"plot"`
	Treatment string `csv:"treatment"`
	Core      string `csv:"core"`
	Day       int    `csv:"day"`
	Month     int    `csv:"month"`
}

// FieldMetadata is the loaded field table, keyed by plot identifier.
// Read-only for the run.
type FieldMetadata map[string]FieldEntry

// LoadFieldMetadata reads the field table from delimited text or, for
// .xlsx paths, from the first sheet of a workbook. The field join is
// unconditional, so a table without a plot column is a fatal JoinError.
func LoadFieldMetadata(path string, logger *slog.Logger) (FieldMetadata, error) {
	var (
		entries []FieldEntry
		err     error
	)
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		entries, err = loadFieldXLSX(path)
	} else {
		entries, err = loadFieldDelimited(path)
	}
	if err != nil {
		return nil, err
	}

	table := make(FieldMetadata, len(entries))
	for _, entry := range entries {
		if entry.Plot == "" {
			continue
		}
		if _, dup := table[entry.Plot]; dup {
			logger.Warn("duplicate plot in field metadata, keeping last",
				"path", path, "plot", entry.Plot)
		}
		table[entry.Plot] = entry
	}

	logger.Info("field metadata loaded", "path", path, "plots", len(table))
	return table, nil
}

func loadFieldDelimited(path string) ([]FieldEntry, error) {
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
		return nil, apperrors.Wrap(apperrors.CodeJoin, err, "field metadata %s is unreadable", path)
	}
	if !headerHas(dec.Header(), "plot") {
		return nil, apperrors.JoinError("plot", "field metadata table "+path)
	}

	var entries []FieldEntry
	if err := dec.Decode(&entries); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeJoin, err, "decode field metadata %s", path)
	}
	return entries, nil
}

func loadFieldXLSX(path string) ([]FieldEntry, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.FileNotFound(path, err)
		}
		return nil, err
	}
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeJoin, err, "read sheet %s of %s", sheet, path)
	}
	if len(rows) == 0 {
		return nil, apperrors.JoinError("plot", "field metadata workbook "+path)
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["plot"]; !ok {
		return nil, apperrors.JoinError("plot", "field metadata workbook "+path)
	}

	entries := make([]FieldEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		entry := FieldEntry{
			Plot:      cellAt(row, columns, "plot"),
			Treatment: cellAt(row, columns, "treatment"),
			Core:      cellAt(row, columns, "core"),
			Day:       cellInt(row, columns, "day"),
			Month:     cellInt(row, columns, "month"),
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func cellAt(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func cellInt(row []string, columns map[string]int, name string) int {
	v, err := strconv.Atoi(cellAt(row, columns, name))
	if err != nil {
		return 0
	}
	return v
}
