package reader

import (
	"bufio"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "fluxcli/internal/errors"
	"fluxcli/pkg/contracts/domain"
)

// Column aliases seen across analyzer firmware revisions. Header names
// are matched lowercase; unknown columns are ignored.
var columnAliases = map[string]string{
	"time":      "timestamp",
	"timestamp": "timestamp",
	"datetime":  "timestamp",
	"date_time": "timestamp",

	"co2":       "co2",
	"co2_ppm":   "co2",
	"co2d_ppm":  "co2",
	"[co2]_ppm": "co2",
	"co2_dry":   "co2",

	"ch4":       "ch4",
	"ch4_ppm":   "ch4",
	"ch4d_ppm":  "ch4",
	"[ch4]_ppm": "ch4",

	"h2o":       "h2o",
	"h2o_ppm":   "h2o",
	"[h2o]_ppm": "h2o",

	"tair":     "air_temp",
	"air_t":    "air_temp",
	"airt_c":   "air_temp",
	"ta_c":     "air_temp",
	"amb_t":    "air_temp",
	"air_temp": "air_temp",

	"valve":       "valve",
	"solenoid":    "valve",
	"valve_pos":   "valve",
	"mpvposition": "valve",
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006 15:04:05.000",
	"01/02/2006 15:04:05",
}

// Reader parses instrument output files rooted at an input directory.
type Reader struct {
	inputDir          string
	subsampleFraction float64
	subsampleSeed     int64
}

// New creates a reader. Group keys are derived from each file's path
// relative to inputDir. A fraction below 1 subsamples each file's rows.
func New(inputDir string, subsampleFraction float64, subsampleSeed int64) *Reader {
	return &Reader{
		inputDir:          inputDir,
		subsampleFraction: subsampleFraction,
		subsampleSeed:     subsampleSeed,
	}
}

// ReadFile parses one instrument file into readings, stamped with the
// source file, parent directory, and the path-derived group key.
func (r *Reader) ReadFile(path string) ([]domain.Reading, error) {
	treatment, replicate, err := DeriveGroupKey(r.inputDir, path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.FileNotFound(path, err)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	sourceFile := filepath.Base(path)
	sourceDir := filepath.Base(filepath.Dir(path))

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		columns  map[string]int
		tabSplit bool
		readings []domain.Reading
	)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if columns == nil {
			tabSplit = strings.ContainsRune(line, '\t')
			columns = parseHeader(line, tabSplit)
			if _, ok := columns["timestamp"]; !ok {
				return nil, fmt.Errorf("file %s: header has no timestamp column", path)
			}
			continue
		}

		fields := splitRow(line, tabSplit)
		reading, ok := parseRow(fields, columns)
		if !ok {
			continue
		}
		reading.SourceFile = sourceFile
		reading.SourceDir = sourceDir
		reading.Treatment = treatment
		reading.Replicate = replicate
		readings = append(readings, reading)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if columns == nil {
		return nil, fmt.Errorf("file %s: empty, no header row", path)
	}

	if r.subsampleFraction < 1 {
		rng := rand.New(rand.NewSource(r.fileSeed(path)))
		readings = Subsample(readings, r.subsampleFraction, rng)
	}

	return readings, nil
}

// fileSeed derives a per-file RNG seed so parallel reads stay
// deterministic for a fixed configured seed.
func (r *Reader) fileSeed(path string) int64 {
	seed := r.subsampleSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	h := fnv.New64a()
	h.Write([]byte(path))
	return seed ^ int64(h.Sum64())
}

func parseHeader(line string, tabSplit bool) map[string]int {
	fields := splitRow(line, tabSplit)
	columns := make(map[string]int, len(fields))
	for i, field := range fields {
		name := strings.ToLower(strings.TrimSpace(field))
		if canonical, ok := columnAliases[name]; ok {
			columns[canonical] = i
		}
	}
	return columns
}

func splitRow(line string, tabSplit bool) []string {
	if tabSplit {
		fields := strings.Split(line, "\t")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		return fields
	}
	return strings.Fields(line)
}

// parseRow converts one data row. Rows whose timestamp cannot be parsed
// are unusable and dropped; every other field degrades to NaN and is
// left to the quality filter.
func parseRow(fields []string, columns map[string]int) (domain.Reading, bool) {
	ts, ok := parseTimestamp(fieldAt(fields, columns, "timestamp"))
	if !ok {
		return domain.Reading{}, false
	}

	reading := domain.Reading{
		Timestamp: ts,
		CO2:       parseFloat(fieldAt(fields, columns, "co2")),
		CH4:       parseFloat(fieldAt(fields, columns, "ch4")),
		H2O:       parseFloat(fieldAt(fields, columns, "h2o")),
		AirTemp:   parseFloat(fieldAt(fields, columns, "air_temp")),
	}

	if idx, ok := columns["valve"]; ok && idx < len(fields) {
		v := parseFloat(fields[idx])
		reading.Valve = &v
	}

	return reading, true
}

func fieldAt(fields []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	// Epoch seconds, possibly fractional.
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		whole, frac := math.Modf(secs)
		return time.Unix(int64(whole), int64(frac*1e9)).UTC(), true
	}
	return time.Time{}, false
}
