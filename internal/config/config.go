package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "fluxcli/internal/errors"
)

// Config is the complete run configuration. Loaded once at startup and
// treated as immutable for the rest of the run.
type Config struct {
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Reader     ReaderConfig     `yaml:"reader" envconfig:"READER"`
	Chamber    ChamberConfig    `yaml:"chamber" envconfig:"CHAMBER"`
	Filter     FilterConfig     `yaml:"filter" envconfig:"FILTER"`
	Conversion ConversionConfig `yaml:"conversion" envconfig:"CONVERSION"`
}

// PathsConfig locates the input tree, metadata tables, and output
// directories.
type PathsConfig struct {
	InputDir  string `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LogDir    string `yaml:"log_dir" envconfig:"LOG_DIR" validate:"required"`

	// FieldMetadataFile is required: the field join is unconditional.
	// Relative paths resolve against InputDir.
	FieldMetadataFile string `yaml:"field_metadata_file" envconfig:"FIELD_METADATA_FILE" validate:"required"`

	// ValveScheduleFile is optional; without it no valve join happens.
	ValveScheduleFile string `yaml:"valve_schedule_file" envconfig:"VALVE_SCHEDULE_FILE"`
}

// LoggingConfig controls the slog setup.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FileName string `yaml:"file_name" envconfig:"FILE_NAME"`
}

// ReaderConfig controls instrument-file discovery and subsampling.
type ReaderConfig struct {
	// FilePattern matches instrument file names during the recursive
	// walk of InputDir.
	FilePattern string `yaml:"file_pattern" envconfig:"FILE_PATTERN"`

	// SubsampleFraction f in (0,1] keeps floor(n*f) rows per file,
	// drawn uniformly without replacement. 1 keeps every row in
	// original order.
	SubsampleFraction float64 `yaml:"subsample_fraction" envconfig:"SUBSAMPLE_FRACTION" validate:"gt=0,lte=1"`

	// SubsampleSeed fixes the sampling RNG; 0 seeds from the clock.
	SubsampleSeed int64 `yaml:"subsample_seed" envconfig:"SUBSAMPLE_SEED"`

	// MaxParallelReads bounds concurrent file reads. Concatenation
	// order is path-sorted regardless of parallelism.
	MaxParallelReads int `yaml:"max_parallel_reads" envconfig:"MAX_PARALLEL_READS" validate:"gte=1"`
}

// ChamberConfig holds the run-wide chamber geometry. Valve-schedule
// entries may override the area per group and add to the volume.
type ChamberConfig struct {
	// SystemVolume is the analyzer-plus-tubing volume in cm^3.
	SystemVolume float64 `yaml:"system_volume" envconfig:"SYSTEM_VOLUME" validate:"required,gt=0"`

	// ChamberArea is the enclosure footprint in cm^2.
	ChamberArea float64 `yaml:"chamber_area" envconfig:"CHAMBER_AREA" validate:"required,gt=0"`

	// MeasurementInterval is the nominal analyzer sampling interval.
	MeasurementInterval time.Duration `yaml:"measurement_interval" envconfig:"MEASUREMENT_INTERVAL" validate:"required"`
}

// FilterConfig holds the quality-filter thresholds.
type FilterConfig struct {
	// CO2CeilingPPM is the sanity ceiling on the primary gas; rows
	// above it are dropped.
	CO2CeilingPPM float64 `yaml:"co2_ceiling_ppm" envconfig:"CO2_CEILING_PPM" validate:"gt=0"`
}

// ConversionConfig names every constant in the slope-to-flux
// conversion. The defaults encode one campaign's unit convention
// (mg C m^-2 day^-1 from ppm s^-1); adapt them per setup rather than
// editing the estimator.
type ConversionConfig struct {
	// PressureKPa is the assumed chamber pressure.
	PressureKPa float64 `yaml:"pressure_kpa" envconfig:"PRESSURE_KPA" validate:"gt=0"`

	// GasConstant in m^-3 kPa mol^-1 K^-1.
	GasConstant float64 `yaml:"gas_constant" envconfig:"GAS_CONSTANT" validate:"gt=0"`

	// KelvinOffset converts Celsius air temperature to Kelvin.
	KelvinOffset float64 `yaml:"kelvin_offset" envconfig:"KELVIN_OFFSET" validate:"gt=0"`

	// MoleFractionScale converts the slope from ppm to mole fraction.
	MoleFractionScale float64 `yaml:"mole_fraction_scale" envconfig:"MOLE_FRACTION_SCALE" validate:"gt=0"`

	// CarbonMolarMass in g/mol.
	CarbonMolarMass float64 `yaml:"carbon_molar_mass" envconfig:"CARBON_MOLAR_MASS" validate:"gt=0"`

	// MassUnitScale and AreaUnitScale carry the output into the
	// reported mass/area convention (mg, m^2 by default).
	MassUnitScale float64 `yaml:"mass_unit_scale" envconfig:"MASS_UNIT_SCALE" validate:"gt=0"`
	AreaUnitScale float64 `yaml:"area_unit_scale" envconfig:"AREA_UNIT_SCALE" validate:"gt=0"`

	// SecondsPerDay scales the per-second rate to per-day.
	SecondsPerDay float64 `yaml:"seconds_per_day" envconfig:"SECONDS_PER_DAY" validate:"gt=0"`
}

// Load assembles the configuration: built-in defaults, the YAML file
// (if present) on top, then environment variables with the FLUX prefix
// overriding both. Any failure is a ConfigError.
func Load(configFile string) (*Config, error) {
	cfg := *Default()

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeConfig, err, "read config file %s", configFile)
		}
		// Unmarshal over the defaults: keys the file omits keep their
		// default values.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeConfig, err, "parse config file %s", configFile)
		}
	}

	if err := envconfig.Process("FLUX", &cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfig, err, "process environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks structural constraints and the cross-field rules the
// tags cannot express.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return apperrors.Wrap(apperrors.CodeConfig, err, "invalid configuration")
	}

	if c.Chamber.MeasurementInterval <= 0 {
		return apperrors.ConfigError("measurement interval must be positive, got %s", c.Chamber.MeasurementInterval)
	}

	switch c.Logging.Output {
	case "stdout", "file", "both":
	default:
		return apperrors.ConfigError("logging output must be stdout, file or both, got %q", c.Logging.Output)
	}

	return nil
}

// findConfigFile probes the conventional locations for a config file.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns a configuration with every defaulted field populated
// and the required fields left empty. Load layers the YAML file and
// environment on top of it.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FileName: "fluxproc.log",
		},
		Reader: ReaderConfig{
			FilePattern:       "*.txt",
			SubsampleFraction: 1,
			MaxParallelReads:  4,
		},
		Filter: FilterConfig{
			CO2CeilingPPM: 5000,
		},
		Conversion: ConversionConfig{
			PressureKPa:       101,
			GasConstant:       0.0083,
			KelvinOffset:      273.1,
			MoleFractionScale: 1e6,
			CarbonMolarMass:   12,
			MassUnitScale:     1000,
			AreaUnitScale:     1000,
			SecondsPerDay:     86400,
		},
	}
}
