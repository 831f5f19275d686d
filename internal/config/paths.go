package config

import (
	"os"
	"path/filepath"

	apperrors "fluxcli/internal/errors"
)

// Paths holds the fully resolved filesystem layout for one run.
type Paths struct {
	InputDir  string
	OutputDir string
	LogDir    string

	FieldMetadataFile string
	ValveScheduleFile string
}

// ResolvePaths absolutizes the configured directories and resolves
// metadata files relative to the input directory. The input directory
// must already exist; output and log directories are created on demand
// by EnsureDirectories.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	inputDir, err := filepath.Abs(cfg.InputDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfig, err, "resolve input dir %s", cfg.InputDir)
	}
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfig, err, "input dir %s", inputDir)
	}
	if !info.IsDir() {
		return nil, apperrors.ConfigError("input path %s is not a directory", inputDir)
	}

	outputDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfig, err, "resolve output dir %s", cfg.OutputDir)
	}
	logDir, err := filepath.Abs(cfg.LogDir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfig, err, "resolve log dir %s", cfg.LogDir)
	}

	p := &Paths{
		InputDir:          inputDir,
		OutputDir:         outputDir,
		LogDir:            logDir,
		FieldMetadataFile: resolveAgainst(inputDir, cfg.FieldMetadataFile),
	}
	if cfg.ValveScheduleFile != "" {
		p.ValveScheduleFile = resolveAgainst(inputDir, cfg.ValveScheduleFile)
	}
	return p, nil
}

// EnsureDirectories creates the output and log directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.LogDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.Wrap(apperrors.CodeConfig, err, "create directory %s", dir)
		}
	}
	return nil
}

// OutputPath returns the path of an output file.
func (p *Paths) OutputPath(name string) string {
	return filepath.Join(p.OutputDir, name)
}

// LogPath returns the path of a log file.
func (p *Paths) LogPath(name string) string {
	return filepath.Join(p.LogDir, name)
}

func resolveAgainst(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
