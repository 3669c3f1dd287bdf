package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved directory and file locations used by the
// pipeline tools and the web server.
type Paths struct {
	DataDir    string
	UploadsDir string
	ReportsDir string
	LogsDir    string

	// Well-known output files
	ForecastCSV  string
	ForecastXLSX string
	DailyCSV     string
}

// NewPaths resolves all paths relative to the given base directory.
func NewPaths(base string, cfg PathsConfig) *Paths {
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	reports := resolve(cfg.ReportsDir)
	return &Paths{
		DataDir:      resolve(cfg.DataDir),
		UploadsDir:   resolve(cfg.UploadsDir),
		ReportsDir:   reports,
		LogsDir:      resolve(cfg.LogsDir),
		ForecastCSV:  filepath.Join(reports, "forecast.csv"),
		ForecastXLSX: filepath.Join(reports, "forecast.xlsx"),
		DailyCSV:     filepath.Join(reports, "daily_sales.csv"),
	}
}

// GetPaths resolves paths relative to the current working directory using
// default configuration. Tools that do not load full config use this.
func GetPaths() (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}
	return NewPaths(wd, PathsConfig{
		DataDir:    "data",
		UploadsDir: "data/uploads",
		ReportsDir: "data/reports",
		LogsDir:    "logs",
	}), nil
}

// EnsureDirectories creates all required directories if they do not exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.UploadsDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether the given path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
