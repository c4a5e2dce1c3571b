package config

import (
	"path/filepath"
	"slices"

	"github.com/adrg/xdg"

	"github.com/nao1215/spider/internal/report"
)

const (
	// AppName is the application name used for XDG directory paths.
	AppName = "spider"

	// DefaultConfigFile is the crawl definition file name.
	DefaultConfigFile = "spider.yaml"

	// DefaultEnvFile is loaded into the environment before the definition is parsed.
	DefaultEnvFile = ".env"

	// DefaultParallel runs one spider at a time, so console output of
	// different spiders does not interleave.
	DefaultParallel = 1
)

// Config holds the run settings given on the command line.
// The crawl itself is described by File.
type Config struct {
	// ConfigFilePath is the crawl definition path. Empty means search
	// the working directory and then the XDG config directory.
	ConfigFilePath string

	// Verbose enables debug logging.
	Verbose bool

	// Quiet limits logging to warnings and errors.
	Quiet bool

	// JSONLogs writes logs as JSON lines.
	JSONLogs bool

	// Parallel is the number of spiders run at once.
	Parallel int

	// MaxPages caps fetched pages per spider. 0 keeps each spider's own
	// limit (unlimited when unset).
	MaxPages int

	// Spiders restricts the run to the named spiders. Empty runs all.
	Spiders []string

	// ReportFormat is text, json or markdown.
	ReportFormat string

	// ReportFile writes the run report to a file instead of stderr.
	ReportFile string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Parallel:     DefaultParallel,
		ReportFormat: report.FormatText,
	}
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.Parallel <= 0 {
		return ErrInvalidParallel
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.ReportFormat != "" && !slices.Contains(report.Formats(), c.ReportFormat) {
		return ErrUnknownReportFormat
	}
	return nil
}

// XDGDataDir returns the XDG data directory for spider.
// On Linux: ~/.local/share/spider
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for spider.
// On Linux: ~/.config/spider
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultDedupDir is where the Badger dedup store lives by default.
func DefaultDedupDir() string {
	return filepath.Join(XDGDataDir(), "dedup")
}

// DefaultSQLitePath is where the SQLite sink writes by default.
func DefaultSQLitePath() string {
	return filepath.Join(XDGDataDir(), "spider.db")
}
