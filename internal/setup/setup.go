// Package setup prepares and inspects a local single-node deployment:
// data directory layout, SQLite feedback database, and environment
// configuration.
package setup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raredx-server/internal/config"
)

// Status represents the current deployment status
type Status struct {
	DataDir            string
	DataDirExists      bool
	DatabaseConfigured bool
	DatabasePath       string
	ExportDir          string
	SimilarityEnabled  bool
	Issues             []string
}

// GetStatus checks the current deployment status
func GetStatus(cfg *config.LiteConfig) *Status {
	status := &Status{
		DataDir:           cfg.DataDir,
		DatabasePath:      cfg.FeedbackDBPath(),
		ExportDir:         cfg.ExportDir(),
		SimilarityEnabled: cfg.SimilarityEnabled,
		Issues:            []string{},
	}

	if _, err := os.Stat(cfg.DataDir); err == nil {
		status.DataDirExists = true
	} else {
		status.Issues = append(status.Issues, fmt.Sprintf("Data directory does not exist: %s", cfg.DataDir))
	}

	if _, err := os.Stat(status.DatabasePath); err == nil {
		status.DatabaseConfigured = true
	}

	return status
}

// Validate checks if the current deployment is valid and functional.
// Returns true when only warnings remain.
func Validate(cfg *config.LiteConfig) (bool, []string) {
	var issues []string

	if cfg.DataDir == "" {
		issues = append(issues, "Data directory is not configured")
		return false, issues
	}

	info, err := os.Stat(cfg.DataDir)
	switch {
	case os.IsNotExist(err):
		// Not a critical error - will be created on first run
		issues = append(issues, fmt.Sprintf("Data directory will be created on first run: %s", cfg.DataDir))
	case err != nil:
		issues = append(issues, fmt.Sprintf("Cannot access data directory: %v", err))
	case !info.IsDir():
		issues = append(issues, fmt.Sprintf("Data directory path is not a directory: %s", cfg.DataDir))
	default:
		if !writable(cfg.DataDir) {
			issues = append(issues, fmt.Sprintf("Data directory is not writable: %s", cfg.DataDir))
		}
	}

	if cfg.SimilarityEnabled && cfg.EmbedBaseURL == "" {
		issues = append(issues, "Similarity scoring is enabled but no embedding endpoint is configured")
	}

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		issues = append(issues, fmt.Sprintf("Invalid HTTP port: %d", cfg.HTTPPort))
	}

	return len(issues) == 0 || allWarnings(issues), issues
}

// allWarnings returns true if all issues are just warnings (not errors)
func allWarnings(issues []string) bool {
	for _, issue := range issues {
		if !strings.Contains(issue, "will be created") {
			return false
		}
	}
	return true
}

// Initialize creates the data directory layout for a fresh deployment
func Initialize(cfg *config.LiteConfig) error {
	if err := cfg.EnsureDataDir(); err != nil {
		return err
	}

	return nil
}

func writable(dir string) bool {
	probe := filepath.Join(dir, ".write_probe")
	f, err := os.Create(probe)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(probe)
	return true
}
