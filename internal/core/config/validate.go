package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/workplan/internal/core/report"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration
// including file accessibility. The configPath argument specifies the config
// file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateSecretsFiles(configPath),
		c.validateReport(),
		c.validateSync(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if !c.Sync.Enabled {
		return append(warnings, ValidationWarning{
			Category: "Sync",
			Message:  "remote sync is disabled; artifacts are kept locally only",
		})
	}

	missing := ""
	switch c.Sync.Backend {
	case BackendGitHub:
		if c.Sync.GitHub.Token == "" {
			missing = "sync.github.token"
		}
	case BackendGit:
		if c.Sync.Git.Path == "" {
			missing = "sync.git.path"
		}
	case BackendS3:
		if c.Sync.S3.Endpoint == "" || c.Sync.S3.Bucket == "" {
			missing = "sync.s3.endpoint/bucket"
		}
	}
	if missing != "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Sync",
			Item:     c.Sync.Backend,
			Message:  fmt.Sprintf("%s is not set; every mirror attempt will report not configured", missing),
		})
	}

	return warnings
}

// validateFileAccess checks config file, data directory, and lookup table.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("lookup_file", c.LookupFile, isReadableFile),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func (c *Config) validateSecretsFiles(configPath string) error {
	if len(c.SecretsFiles) == 0 {
		return nil
	}

	configDir := filepath.Dir(configPath)
	var errs criterio.FieldErrorsBuilder

	for i, file := range c.SecretsFiles {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(configDir, path)
		}

		if _, err := os.Stat(path); err != nil {
			errs = errs.Append(fmt.Sprintf("secrets_files[%d]", i), fmt.Errorf("file not found: %s", file))
		}
	}

	return errs.ToError()
}

// validateReport checks pandoc is reachable when DOCX output is selected.
func (c *Config) validateReport() error {
	if c.Report.Format != report.FormatDOCX {
		return nil
	}
	return criterio.Run("report.pandoc_path", c.Report.PandocPath, executableExists)
}

func (c *Config) validateSync() error {
	if !c.Sync.Enabled || c.Sync.Backend != BackendGit {
		return nil
	}
	return criterio.Run("sync.git.path", c.Sync.Git.Path, isDirectoryOrNotExist)
}

// executableExists validates that path resolves to an executable.
func executableExists(path string) error {
	if path == "" {
		return nil
	}
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("executable not found: %s", path)
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// isReadableFile validates that path is an existing regular file.
func isReadableFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}
