package commands

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/workplan/internal/core/config"
	"github.com/colonyops/workplan/internal/workplan"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// Overrides for the config file, usually sourced from WORKPLAN_* variables.
	DataDir      string
	LookupFile   string
	Format       string
	GitHubToken  string
	GitHubRepo   string
	GitHubBranch string
	SyncDisabled bool
	NoDrafts     bool

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// App is built in the Before hook once the data directory is resolved
	App *workplan.App
}

// Overrides returns the flag values that overlay the config file.
func (f *Flags) Overrides() config.Overrides {
	return config.Overrides{
		DataDir:        f.DataDir,
		LookupFile:     f.LookupFile,
		LogLevel:       f.LogLevel,
		Format:         f.Format,
		GitHubToken:    f.GitHubToken,
		GitHubRepo:     f.GitHubRepo,
		GitHubBranch:   f.GitHubBranch,
		SyncDisabled:   f.SyncDisabled,
		DraftsDisabled: f.NoDrafts,
	}
}

// GlobalFlags returns the root command flags bound to f.
func (f *Flags) GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error, fatal, panic)",
			Sources:     cli.EnvVars("WORKPLAN_LOG_LEVEL"),
			Destination: &f.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "path to log file (defaults to <data-dir>/workplan.log)",
			Sources:     cli.EnvVars("WORKPLAN_LOG_FILE"),
			Destination: &f.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to config file",
			Sources:     cli.EnvVars("WORKPLAN_CONFIG"),
			Value:       DefaultConfigPath(),
			Destination: &f.ConfigPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "preferred persistent data directory",
			Sources:     cli.EnvVars("WORKPLAN_DATA_DIR"),
			Destination: &f.DataDir,
		},
		&cli.StringFlag{
			Name:        "lookup-file",
			Usage:       "strategic alignment lookup table (.xlsx or .csv)",
			Sources:     cli.EnvVars("WORKPLAN_LOOKUP_FILE"),
			Destination: &f.LookupFile,
		},
		&cli.StringFlag{
			Name:        "format",
			Usage:       "report format (markdown, html, docx)",
			Sources:     cli.EnvVars("WORKPLAN_REPORT_FORMAT"),
			Destination: &f.Format,
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "token for the GitHub mirror",
			Sources:     cli.EnvVars("WORKPLAN_GITHUB_TOKEN", "GITHUB_TOKEN"),
			Destination: &f.GitHubToken,
		},
		&cli.StringFlag{
			Name:        "github-repo",
			Usage:       "owner/name of the GitHub mirror repository",
			Sources:     cli.EnvVars("WORKPLAN_GITHUB_REPO"),
			Destination: &f.GitHubRepo,
		},
		&cli.StringFlag{
			Name:        "github-branch",
			Usage:       "branch of the GitHub mirror repository",
			Sources:     cli.EnvVars("WORKPLAN_GITHUB_BRANCH"),
			Destination: &f.GitHubBranch,
		},
		&cli.BoolFlag{
			Name:        "no-sync",
			Usage:       "keep artifacts local; skip every mirror call",
			Sources:     cli.EnvVars("WORKPLAN_SYNC_DISABLED"),
			Destination: &f.SyncDisabled,
		},
		&cli.BoolFlag{
			Name:        "no-drafts",
			Usage:       "do not save in-progress answers as drafts",
			Sources:     cli.EnvVars("WORKPLAN_DRAFTS_DISABLED"),
			Destination: &f.NoDrafts,
		},
	}
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "workplan", "config.yaml")
}
