// Package config handles configuration loading and validation for workplan.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/workplan/internal/core/report"
	"github.com/colonyops/workplan/internal/core/styles"
)

// Defaults.
const (
	DefaultDataDir       = "/mount/data/workplan_data"
	DefaultLookupFile    = "strategic_alignment.xlsx"
	DefaultRepository    = "sergioalf14/repo"
	DefaultBranch        = "main"
	DefaultCheckTimeout  = 30 * time.Second
	DefaultUploadTimeout = 60 * time.Second
)

// Sync backends.
const (
	BackendGitHub = "github"
	BackendGit    = "git"
	BackendS3     = "s3"
)

// Config holds the application configuration.
type Config struct {
	DataDir      string       `yaml:"data_dir"`
	LookupFile   string       `yaml:"lookup_file"`
	LogLevel     string       `yaml:"log_level"`
	SecretsFiles []string     `yaml:"secrets_files"`
	Report       ReportConfig `yaml:"report"`
	Sync         SyncConfig   `yaml:"sync"`
	Drafts       DraftsConfig `yaml:"drafts"`
	TUI          TUIConfig    `yaml:"tui"`
}

// ReportConfig controls the generated artifact.
type ReportConfig struct {
	Format     report.Format `yaml:"format"`
	PandocPath string        `yaml:"pandoc_path"`
}

// SyncConfig controls mirroring of artifacts to a remote store.
type SyncConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Backend       string        `yaml:"backend"`
	CheckTimeout  time.Duration `yaml:"check_timeout"`
	UploadTimeout time.Duration `yaml:"upload_timeout"`
	GitHub        GitHubConfig  `yaml:"github"`
	Git           GitConfig     `yaml:"git"`
	S3            S3Config      `yaml:"s3"`
}

// GitHubConfig configures the contents API backend.
type GitHubConfig struct {
	Token      string `yaml:"token"`
	Repository string `yaml:"repository"`
	Branch     string `yaml:"branch"`
	APIURL     string `yaml:"api_url"`
}

// GitConfig configures the local repository backend.
type GitConfig struct {
	Path        string `yaml:"path"`
	RemoteURL   string `yaml:"remote_url"`
	Branch      string `yaml:"branch"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
	Push        bool   `yaml:"push"`
}

// S3Config configures the bucket backend.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// DraftsConfig controls resumable drafts.
type DraftsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TUIConfig controls the interactive forms.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:    DefaultDataDir,
		LookupFile: DefaultLookupFile,
		LogLevel:   "info",
		Report: ReportConfig{
			Format:     report.FormatMarkdown,
			PandocPath: "pandoc",
		},
		Sync: SyncConfig{
			Enabled:       true,
			Backend:       BackendGitHub,
			CheckTimeout:  DefaultCheckTimeout,
			UploadTimeout: DefaultUploadTimeout,
			GitHub: GitHubConfig{
				Repository: DefaultRepository,
				Branch:     DefaultBranch,
			},
			Git: GitConfig{Branch: DefaultBranch},
		},
		Drafts: DraftsConfig{Enabled: true},
		TUI:    TUIConfig{Theme: styles.DefaultTheme},
	}
}

// Load reads configuration from the given path. If configPath is empty or
// doesn't exist, returns defaults. Secrets files listed in the config are
// merged over it in declaration order before decoding.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			merged, err := withSecrets(filepath.Dir(configPath), data)
			if err != nil {
				return nil, err
			}

			if err := yaml.Unmarshal(merged, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// withSecrets overlays the secrets_files of a raw config document.
func withSecrets(configDir string, data []byte) ([]byte, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	var head struct {
		SecretsFiles []string `yaml:"secrets_files"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if len(head.SecretsFiles) == 0 {
		return data, nil
	}

	secrets, err := loadSecretsFiles(configDir, head.SecretsFiles)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	mergeMaps(raw, secrets)

	out, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode merged config: %w", err)
	}
	return out, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.DataDir == "" {
		c.DataDir = defaults.DataDir
	}
	if c.LookupFile == "" {
		c.LookupFile = defaults.LookupFile
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.Report.Format == "" {
		c.Report.Format = defaults.Report.Format
	}
	if c.Report.PandocPath == "" {
		c.Report.PandocPath = defaults.Report.PandocPath
	}
	if c.Sync.Backend == "" {
		c.Sync.Backend = defaults.Sync.Backend
	}
	if c.Sync.CheckTimeout == 0 {
		c.Sync.CheckTimeout = defaults.Sync.CheckTimeout
	}
	if c.Sync.UploadTimeout == 0 {
		c.Sync.UploadTimeout = defaults.Sync.UploadTimeout
	}
	if c.Sync.GitHub.Repository == "" {
		c.Sync.GitHub.Repository = defaults.Sync.GitHub.Repository
	}
	if c.Sync.GitHub.Branch == "" {
		c.Sync.GitHub.Branch = defaults.Sync.GitHub.Branch
	}
	if c.Sync.Git.Branch == "" {
		c.Sync.Git.Branch = defaults.Sync.Git.Branch
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}

// Overrides are values taken from flags and environment variables. Empty
// fields leave the file configuration untouched.
type Overrides struct {
	DataDir        string
	LookupFile     string
	LogLevel       string
	Format         string
	GitHubToken    string
	GitHubRepo     string
	GitHubBranch   string
	SyncDisabled   bool
	DraftsDisabled bool
}

// Apply overlays o and re-validates.
func (c *Config) Apply(o Overrides) error {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.DataDir, o.DataDir)
	set(&c.LookupFile, o.LookupFile)
	set(&c.LogLevel, o.LogLevel)
	set(&c.Sync.GitHub.Token, o.GitHubToken)
	set(&c.Sync.GitHub.Repository, o.GitHubRepo)
	set(&c.Sync.GitHub.Branch, o.GitHubBranch)
	if o.Format != "" {
		c.Report.Format = report.Format(o.Format)
	}
	if o.SyncDisabled {
		c.Sync.Enabled = false
	}
	if o.DraftsDisabled {
		c.Drafts.Enabled = false
	}
	return c.Validate()
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}

	if c.LookupFile == "" {
		return fmt.Errorf("lookup_file cannot be empty")
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level %q is invalid", c.LogLevel)
	}

	if !c.Report.Format.IsValid() {
		return fmt.Errorf("report.format %q must be one of markdown, html, docx", c.Report.Format)
	}

	switch c.Sync.Backend {
	case BackendGitHub, BackendGit, BackendS3:
	default:
		return fmt.Errorf("sync.backend %q must be one of github, git, s3", c.Sync.Backend)
	}

	if c.Sync.CheckTimeout <= 0 || c.Sync.UploadTimeout <= 0 {
		return fmt.Errorf("sync timeouts must be positive")
	}

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		return fmt.Errorf("tui.theme %q must be one of %s", c.TUI.Theme, strings.Join(styles.ThemeNames(), ", "))
	}

	if repo := c.Sync.GitHub.Repository; repo != "" {
		owner, name, ok := strings.Cut(repo, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			return fmt.Errorf("sync.github.repository %q must be owner/name", repo)
		}
	}

	return nil
}

