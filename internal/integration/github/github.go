// Package github mirrors artifacts into a GitHub repository through the
// contents API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"
	"github.com/rs/zerolog"

	"github.com/colonyops/workplan/internal/core/logging"
	"github.com/colonyops/workplan/internal/core/mirror"
)

// DefaultBranch is used when no branch is configured.
const DefaultBranch = "main"

// Config configures the contents API mirror.
type Config struct {
	Token      string
	Repository string // owner/name
	Branch     string
	// APIURL overrides https://api.github.com/ (GitHub Enterprise, tests).
	APIURL     string
	Timeouts   mirror.Timeouts
	HTTPClient *http.Client
}

// Mirror implements mirror.Mirror for a GitHub repository.
type Mirror struct {
	cfg    Config
	client *gh.Client
	log    zerolog.Logger
}

var _ mirror.Mirror = (*Mirror)(nil)

// New returns a Mirror. Missing credentials are reported by Upsert, not here,
// so an unconfigured mirror can still be wired.
func New(cfg Config) (*Mirror, error) {
	if cfg.Branch == "" {
		cfg.Branch = DefaultBranch
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()

	client := gh.NewClient(cfg.HTTPClient)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}
	if cfg.APIURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse api url: %w", err)
		}
		client.BaseURL = base
	}

	return &Mirror{cfg: cfg, client: client, log: logging.Component("github")}, nil
}

func (m *Mirror) Name() string { return "GitHub" }

// Upsert creates or updates remotePath on the configured branch.
func (m *Mirror) Upsert(ctx context.Context, content []byte, remotePath string) (mirror.Confirmation, error) {
	owner, repo, err := m.target()
	if err != nil {
		return mirror.Confirmation{}, err
	}
	remotePath, err = mirror.CleanPath(remotePath)
	if err != nil {
		return mirror.Confirmation{}, mirror.WriteFailed(0, "", err)
	}

	sha, err := m.revision(ctx, owner, repo, remotePath)
	if err != nil {
		return mirror.Confirmation{}, err
	}

	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(mirror.CommitMessage(remotePath, sha != "")),
		Content: content,
		Branch:  gh.String(m.cfg.Branch),
	}

	uctx, cancel := context.WithTimeout(ctx, m.cfg.Timeouts.Upload)
	defer cancel()

	var (
		result *gh.RepositoryContentResponse
		resp   *gh.Response
	)
	if sha == "" {
		result, resp, err = m.client.Repositories.CreateFile(uctx, owner, repo, remotePath, opts)
	} else {
		opts.SHA = gh.String(sha)
		result, resp, err = m.client.Repositories.UpdateFile(uctx, owner, repo, remotePath, opts)
	}
	if err != nil {
		status, body := describe(resp, err)
		return mirror.Confirmation{}, mirror.WriteFailed(status, body, err)
	}

	conf := mirror.Confirmation{Path: remotePath, Created: sha == ""}
	if result != nil && result.Content != nil {
		conf.Revision = result.Content.GetSHA()
	}

	m.log.Debug().Ctx(ctx).
		Str("path", remotePath).
		Str("sha", conf.Revision).
		Bool("created", conf.Created).
		Msg("pushed file")

	return conf, nil
}

// revision returns the sha of remotePath, or "" when it does not exist.
func (m *Mirror) revision(ctx context.Context, owner, repo, remotePath string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, m.cfg.Timeouts.Check)
	defer cancel()

	file, dir, resp, err := m.client.Repositories.GetContents(cctx, owner, repo, remotePath,
		&gh.RepositoryContentGetOptions{Ref: m.cfg.Branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", nil
		}
		status, body := describe(resp, err)
		return "", mirror.ReadFailed(status, body, err)
	}
	if file == nil {
		return "", mirror.ReadFailed(http.StatusOK, fmt.Sprintf("%s is a directory with %d entries", remotePath, len(dir)), nil)
	}
	return file.GetSHA(), nil
}

func (m *Mirror) target() (owner, repo string, err error) {
	if m.cfg.Token == "" {
		return "", "", mirror.NotConfigured("GitHub token missing")
	}
	if m.cfg.Repository == "" {
		return "", "", mirror.NotConfigured("GitHub repository not configured")
	}
	owner, repo, ok := strings.Cut(m.cfg.Repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", mirror.NotConfigured(fmt.Sprintf("GitHub repository %q is not owner/name", m.cfg.Repository))
	}
	return owner, repo, nil
}

func describe(resp *gh.Response, err error) (int, string) {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}

	var apiErr *gh.ErrorResponse
	if errors.As(err, &apiErr) {
		return status, apiErr.Message
	}
	return status, ""
}
