package workplan

import (
	"fmt"

	"github.com/colonyops/workplan/internal/core/config"
	"github.com/colonyops/workplan/internal/core/mirror"
	"github.com/colonyops/workplan/internal/integration/github"
	"github.com/colonyops/workplan/internal/integration/gitrepo"
	"github.com/colonyops/workplan/internal/integration/objectstore"
)

// NewMirror builds the configured mirror backend. A disabled sync yields a
// mirror whose calls all report NotConfigured.
func NewMirror(cfg config.SyncConfig) (mirror.Mirror, error) {
	if !cfg.Enabled {
		return mirror.Disabled{Reason: "remote sync disabled by configuration"}, nil
	}

	timeouts := mirror.Timeouts{Check: cfg.CheckTimeout, Upload: cfg.UploadTimeout}

	switch cfg.Backend {
	case config.BackendGitHub:
		return github.New(github.Config{
			Token:      cfg.GitHub.Token,
			Repository: cfg.GitHub.Repository,
			Branch:     cfg.GitHub.Branch,
			APIURL:     cfg.GitHub.APIURL,
			Timeouts:   timeouts,
		})
	case config.BackendGit:
		return gitrepo.New(gitrepo.Config{
			Path:        cfg.Git.Path,
			RemoteURL:   cfg.Git.RemoteURL,
			Branch:      cfg.Git.Branch,
			AuthorName:  cfg.Git.AuthorName,
			AuthorEmail: cfg.Git.AuthorEmail,
			Push:        cfg.Git.Push,
			Token:       cfg.GitHub.Token,
			Timeouts:    timeouts,
		}), nil
	case config.BackendS3:
		return objectstore.New(objectstore.Config{
			Endpoint:  cfg.S3.Endpoint,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
			Region:    cfg.S3.Region,
			Prefix:    cfg.S3.Prefix,
			Timeouts:  timeouts,
		})
	default:
		return nil, fmt.Errorf("unknown sync backend %q", cfg.Backend)
	}
}
