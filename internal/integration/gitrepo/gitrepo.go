// Package gitrepo mirrors artifacts by committing them into a local git
// repository, optionally pushing the branch to a remote.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/rs/zerolog"

	"github.com/colonyops/workplan/internal/core/logging"
	"github.com/colonyops/workplan/internal/core/mirror"
)

const remoteName = "origin"

// Config configures the git mirror.
type Config struct {
	Path        string
	RemoteURL   string
	Branch      string
	AuthorName  string
	AuthorEmail string
	Push        bool
	// Token authenticates pushes to http(s) remotes.
	Token    string
	Timeouts mirror.Timeouts
}

// Mirror implements mirror.Mirror on a git working tree.
type Mirror struct {
	mu  sync.Mutex
	cfg Config
	log zerolog.Logger
	now func() time.Time
}

var _ mirror.Mirror = (*Mirror)(nil)

// New returns a Mirror. The repository is created on first use.
func New(cfg Config) *Mirror {
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.AuthorName == "" {
		cfg.AuthorName = "workplan"
	}
	if cfg.AuthorEmail == "" {
		cfg.AuthorEmail = "workplan@localhost"
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()
	return &Mirror{cfg: cfg, log: logging.Component("gitrepo"), now: time.Now}
}

func (m *Mirror) Name() string { return "git" }

// Upsert writes content to remotePath inside the working tree and commits it.
func (m *Mirror) Upsert(ctx context.Context, content []byte, remotePath string) (mirror.Confirmation, error) {
	if m.cfg.Path == "" {
		return mirror.Confirmation{}, mirror.NotConfigured("git repository path not configured")
	}
	remotePath, err := mirror.CleanPath(remotePath)
	if err != nil {
		return mirror.Confirmation{}, mirror.WriteFailed(0, "", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	repo, err := m.open()
	if err != nil {
		return mirror.Confirmation{}, mirror.ReadFailed(0, "", err)
	}

	exists, err := m.tracked(repo, remotePath)
	if err != nil {
		return mirror.Confirmation{}, mirror.ReadFailed(0, "", err)
	}

	hash, err := m.commit(repo, content, remotePath, exists)
	if err != nil {
		return mirror.Confirmation{}, mirror.WriteFailed(0, "", err)
	}

	if m.cfg.Push && m.cfg.RemoteURL != "" {
		if err := m.push(ctx, repo); err != nil {
			return mirror.Confirmation{}, mirror.WriteFailed(0, "", err)
		}
	}

	m.log.Debug().Ctx(ctx).
		Str("path", remotePath).
		Str("commit", hash.String()).
		Bool("created", !exists).
		Msg("committed file")

	return mirror.Confirmation{Path: remotePath, Revision: hash.String(), Created: !exists}, nil
}

func (m *Mirror) open() (*git.Repository, error) {
	repo, err := git.PlainOpen(m.cfg.Path)
	if err == nil {
		return repo, m.checkoutBranch(repo)
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	if err := os.MkdirAll(m.cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create repo dir: %w", err)
	}
	repo, err = git.PlainInitWithOptions(m.cfg.Path, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(m.cfg.Branch)},
	})
	if err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}
	return repo, nil
}

// checkoutBranch moves HEAD to the configured branch when the repository has
// commits on another one.
func (m *Mirror) checkoutBranch(repo *git.Repository) error {
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read HEAD: %w", err)
	}

	want := plumbing.NewBranchReferenceName(m.cfg.Branch)
	if head.Name() == want {
		return nil
	}

	_, refErr := repo.Reference(want, true)
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	err = wt.Checkout(&git.CheckoutOptions{Branch: want, Create: refErr != nil, Keep: true})
	if err != nil {
		return fmt.Errorf("checkout %s: %w", m.cfg.Branch, err)
	}
	return nil
}

// tracked reports whether remotePath exists in the HEAD commit.
func (m *Mirror) tracked(repo *git.Repository, remotePath string) (bool, error) {
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read HEAD: %w", err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return false, fmt.Errorf("read head commit: %w", err)
	}
	_, err = commit.File(remotePath)
	if errors.Is(err, object.ErrFileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", remotePath, err)
	}
	return true, nil
}

func (m *Mirror) commit(repo *git.Repository, content []byte, remotePath string, exists bool) (plumbing.Hash, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("open worktree: %w", err)
	}

	abs := filepath.Join(m.cfg.Path, filepath.FromSlash(remotePath))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(abs, content, 0o644); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("write file: %w", err)
	}
	if _, err := wt.Add(remotePath); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("git add: %w", err)
	}

	hash, err := wt.Commit(mirror.CommitMessage(remotePath, exists), &git.CommitOptions{
		Author: &object.Signature{
			Name:  m.cfg.AuthorName,
			Email: m.cfg.AuthorEmail,
			When:  m.now(),
		},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("commit: %w", err)
	}
	return hash, nil
}

func (m *Mirror) push(ctx context.Context, repo *git.Repository) error {
	if _, err := repo.Remote(remoteName); errors.Is(err, git.ErrRemoteNotFound) {
		_, err := repo.CreateRemote(&gitconfig.RemoteConfig{Name: remoteName, URLs: []string{m.cfg.RemoteURL}})
		if err != nil {
			return fmt.Errorf("create remote: %w", err)
		}
	}

	ref := plumbing.NewBranchReferenceName(m.cfg.Branch)
	opts := &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(ref + ":" + ref)},
	}
	if m.cfg.Token != "" && strings.HasPrefix(m.cfg.RemoteURL, "http") {
		opts.Auth = &githttp.BasicAuth{Username: "x-access-token", Password: m.cfg.Token}
	}

	pctx, cancel := context.WithTimeout(ctx, m.cfg.Timeouts.Upload)
	defer cancel()

	err := repo.PushContext(pctx, opts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}
