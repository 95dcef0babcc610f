// Package mirror defines the best-effort remote copy of locally persisted
// artifacts. Backends live under internal/integration.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"
)

// Default call timeouts.
const (
	DefaultCheckTimeout  = 30 * time.Second
	DefaultUploadTimeout = 60 * time.Second
)

// Remote layout.
const (
	LogPath    = "master_log.xlsx"
	ReportsDir = "generated_reports"
	AnnexesDir = "annexes"
)

// Confirmation describes a completed upsert.
type Confirmation struct {
	Path     string
	Revision string
	// Created is false when an existing record was updated.
	Created bool
}

// Mirror copies content to a path in a remote versioned store, creating the
// record or updating it with the current revision marker.
type Mirror interface {
	Name() string
	Upsert(ctx context.Context, content []byte, remotePath string) (Confirmation, error)
}

// Timeouts bounds the two network phases of an upsert.
type Timeouts struct {
	Check  time.Duration
	Upload time.Duration
}

// WithDefaults fills zero values.
func (t Timeouts) WithDefaults() Timeouts {
	if t.Check <= 0 {
		t.Check = DefaultCheckTimeout
	}
	if t.Upload <= 0 {
		t.Upload = DefaultUploadTimeout
	}
	return t
}

// ReportPath returns the remote path of a generated report.
func ReportPath(filename string) string {
	return path.Join(ReportsDir, filename)
}

// AnnexPath returns the remote path of a stored attachment.
func AnnexPath(filename string) string {
	return path.Join(AnnexesDir, filename)
}

// CommitMessage returns the message used for a create or update.
func CommitMessage(remotePath string, exists bool) string {
	if exists {
		return "Update " + remotePath
	}
	return "Add " + remotePath
}

// CleanPath normalizes a remote path to a slash separated relative path.
func CleanPath(remotePath string) (string, error) {
	p := path.Clean("/" + strings.ReplaceAll(remotePath, `\`, "/"))
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." {
		return "", fmt.Errorf("invalid remote path %q", remotePath)
	}
	return p, nil
}

// UpsertFile reads localPath and mirrors it to remotePath.
func UpsertFile(ctx context.Context, m Mirror, localPath, remotePath string) (Confirmation, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return Confirmation{}, fmt.Errorf("read %s: %w", localPath, err)
	}
	return m.Upsert(ctx, content, remotePath)
}

// Disabled is a Mirror that always reports NotConfigured.
type Disabled struct {
	Reason string
}

func (d Disabled) Name() string { return "disabled" }

func (d Disabled) Upsert(context.Context, []byte, string) (Confirmation, error) {
	reason := d.Reason
	if reason == "" {
		reason = "remote sync disabled by configuration"
	}
	return Confirmation{}, NotConfigured(reason)
}

// IsTimeout reports whether err came from an expired deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
