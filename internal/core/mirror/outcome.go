package mirror

import (
	"context"
	"fmt"

	"github.com/colonyops/workplan/internal/core/logging"
)

// Outcome is the user facing result of a mirror attempt. A failed outcome is
// a warning, never an error for the surrounding operation.
type Outcome struct {
	OK      bool   `json:"ok"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// NewOutcome converts an upsert result into an Outcome.
func NewOutcome(backend, remotePath string, conf Confirmation, err error) Outcome {
	if err != nil {
		return Outcome{Path: remotePath, Message: fmt.Sprintf("%s: %v", backend, err)}
	}
	format := "Updated on %s: %s"
	if conf.Created {
		format = "Pushed to %s: %s"
	}
	return Outcome{OK: true, Path: conf.Path, Message: fmt.Sprintf(format, backend, conf.Path)}
}

// Push upserts content and reports the outcome. Failures are logged at warn
// level and swallowed.
func Push(ctx context.Context, m Mirror, content []byte, remotePath string) Outcome {
	conf, err := m.Upsert(ctx, content, remotePath)
	out := NewOutcome(m.Name(), remotePath, conf, err)
	if err != nil {
		logger := logging.Component("mirror")
		logger.Warn().Ctx(ctx).Err(err).Str("backend", m.Name()).Str("path", remotePath).Msg("mirror failed")
	}
	return out
}
