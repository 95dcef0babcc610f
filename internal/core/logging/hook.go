package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts submission_id and step from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if id := GetSubmissionID(ctx); id != "" {
		e.Str("submission_id", id)
	}

	if step := GetStep(ctx); step != 0 {
		e.Int("step", step)
	}
}
