package logging

import "context"

type contextKey string

const (
	submissionIDKey contextKey = "submission_id"
	stepKey         contextKey = "step"
)

// WithSubmissionID adds a submission ID to the context.
func WithSubmissionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, submissionIDKey, id)
}

// WithStep adds the current wizard step to the context.
func WithStep(ctx context.Context, step int) context.Context {
	return context.WithValue(ctx, stepKey, step)
}

// GetSubmissionID retrieves the submission ID from the context.
// Returns empty string if not present.
func GetSubmissionID(ctx context.Context) string {
	if id, ok := ctx.Value(submissionIDKey).(string); ok {
		return id
	}
	return ""
}

// GetStep retrieves the wizard step from the context.
// Returns 0 if not present.
func GetStep(ctx context.Context) int {
	if step, ok := ctx.Value(stepKey).(int); ok {
		return step
	}
	return 0
}
