package mirror

import (
	"errors"
	"fmt"
)

// Sync error kinds, matched with errors.Is.
var (
	ErrNotConfigured     = errors.New("remote sync not configured")
	ErrRemoteReadFailed  = errors.New("remote read failed")
	ErrRemoteWriteFailed = errors.New("remote write failed")
)

// SyncError is an advisory mirror failure. Status and Body are set when the
// remote answered with an unexpected status.
type SyncError struct {
	Kind   error
	Status int
	Body   string
	Err    error
}

func (e *SyncError) Error() string {
	var b []byte
	b = fmt.Appendf(b, "%v", e.Kind)
	if e.Status != 0 {
		b = fmt.Appendf(b, ": %d", e.Status)
		if e.Body != "" {
			b = fmt.Appendf(b, " - %s", truncate(e.Body, 200))
		}
	}
	if e.Err != nil {
		b = fmt.Appendf(b, ": %v", e.Err)
	}
	return string(b)
}

func (e *SyncError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NotConfigured returns a NotConfigured error with a reason.
func NotConfigured(reason string) error {
	return &SyncError{Kind: ErrNotConfigured, Err: errors.New(reason)}
}

// ReadFailed wraps a failed existence check.
func ReadFailed(status int, body string, err error) error {
	return &SyncError{Kind: ErrRemoteReadFailed, Status: status, Body: body, Err: err}
}

// WriteFailed wraps a failed create or update.
func WriteFailed(status int, body string, err error) error {
	return &SyncError{Kind: ErrRemoteWriteFailed, Status: status, Body: body, Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
