package stores

import (
	"errors"
	"fmt"
	"io/fs"
)

// PersistenceError is a local write that failed at both the primary and the
// fallback location.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPermission reports whether err warrants the temp directory fallback.
func IsPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}
