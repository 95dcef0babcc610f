package stores

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeFileFunc writes data to path, replacing any previous content.
type writeFileFunc func(path string, data []byte) error

// writeAtomic writes through a temp file in the same directory and renames it
// into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// writeWithFallback writes to primary and, when that is refused for lack of
// permission, to the same file name under fallbackDir. It returns the path
// that was written.
func writeWithFallback(write writeFileFunc, op, primary, fallbackDir string, data []byte) (string, bool, error) {
	err := write(primary, data)
	if err == nil {
		return primary, false, nil
	}
	if !IsPermission(err) || fallbackDir == "" {
		return "", false, &PersistenceError{Op: op, Path: primary, Err: err}
	}

	fallback := filepath.Join(fallbackDir, filepath.Base(primary))
	if ferr := write(fallback, data); ferr != nil {
		return "", false, &PersistenceError{Op: op, Path: fallback, Err: fmt.Errorf("%w (after %v)", ferr, err)}
	}
	return fallback, true, nil
}
