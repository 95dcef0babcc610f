package stores

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxRenames bounds collision renaming for one name.
const maxRenames = 10_000

// AttachmentStore saves uploaded annex files under a directory without ever
// overwriting an existing file.
type AttachmentStore struct {
	dir         string
	fallbackDir string
}

// NewAttachmentStore returns a store writing to dir, or fallbackDir when dir
// refuses writes.
func NewAttachmentStore(dir, fallbackDir string) *AttachmentStore {
	return &AttachmentStore{dir: dir, fallbackDir: fallbackDir}
}

// Save stores data under name and returns the stored path. When name is taken
// the stored file becomes "<stem>_<n><ext>".
func (s *AttachmentStore) Save(name string, data []byte) (string, error) {
	clean, err := SafeName(name)
	if err != nil {
		return "", &PersistenceError{Op: "save attachment", Path: name, Err: err}
	}

	path, err := createUnique(s.dir, clean, data)
	if err == nil {
		return path, nil
	}
	if !IsPermission(err) || s.fallbackDir == "" {
		return "", &PersistenceError{Op: "save attachment", Path: filepath.Join(s.dir, clean), Err: err}
	}

	path, ferr := createUnique(s.fallbackDir, clean, data)
	if ferr != nil {
		return "", &PersistenceError{Op: "save attachment", Path: filepath.Join(s.fallbackDir, clean), Err: ferr}
	}
	return path, nil
}

// SafeName reduces name to its base file name.
func SafeName(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if base == "." || base == ".." || base == "/" || base == "" {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return base, nil
}

// createUnique writes data to the first free candidate of name in dir. O_EXCL
// keeps a concurrent writer from being overwritten.
func createUnique(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := range maxRenames {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}

		_, werr := f.Write(data)
		cerr := f.Close()
		if err := errors.Join(werr, cerr); err != nil {
			_ = os.Remove(path)
			return "", err
		}
		return path, nil
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", name, maxRenames)
}
