package stores

import (
	"path/filepath"
)

// ReportStore saves generated report artifacts.
type ReportStore struct {
	dir         string
	fallbackDir string
	write       writeFileFunc
}

func NewReportStore(dir, fallbackDir string) *ReportStore {
	return &ReportStore{dir: dir, fallbackDir: fallbackDir, write: writeAtomic}
}

// Save writes data as filename and returns the written path. fallback is true
// when the report went to the fallback directory.
func (s *ReportStore) Save(filename string, data []byte) (path string, fallback bool, err error) {
	name, err := SafeName(filename)
	if err != nil {
		return "", false, &PersistenceError{Op: "save report", Path: filename, Err: err}
	}
	return writeWithFallback(s.write, "save report", filepath.Join(s.dir, name), s.fallbackDir, data)
}
