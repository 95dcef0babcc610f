// Package datadir selects the directory every persisted artifact lives under.
package datadir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/workplan/internal/core/logging"
)

// FallbackName is the directory created under the OS temp dir.
const FallbackName = "workplan_data"

// Dirs is a resolved data directory.
type Dirs struct {
	Root string
	// Fallback is true when Root is under the temp directory.
	Fallback bool
}

func (d Dirs) Annexes() string { return filepath.Join(d.Root, "annexes") }
func (d Dirs) Reports() string { return filepath.Join(d.Root, "generated_reports") }
func (d Dirs) Drafts() string  { return filepath.Join(d.Root, "drafts") }

// MasterLog is the path of the tabular submission log.
func (d Dirs) MasterLog() string { return filepath.Join(d.Root, "master_log.xlsx") }

// LogFile is the path of the application log.
func (d Dirs) LogFile() string { return filepath.Join(d.Root, "workplan.log") }

// TempRoot is the per-operation fallback root used when a write under Root
// is refused.
func TempRoot() string { return filepath.Join(os.TempDir(), FallbackName) }

// Resolver picks the data directory once and returns the same answer for the
// lifetime of the process.
type Resolver struct {
	preferred string
	tempRoot  string
	log       zerolog.Logger

	once sync.Once
	dirs Dirs
	err  error
}

// NewResolver returns a resolver for the preferred directory.
func NewResolver(preferred string) *Resolver {
	return &Resolver{preferred: preferred, tempRoot: TempRoot(), log: logging.Component("datadir")}
}

// Resolve returns the preferred directory when it can be created and written
// to, otherwise the temp fallback. Only the first call does any I/O.
func (r *Resolver) Resolve() (Dirs, error) {
	r.once.Do(func() {
		err := errors.New("no preferred directory configured")
		if r.preferred != "" {
			err = probe(r.preferred)
		}
		if err == nil {
			r.dirs = Dirs{Root: r.preferred}
			return
		}
		r.log.Warn().Err(err).Str("dir", r.preferred).Str("fallback", r.tempRoot).
			Msg("preferred data dir not writable, falling back to temp dir")

		if err := probe(r.tempRoot); err != nil {
			r.err = fmt.Errorf("resolve data dir: %w", err)
			return
		}
		r.dirs = Dirs{Root: r.tempRoot, Fallback: true}
	})
	return r.dirs, r.err
}

// probe creates dir and checks a file can be written inside it.
func probe(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
