// Package workplan wires the wizard, stores, renderer and mirror into the
// operations the commands and forms consume.
package workplan

import (
	"fmt"
	"path/filepath"

	"github.com/colonyops/workplan/internal/core/config"
	"github.com/colonyops/workplan/internal/core/lookup"
	"github.com/colonyops/workplan/internal/core/mirror"
	"github.com/colonyops/workplan/internal/core/report"
	"github.com/colonyops/workplan/internal/data/datadir"
	"github.com/colonyops/workplan/internal/data/stores"
	"github.com/colonyops/workplan/pkg/executil"
)

// App is the central entry point for all workplan operations.
// Commands and forms consume App instead of cherry-picking raw dependencies.
type App struct {
	Config      *config.Config
	Dirs        datadir.Dirs
	Mirror      mirror.Mirror
	MasterLog   *stores.MasterLog
	Drafts      *stores.DraftStore
	Renderer    *report.Renderer
	Submissions *SubmissionService
}

// NewApp constructs an App for a resolved data directory.
func NewApp(cfg *config.Config, dirs datadir.Dirs, exec executil.Executor) (*App, error) {
	m, err := NewMirror(cfg.Sync)
	if err != nil {
		return nil, fmt.Errorf("configure mirror: %w", err)
	}

	fallback := datadir.TempRoot()
	masterLog := stores.NewMasterLog(dirs.MasterLog(), fallback, m)
	renderer := report.NewRenderer(exec, cfg.Report.PandocPath)

	var drafts *stores.DraftStore
	if cfg.Drafts.Enabled {
		drafts = stores.NewDraftStore(dirs.Drafts())
	}

	return &App{
		Config:    cfg,
		Dirs:      dirs,
		Mirror:    m,
		MasterLog: masterLog,
		Drafts:    drafts,
		Renderer:  renderer,
		Submissions: NewSubmissionService(SubmissionDeps{
			Annexes:  stores.NewAttachmentStore(dirs.Annexes(), filepath.Join(fallback, "annexes")),
			Reports:  stores.NewReportStore(dirs.Reports(), fallback),
			Log:      masterLog,
			Drafts:   drafts,
			Mirror:   m,
			Renderer: renderer,
			Format:   cfg.Report.Format,
		}),
	}, nil
}

// LoadLookup reads the configured lookup table. Errors are
// *lookup.ConfigurationError and halt an interactive session.
func (a *App) LoadLookup() (*lookup.Table, error) {
	return lookup.Load(a.Config.LookupFile)
}
