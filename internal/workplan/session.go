package workplan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/workplan/internal/core/config"
	"github.com/colonyops/workplan/internal/core/logging"
	"github.com/colonyops/workplan/internal/core/wizard"
	model "github.com/colonyops/workplan/internal/core/workplan"
	"github.com/colonyops/workplan/internal/data/datadir"
	"github.com/colonyops/workplan/internal/data/stores"
)

// Session is one user's pass through the wizard. It carries everything a
// step or the submission needs; nothing is read from globals.
type Session struct {
	ID      string
	Dirs    datadir.Dirs
	Sync    config.SyncConfig
	Machine *wizard.Machine

	drafts *stores.DraftStore
	now    func() time.Time
	log    zerolog.Logger
}

// NewSession starts a session with an empty tree, or resumes the draft
// resumeID when it is not empty.
func (a *App) NewSession(lookup wizard.Lookup, resumeID string) (*Session, error) {
	s := &Session{
		ID:     uuid.NewString(),
		Dirs:   a.Dirs,
		Sync:   a.Config.Sync,
		drafts: a.Drafts,
		now:    time.Now,
		log:    logging.Component("session"),
	}

	tree := model.NewAnswerTree()
	start := wizard.StepCover

	if resumeID != "" {
		if a.Drafts == nil {
			return nil, errors.New("drafts are disabled")
		}
		d, err := a.Drafts.Get(resumeID)
		if err != nil {
			return nil, fmt.Errorf("resume draft: %w", err)
		}
		s.ID, tree, start = d.ID, d.Tree, wizard.Step(d.Step)
	}

	s.Machine = wizard.New(tree, lookup, wizard.WithStartStep(start), wizard.WithWriteHook(s.saveDraft))
	return s, nil
}

// Context returns ctx carrying the session and current step for logging.
func (s *Session) Context(ctx context.Context) context.Context {
	ctx = logging.WithSubmissionID(ctx, s.ID)
	return logging.WithStep(ctx, int(s.Machine.Step()))
}

// Submit runs the submission for this session's tree.
func (s *Session) Submit(ctx context.Context, svc *SubmissionService) (Result, error) {
	return svc.Submit(s.Context(ctx), s.ID, s.Machine.Tree())
}

func (s *Session) saveDraft(step wizard.Step, tree *model.AnswerTree) {
	if s.drafts == nil {
		return
	}
	err := s.drafts.Save(stores.Draft{ID: s.ID, Step: int(step), UpdatedAt: s.now(), Tree: tree})
	if err != nil {
		s.log.Warn().Err(err).Str("submission_id", s.ID).Msg("save draft")
	}
}
