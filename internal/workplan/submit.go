package workplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/workplan/internal/core/logging"
	"github.com/colonyops/workplan/internal/core/mirror"
	"github.com/colonyops/workplan/internal/core/report"
	model "github.com/colonyops/workplan/internal/core/workplan"
	"github.com/colonyops/workplan/internal/data/stores"
)

// UnknownDivision is logged when the cover has no division name.
const UnknownDivision = "Unknown"

// PanicError is an unexpected failure recovered from the submission path.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("unexpected error when generating report: %v\n%s", e.Value, e.Stack)
}

// AnnexResult reports what happened to one attachment.
type AnnexResult struct {
	Name       string
	Saved      bool
	StoredPath string
	Message    string
}

// Result collects the independent outcomes of a submission. Report and log
// failures are reported per operation; mirror failures only as outcomes.
type Result struct {
	SubmissionID   string
	ReportName     string
	ReportPath     string
	ReportFallback bool
	ReportMirror   mirror.Outcome
	ReportErr      error
	Log            stores.AppendResult
	LogErr         error
	Annexes        []AnnexResult
}

// Err joins the hard failures of the submission, if any.
func (r Result) Err() error {
	return errors.Join(r.ReportErr, r.LogErr)
}

// SubmissionDeps are the collaborators of a SubmissionService.
type SubmissionDeps struct {
	Annexes  *stores.AttachmentStore
	Reports  *stores.ReportStore
	Log      *stores.MasterLog
	Drafts   *stores.DraftStore // optional
	Mirror   mirror.Mirror
	Renderer *report.Renderer
	Format   report.Format
}

// SubmissionService turns a finished answer tree into stored artifacts.
type SubmissionService struct {
	deps SubmissionDeps
	now  func() time.Time
	log  zerolog.Logger
}

func NewSubmissionService(deps SubmissionDeps) *SubmissionService {
	if deps.Mirror == nil {
		deps.Mirror = mirror.Disabled{}
	}
	if !deps.Format.IsValid() {
		deps.Format = report.FormatMarkdown
	}
	return &SubmissionService{deps: deps, now: time.Now, log: logging.Component("submit")}
}

// Submit stores pending annexes, renders and saves the report, appends the
// log row and mirrors each artifact. It returns an error only for a recovered
// panic; everything else is reported in the Result. The tree's annexes are
// updated with their stored paths.
func (s *SubmissionService) Submit(ctx context.Context, id string, tree *model.AnswerTree) (res Result, err error) {
	ctx = logging.WithSubmissionID(ctx, id)
	res.SubmissionID = id

	defer func() {
		if p := recover(); p != nil {
			perr := &PanicError{Value: p, Stack: debug.Stack()}
			s.log.Error().Ctx(ctx).Interface("panic", p).Bytes("stack", perr.Stack).Msg("submission panicked")
			err = perr
		}
	}()

	if tree == nil {
		tree = model.NewAnswerTree()
	}
	tree.Normalize()
	now := s.now()

	res.Annexes = s.storeAnnexes(ctx, tree)
	s.saveReport(ctx, tree, now, &res)

	res.Log, res.LogErr = s.appendLog(ctx, tree, now)
	if res.LogErr != nil {
		s.log.Error().Ctx(ctx).Err(res.LogErr).Msg("master log write failed")
	}

	if res.Err() == nil && s.deps.Drafts != nil {
		if derr := s.deps.Drafts.Delete(id); derr != nil {
			s.log.Warn().Ctx(ctx).Err(derr).Msg("remove draft")
		}
	}

	s.log.Info().Ctx(ctx).
		Str("report", res.ReportPath).
		Str("log", res.Log.Path).
		Int("annexes", len(res.Annexes)).
		Bool("ok", res.Err() == nil).
		Msg("submission finished")

	return res, nil
}

func (s *SubmissionService) storeAnnexes(ctx context.Context, tree *model.AnswerTree) []AnnexResult {
	var results []AnnexResult
	for i, a := range tree.Annexes {
		if a.Stored() {
			continue
		}

		r := AnnexResult{Name: a.OriginalName}
		data, err := os.ReadFile(a.SourcePath)
		if err == nil {
			r.StoredPath, err = s.deps.Annexes.Save(a.OriginalName, data)
		}
		if err != nil {
			r.Message = fmt.Sprintf("Failed to save: %v", err)
			s.log.Warn().Ctx(ctx).Err(err).Str("annex", a.OriginalName).Msg("annex not saved")
			results = append(results, r)
			continue
		}

		r.Saved = true
		tree.Annexes[i].StoredPath = r.StoredPath

		out := mirror.Push(ctx, s.deps.Mirror, data, mirror.AnnexPath(filepath.Base(r.StoredPath)))
		if out.OK {
			r.Message = out.Message
		} else {
			r.Message = "Saved locally, " + out.Message
		}
		results = append(results, r)
	}
	return results
}

func (s *SubmissionService) saveReport(ctx context.Context, tree *model.AnswerTree, now time.Time, res *Result) {
	format := s.deps.Format
	res.ReportName = model.ArtifactName(tree.Cover.Division, now, format.Ext())

	data, err := s.deps.Renderer.Render(ctx, report.Assemble(tree), format)
	if err != nil {
		res.ReportErr = &stores.PersistenceError{Op: "render report", Path: res.ReportName, Err: err}
		s.log.Error().Ctx(ctx).Err(err).Str("format", string(format)).Msg("render report")
		return
	}

	res.ReportPath, res.ReportFallback, res.ReportErr = s.deps.Reports.Save(res.ReportName, data)
	if res.ReportErr != nil {
		s.log.Error().Ctx(ctx).Err(res.ReportErr).Msg("save report")
		return
	}

	res.ReportMirror = mirror.Push(ctx, s.deps.Mirror, data, mirror.ReportPath(res.ReportName))
}

func (s *SubmissionService) appendLog(ctx context.Context, tree *model.AnswerTree, now time.Time) (stores.AppendResult, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return stores.AppendResult{}, fmt.Errorf("encode answers: %w", err)
	}

	division := strings.TrimSpace(tree.Cover.Division)
	if division == "" {
		division = UnknownDivision
	}

	return s.deps.Log.Append(ctx, stores.LogRow{
		Timestamp: now,
		Division:  division,
		Goals:     strings.Join(tree.SelectedGoals, ", "),
		Data:      string(data),
	})
}
