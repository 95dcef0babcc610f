// Package tui renders the wizard steps as terminal forms and previews the
// assembled report.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog"

	"github.com/colonyops/workplan/internal/core/logging"
	"github.com/colonyops/workplan/internal/core/styles"
	"github.com/colonyops/workplan/internal/core/wizard"
	model "github.com/colonyops/workplan/internal/core/workplan"
	"github.com/colonyops/workplan/internal/workplan"
)

// Action is the navigation choice made at the bottom of each step.
type Action string

const (
	ActionNext    Action = "next"
	ActionBack    Action = "back"
	ActionPreview Action = "preview"
	ActionSubmit  Action = "submit"
	ActionQuit    Action = "quit"
)

var actionLabels = map[Action]string{
	ActionNext:    "Next",
	ActionBack:    "Back",
	ActionPreview: "Preview report",
	ActionSubmit:  "Generate report & submit",
	ActionQuit:    "Save draft & quit",
}

// PreviewFunc shows the report for tree.
type PreviewFunc func(ctx context.Context, tree *model.AnswerTree) error

// page is one rendering of a step.
type page struct {
	step     wizard.Step
	warnings []wizard.Warning
	state    stepState
	actions  []Action
	action   Action
}

// Runner drives a session's machine through the step forms until the user
// submits or quits.
type Runner struct {
	session *workplan.Session
	preview PreviewFunc
	out     io.Writer
	log     zerolog.Logger

	prompt func(ctx context.Context, p *page) error
}

// NewRunner returns a Runner for s. preview may be nil to hide the preview
// action.
func NewRunner(s *workplan.Session, preview PreviewFunc, out io.Writer) *Runner {
	r := &Runner{
		session: s,
		preview: preview,
		out:     out,
		log:     logging.Component("tui"),
	}
	r.prompt = r.runForm
	return r
}

// Run shows steps until the user picks submit or quit. An aborted form
// (ctrl+c) counts as quit.
func (r *Runner) Run(ctx context.Context) (Action, error) {
	m := r.session.Machine

	var pending []wizard.Warning
	for {
		state, viewWarnings := newStepState(m)
		p := &page{
			step:     m.Step(),
			warnings: append(pending, viewWarnings...),
			state:    state,
			actions:  r.actions(m),
		}
		p.action = p.actions[0]

		if err := r.prompt(r.session.Context(ctx), p); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return ActionQuit, nil
			}
			return "", fmt.Errorf("run %s: %w", p.step, err)
		}

		pending = state.apply(m)

		switch p.action {
		case ActionNext:
			m.Advance()
		case ActionBack:
			m.Retreat()
		case ActionPreview:
			if err := r.preview(ctx, m.Tree()); err != nil {
				r.log.Warn().Ctx(r.session.Context(ctx)).Err(err).Msg("preview failed")
				pending = append(pending, wizard.Warning{Step: p.step, Message: "preview unavailable: " + err.Error()})
			}
		case ActionSubmit, ActionQuit:
			return p.action, nil
		}
	}
}

func (r *Runner) actions(m *wizard.Machine) []Action {
	var out []Action
	if m.IsTerminal() {
		out = append(out, ActionSubmit)
	} else {
		out = append(out, ActionNext)
	}
	if m.Step() > wizard.StepCover {
		out = append(out, ActionBack)
	}
	if r.preview != nil {
		out = append(out, ActionPreview)
	}
	return append(out, ActionQuit)
}

func (r *Runner) runForm(ctx context.Context, p *page) error {
	_, _ = fmt.Fprintln(r.out, styles.StepTitleStyle.Render(p.step.String())+" "+
		styles.StepCounterStyle.Render(fmt.Sprintf("(%d/%d)", int(p.step), wizard.StepCount)))

	groups := p.state.groups()
	if len(p.warnings) > 0 {
		groups = append([]*huh.Group{warningGroup(p.warnings)}, groups...)
	}
	groups = append(groups, navigationGroup(p))

	return huh.NewForm(groups...).WithTheme(styles.FormTheme()).RunWithContext(ctx)
}

func warningGroup(warnings []wizard.Warning) *huh.Group {
	lines := make([]string, 0, len(warnings))
	for _, w := range warnings {
		lines = append(lines, w.Message)
	}
	return huh.NewGroup(huh.NewNote().Title("Heads up").Description(strings.Join(lines, "\n")))
}

func navigationGroup(p *page) *huh.Group {
	opts := make([]huh.Option[Action], 0, len(p.actions))
	for _, a := range p.actions {
		opts = append(opts, huh.NewOption(actionLabels[a], a))
	}
	return huh.NewGroup(
		huh.NewSelect[Action]().Title("Continue").Options(opts...).Value(&p.action),
	)
}
