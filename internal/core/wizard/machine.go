package wizard

import (
	"github.com/rs/zerolog"

	"github.com/colonyops/workplan/internal/core/logging"
	"github.com/colonyops/workplan/internal/core/workplan"
)

// Lookup provides the allowed goal and objective values.
type Lookup interface {
	// Goals returns the distinct goals, sorted.
	Goals() []string
	// Objectives returns the distinct objectives for goal in first-seen order.
	Objectives(goal string) []string
}

// WriteHook is called after every Apply with the step that wrote.
type WriteHook func(step Step, tree *workplan.AnswerTree)

// Machine tracks the current step of one session and owns its answer tree.
// It is not safe for concurrent use; a session drives it synchronously.
type Machine struct {
	tree    *workplan.AnswerTree
	lookup  Lookup
	step    Step
	onWrite WriteHook
	log     zerolog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithStartStep starts the machine at step (clamped), used when resuming a draft.
func WithStartStep(step Step) Option {
	return func(m *Machine) { m.step = step.Clamp() }
}

// WithWriteHook registers fn to be called after every write.
func WithWriteHook(fn WriteHook) Option {
	return func(m *Machine) { m.onWrite = fn }
}

// New returns a machine positioned at step 1. A nil tree starts empty.
func New(tree *workplan.AnswerTree, lookup Lookup, opts ...Option) *Machine {
	if tree == nil {
		tree = workplan.NewAnswerTree()
	}
	tree.Normalize()

	m := &Machine{
		tree:   tree,
		lookup: lookup,
		step:   StepCover,
		log:    logging.Component("wizard"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Step returns the current step.
func (m *Machine) Step() Step { return m.step }

// Tree returns the answer tree. Callers must not retain it across sessions.
func (m *Machine) Tree() *workplan.AnswerTree { return m.tree }

// IsTerminal reports whether the current step is the last one.
func (m *Machine) IsTerminal() bool { return m.step == StepAnnexes }

// Advance moves to the next step. It returns false at the terminal step.
// Advancing never depends on validation.
func (m *Machine) Advance() bool {
	if m.step >= StepAnnexes {
		return false
	}
	m.step++
	m.log.Debug().Int("step", int(m.step)).Msg("advance")
	return true
}

// Retreat moves to the previous step. It returns false at step 1.
func (m *Machine) Retreat() bool {
	if m.step <= StepCover {
		return false
	}
	m.step--
	m.log.Debug().Int("step", int(m.step)).Msg("retreat")
	return true
}

func (m *Machine) wrote(step Step) {
	if m.onWrite != nil {
		m.onWrite(step, m.tree)
	}
}

func (m *Machine) lookupGoals() []string {
	if m.lookup == nil {
		return nil
	}
	return m.lookup.Goals()
}

func (m *Machine) lookupObjectives(goal string) []string {
	if m.lookup == nil {
		return nil
	}
	return m.lookup.Objectives(goal)
}
