package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/colonyops/workplan/internal/core/wizard"
	"github.com/colonyops/workplan/internal/core/workplan"
)

// stepState holds the values bound to one step's form fields.
type stepState interface {
	groups() []*huh.Group
	apply(m *wizard.Machine) []wizard.Warning
}

// newStepState builds the bound state for the machine's current step along
// with any warnings its view carries.
func newStepState(m *wizard.Machine) (stepState, []wizard.Warning) {
	switch m.Step() {
	case wizard.StepCover:
		return &coverState{cover: m.CoverView()}, nil
	case wizard.StepGoals:
		return newGoalsState(m.GoalsView()), nil
	case wizard.StepAggregateObjectives:
		v := m.AggregateView()
		return newAggregateState(v), v.Warnings
	case wizard.StepSpecificObjectives:
		v := m.SpecificView()
		return newSpecificState(v), v.Warnings
	case wizard.StepActivities:
		v := m.ActivitiesView()
		return newActivitiesState(v), v.Warnings
	case wizard.StepGoalMetrics:
		v, warnings := m.GoalMetricsView()
		return &goalMetricsState{goals: v}, warnings
	case wizard.StepObjectiveMetrics:
		v := m.ObjectiveMetricsView()
		return newObjectiveMetricsState(v), v.Warnings
	case wizard.StepAdditional:
		return &additionalState{info: m.AdditionalView()}, nil
	default:
		return &annexesState{existing: m.AnnexesView()}, nil
	}
}

// --- cover -------------------------------------------------------------------

type coverState struct {
	cover workplan.Cover
}

func (s *coverState) groups() []*huh.Group {
	c := &s.cover
	return []*huh.Group{huh.NewGroup(
		huh.NewInput().Title("Division").Value(&c.Division),
		huh.NewInput().Title("Director").Value(&c.Director),
		huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(&c.Date),
		huh.NewInput().Title("Version").Value(&c.Version),
		huh.NewInput().Title("FTEs").Value(&c.FTEs),
		huh.NewText().Title("Financial Resources").Value(&c.FinancialResources),
		huh.NewConfirm().Title("Director's signature provided?").Value(&c.SignatureProvided),
	)}
}

func (s *coverState) apply(m *wizard.Machine) []wizard.Warning {
	m.ApplyCover(s.cover)
	return nil
}

// --- goals -------------------------------------------------------------------

type goalsState struct {
	options  []string
	selected []string
}

func newGoalsState(v wizard.GoalsView) *goalsState {
	return &goalsState{options: v.Options, selected: v.Selected}
}

func (s *goalsState) groups() []*huh.Group {
	if len(s.options) == 0 {
		return []*huh.Group{huh.NewGroup(
			huh.NewNote().Title("Strategic Goals").Description("The lookup table lists no goals."),
		)}
	}
	return []*huh.Group{huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Strategic Goals").
			Description("Select every goal this workplan contributes to").
			Options(huh.NewOptions(s.options...)...).
			Value(&s.selected),
	)}
}

func (s *goalsState) apply(m *wizard.Machine) []wizard.Warning {
	return m.ApplyGoals(wizard.GoalsInput{Selected: s.selected})
}

// --- aggregate objectives ----------------------------------------------------

type aggregateGoal struct {
	goal     string
	options  []string
	selected []string
	custom   bool
	count    int
	// entries backs one input box per slot; values stay at their index
	// when count changes.
	entries [wizard.MaxCustomObjectives]string
}

type aggregateState struct {
	goals []aggregateGoal
}

func newAggregateState(v wizard.AggregateView) *aggregateState {
	s := &aggregateState{goals: make([]aggregateGoal, len(v.Goals))}
	for i, g := range v.Goals {
		s.goals[i] = aggregateGoal{
			goal:     g.Goal,
			options:  g.Options,
			selected: g.Selected,
			custom:   g.CustomEnabled,
			count:    wizard.ClampCustomCount(len(g.Custom)),
		}
		copy(s.goals[i].entries[:], g.Custom)
	}
	return s
}

func countOptions() []huh.Option[int] {
	opts := make([]huh.Option[int], 0, wizard.MaxCustomObjectives)
	for n := wizard.MinCustomObjectives; n <= wizard.MaxCustomObjectives; n++ {
		opts = append(opts, huh.NewOption(strconv.Itoa(n), n))
	}
	return opts
}

func (s *aggregateState) groups() []*huh.Group {
	var out []*huh.Group
	for i := range s.goals {
		g := &s.goals[i]

		fields := []huh.Field{}
		if len(g.options) > 0 {
			fields = append(fields, huh.NewMultiSelect[string]().
				Title(g.goal).
				Description("Aggregate divisional objectives").
				Options(huh.NewOptions(g.options...)...).
				Value(&g.selected))
		} else {
			fields = append(fields, huh.NewNote().Title(g.goal).Description("No objectives listed for this goal."))
		}
		fields = append(fields, huh.NewConfirm().Title("Add custom objectives?").Value(&g.custom))
		out = append(out, huh.NewGroup(fields...))

		out = append(out, huh.NewGroup(
			huh.NewSelect[int]().Title("Number of custom objectives").Options(countOptions()...).Value(&g.count),
		).WithHideFunc(func() bool { return !g.custom }))

		// huh cannot add fields to a running form, so every slot gets a group
		// and the count decides which are shown.
		for slot := range g.entries {
			out = append(out, huh.NewGroup(
				huh.NewInput().
					Title(fmt.Sprintf("%s: custom objective %d", g.goal, slot+1)).
					Value(&g.entries[slot]),
			).WithHideFunc(func() bool { return !g.custom || slot >= g.count }))
		}
	}
	return out
}

// customEntries returns the first count slots.
func (g *aggregateGoal) customEntries() []string {
	n := wizard.ClampCustomCount(g.count)
	return append([]string(nil), g.entries[:n]...)
}

func (s *aggregateState) apply(m *wizard.Machine) []wizard.Warning {
	in := wizard.AggregateInput{Goals: make([]wizard.AggregateGoalInput, 0, len(s.goals))}
	for i := range s.goals {
		g := &s.goals[i]
		in.Goals = append(in.Goals, wizard.AggregateGoalInput{
			Goal:          g.goal,
			Selected:      g.selected,
			CustomEnabled: g.custom,
			CustomCount:   wizard.ClampCustomCount(g.count),
			Custom:        g.customEntries(),
		})
	}
	m.ApplyAggregate(in)
	return nil
}

// --- specific objectives -----------------------------------------------------

type specificItem struct {
	key       workplan.ObjectiveKey
	requested bool
	text      string
}

type specificState struct {
	items []specificItem
}

func newSpecificState(v wizard.SpecificView) *specificState {
	s := &specificState{items: make([]specificItem, len(v.Items))}
	for i, it := range v.Items {
		s.items[i] = specificItem{key: it.Key, requested: it.Requested, text: strings.Join(it.Items, "\n")}
	}
	return s
}

func (s *specificState) groups() []*huh.Group {
	var out []*huh.Group
	for i := range s.items {
		it := &s.items[i]
		out = append(out,
			huh.NewGroup(
				huh.NewConfirm().
					Title(it.key.Label()).
					Description("Add specific divisional objectives?").
					Value(&it.requested),
			),
			huh.NewGroup(
				huh.NewText().Title("Specific objectives").Description("One per line").Value(&it.text),
			).WithHideFunc(func() bool { return !it.requested }),
		)
	}
	return out
}

func (s *specificState) apply(m *wizard.Machine) []wizard.Warning {
	in := make([]wizard.SpecificInput, 0, len(s.items))
	for _, it := range s.items {
		in = append(in, wizard.SpecificInput{
			Key:       it.key,
			Requested: it.requested,
			Items:     workplan.SplitLines(it.text),
		})
	}
	m.ApplySpecific(in)
	return nil
}

// --- activities --------------------------------------------------------------

type activityItem struct {
	key     workplan.ObjectiveKey
	planned string
	results string
}

type activitiesState struct {
	items []activityItem
}

func newActivitiesState(v wizard.ActivitiesView) *activitiesState {
	s := &activitiesState{items: make([]activityItem, len(v.Items))}
	for i, it := range v.Items {
		s.items[i] = activityItem{
			key:     it.Key,
			planned: strings.Join(it.Activity.Planned, "\n"),
			results: strings.Join(it.Activity.Results, "\n"),
		}
	}
	return s
}

func (s *activitiesState) groups() []*huh.Group {
	out := make([]*huh.Group, 0, len(s.items))
	for i := range s.items {
		it := &s.items[i]
		out = append(out, huh.NewGroup(
			huh.NewText().Title(it.key.Label()).Description("Planned activities, one per line").Value(&it.planned),
			huh.NewText().Title("Expected results").Description("One per line").Value(&it.results),
		))
	}
	return out
}

func (s *activitiesState) apply(m *wizard.Machine) []wizard.Warning {
	in := make([]wizard.ActivityInput, 0, len(s.items))
	for _, it := range s.items {
		in = append(in, wizard.ActivityInput{
			Key:     it.key,
			Planned: workplan.SplitLines(it.planned),
			Results: workplan.SplitLines(it.results),
		})
	}
	m.ApplyActivities(in)
	return nil
}

// --- metrics -----------------------------------------------------------------

func metricsFields(title string, mt *workplan.Metrics) []huh.Field {
	return []huh.Field{
		huh.NewNote().Title(title),
		huh.NewInput().Title("FTEs").Value(&mt.FTEs),
		huh.NewInput().Title("Financial Resources").Value(&mt.FinancialResources),
		huh.NewText().Title("KPIs").Value(&mt.KPIs),
		huh.NewText().Title("Other Metrics").Value(&mt.OtherMetrics),
	}
}

type goalMetricsState struct {
	goals []wizard.GoalMetricsView
}

func (s *goalMetricsState) groups() []*huh.Group {
	out := make([]*huh.Group, 0, len(s.goals))
	for i := range s.goals {
		g := &s.goals[i]
		out = append(out, huh.NewGroup(metricsFields(g.Goal, &g.Metrics)...))
	}
	return out
}

func (s *goalMetricsState) apply(m *wizard.Machine) []wizard.Warning {
	m.ApplyGoalMetrics(s.goals)
	return nil
}

type objectiveMetricsState struct {
	report  bool
	targets []wizard.TargetView
}

func newObjectiveMetricsState(v wizard.ObjectiveMetricsView) *objectiveMetricsState {
	return &objectiveMetricsState{report: v.Report, targets: v.Targets}
}

func (s *objectiveMetricsState) groups() []*huh.Group {
	out := []*huh.Group{huh.NewGroup(
		huh.NewConfirm().Title("Report metrics per objective and expected result?").Value(&s.report),
	)}
	for i := range s.targets {
		t := &s.targets[i]
		out = append(out, huh.NewGroup(metricsFields(t.Label, &t.Metrics)...).
			WithHideFunc(func() bool { return !s.report }))
	}
	return out
}

func (s *objectiveMetricsState) apply(m *wizard.Machine) []wizard.Warning {
	in := wizard.ObjectiveMetricsInput{Report: s.report}
	for _, t := range s.targets {
		in.Targets = append(in.Targets, wizard.TargetMetricsInput{Key: t.Key, Metrics: t.Metrics})
	}
	m.ApplyObjectiveMetrics(in)
	return nil
}

// --- additional information --------------------------------------------------

type additionalState struct {
	info workplan.AdditionalInfo
}

func (s *additionalState) groups() []*huh.Group {
	var fields []huh.Field
	for _, f := range s.info.Fields() {
		fields = append(fields, huh.NewText().Title(f.Label).Value(f.Value))
	}
	return []*huh.Group{huh.NewGroup(fields...)}
}

func (s *additionalState) apply(m *wizard.Machine) []wizard.Warning {
	m.ApplyAdditional(s.info)
	return nil
}

// --- annexes -----------------------------------------------------------------

type annexesState struct {
	existing []workplan.Annex
	patterns string
	clear    bool
}

func (s *annexesState) groups() []*huh.Group {
	listed := "None"
	if len(s.existing) > 0 {
		names := make([]string, 0, len(s.existing))
		for _, a := range s.existing {
			names = append(names, "- "+a.OriginalName)
		}
		listed = strings.Join(names, "\n")
	}

	return []*huh.Group{huh.NewGroup(
		huh.NewNote().Title("Attached").Description(listed),
		huh.NewConfirm().Title("Remove the files attached so far?").Value(&s.clear),
		huh.NewText().
			Title("Add annexes").
			Description("File paths or glob patterns such as docs/**/*.pdf, one per line").
			Value(&s.patterns),
	)}
}

func (s *annexesState) apply(m *wizard.Machine) []wizard.Warning {
	base := s.existing
	if s.clear {
		base = nil
	}

	picked, err := ExpandAnnexes(workplan.SplitLines(s.patterns))
	if err != nil {
		m.ApplyAnnexes(base)
		return []wizard.Warning{{Step: wizard.StepAnnexes, Message: fmt.Sprintf("annexes not added: %v", err)}}
	}

	m.ApplyAnnexes(MergeAnnexes(base, picked))
	return nil
}
