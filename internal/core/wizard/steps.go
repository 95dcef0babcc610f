package wizard

import (
	"slices"

	"github.com/colonyops/workplan/internal/core/workplan"
)

// --- Step 1: cover -----------------------------------------------------------

// CoverView returns the stored cover fields.
func (m *Machine) CoverView() workplan.Cover {
	return m.tree.Cover
}

// ApplyCover writes the cover fields.
func (m *Machine) ApplyCover(in workplan.Cover) {
	m.tree.Cover = in
	m.wrote(StepCover)
}

// --- Step 2: goals -----------------------------------------------------------

// GoalsView lists the goal options and the stored selection.
type GoalsView struct {
	Options  []string
	Selected []string
}

// GoalsInput is the goal selection submitted by the user.
type GoalsInput struct {
	Selected []string
}

// GoalsView returns the lookup goals with the current selection preselected.
func (m *Machine) GoalsView() GoalsView {
	options := m.lookupGoals()
	selected := make([]string, 0, len(m.tree.SelectedGoals))
	for _, g := range m.tree.SelectedGoals {
		if slices.Contains(options, g) {
			selected = append(selected, g)
		}
	}
	return GoalsView{Options: options, Selected: selected}
}

// ApplyGoals records the selection. Goals outside the lookup are ignored with
// a warning; downstream entries of deselected goals are dropped.
func (m *Machine) ApplyGoals(in GoalsInput) []Warning {
	var warnings []Warning
	options := m.lookupGoals()

	selected := make([]string, 0, len(in.Selected))
	for _, g := range workplan.UniqueStrings(in.Selected) {
		if !slices.Contains(options, g) {
			warnings = append(warnings, Warning{Step: StepGoals, Message: "unknown goal ignored: " + g})
			continue
		}
		selected = append(selected, g)
	}

	m.tree.SelectedGoals = selected
	m.tree.Prune()
	m.wrote(StepGoals)
	return warnings
}

// --- Step 3: aggregate objectives -------------------------------------------

// AggregateGoalView is the field set rendered for one selected goal.
type AggregateGoalView struct {
	Goal          string
	Options       []string
	Selected      []string
	CustomEnabled bool
	Custom        []string
}

// AggregateView holds one entry per selected goal.
type AggregateView struct {
	Goals    []AggregateGoalView
	Warnings []Warning
}

// AggregateGoalInput carries the values entered for one goal. Custom is
// resized to CustomCount when custom entry is enabled.
type AggregateGoalInput struct {
	Goal          string
	Selected      []string
	CustomEnabled bool
	CustomCount   int
	Custom        []string
}

// AggregateInput carries the values for every rendered goal.
type AggregateInput struct {
	Goals []AggregateGoalInput
}

// AggregateView splits the stored objectives of each selected goal into
// lookup selections and custom entries.
func (m *Machine) AggregateView() AggregateView {
	var view AggregateView
	if len(m.tree.SelectedGoals) == 0 {
		view.Warnings = append(view.Warnings, dependencyWarning(StepAggregateObjectives,
			"no strategic goals selected; go back to choose goals"))
		return view
	}

	for _, goal := range m.tree.SelectedGoals {
		options := m.lookupObjectives(goal)
		stored, _ := m.tree.AggregateObjectives.Get(goal)

		gv := AggregateGoalView{Goal: goal, Options: options}
		for _, obj := range stored {
			if slices.Contains(options, obj) {
				gv.Selected = append(gv.Selected, obj)
			} else {
				gv.Custom = append(gv.Custom, obj)
			}
		}
		if len(gv.Custom) > 0 {
			gv.CustomEnabled = true
		}
		view.Goals = append(view.Goals, gv)
	}
	return view
}

// ApplyAggregate rebuilds the aggregate objectives for the selected goals.
// Inputs for goals that are no longer selected are dropped silently; a
// selected goal without input keeps its stored objectives.
func (m *Machine) ApplyAggregate(in AggregateInput) {
	inputs := make(map[string]AggregateGoalInput, len(in.Goals))
	for _, gi := range in.Goals {
		inputs[gi.Goal] = gi
	}

	next := workplan.NewOrderedMap[string, []string]()
	for _, goal := range m.tree.SelectedGoals {
		gi, ok := inputs[goal]
		if !ok {
			if stored, had := m.tree.AggregateObjectives.Get(goal); had {
				next.Set(goal, stored)
			}
			continue
		}

		objs := cloneStrings(gi.Selected)
		if gi.CustomEnabled {
			count := gi.CustomCount
			if count == 0 {
				count = len(gi.Custom)
			}
			objs = append(objs, ResizeList(gi.Custom, ClampCustomCount(count))...)
		}
		next.Set(goal, workplan.UniqueStrings(objs))
	}

	m.tree.AggregateObjectives = next
	m.tree.Prune()
	m.wrote(StepAggregateObjectives)
}

// --- Step 4: specific objectives --------------------------------------------

// SpecificItemView is the gate and list for one objective.
type SpecificItemView struct {
	Key       workplan.ObjectiveKey
	Requested bool
	Items     []string
}

// SpecificView holds one entry per aggregate objective.
type SpecificView struct {
	Items    []SpecificItemView
	Warnings []Warning
}

// SpecificInput is the gate and list entered for one objective. Count resizes
// Items when positive.
type SpecificInput struct {
	Key       workplan.ObjectiveKey
	Requested bool
	Count     int
	Items     []string
}

// SpecificView returns the gate state and stored items per objective.
func (m *Machine) SpecificView() SpecificView {
	var view SpecificView
	keys := m.tree.ObjectiveKeys()
	if len(keys) == 0 {
		view.Warnings = append(view.Warnings, noObjectivesWarning(StepSpecificObjectives))
		return view
	}

	for _, k := range keys {
		iv := SpecificItemView{Key: k}
		if stored, ok := m.tree.SpecificObjectives.Get(k); ok && !workplan.IsNotRequested(stored) {
			iv.Requested = true
			if !(len(stored) == 1 && stored[0] == workplan.NoneProvided) {
				iv.Items = cloneStrings(stored)
			}
		}
		view.Items = append(view.Items, iv)
	}
	return view
}

// ApplySpecific records the gate and list per objective. A "No" gate collapses
// to the NotRequested sentinel; a "Yes" gate without items records NoneProvided.
func (m *Machine) ApplySpecific(in []SpecificInput) {
	inputs := make(map[workplan.ObjectiveKey]SpecificInput, len(in))
	for _, si := range in {
		inputs[si.Key] = si
	}

	next := workplan.NewOrderedMap[workplan.ObjectiveKey, []string]()
	for _, k := range m.tree.ObjectiveKeys() {
		si, ok := inputs[k]
		if !ok {
			if stored, had := m.tree.SpecificObjectives.Get(k); had {
				next.Set(k, stored)
			}
			continue
		}
		next.Set(k, specificValues(si))
	}

	m.tree.SpecificObjectives = next
	m.wrote(StepSpecificObjectives)
}

func specificValues(si SpecificInput) []string {
	if !si.Requested {
		return []string{workplan.NotRequested}
	}
	items := si.Items
	if si.Count > 0 {
		items = ResizeList(items, si.Count)
	}
	items = compact(items)
	if len(items) == 0 {
		return []string{workplan.NoneProvided}
	}
	return items
}

// --- Step 5: activities and results -----------------------------------------

// ActivityView is the stored activities for one objective.
type ActivityView struct {
	Key      workplan.ObjectiveKey
	Activity workplan.Activity
}

// ActivitiesView holds one entry per aggregate objective.
type ActivitiesView struct {
	Items    []ActivityView
	Warnings []Warning
}

// ActivityInput is the planned activities and expected results for one
// objective, one entry per line.
type ActivityInput struct {
	Key     workplan.ObjectiveKey
	Planned []string
	Results []string
}

// ActivitiesView returns the stored activities per objective.
func (m *Machine) ActivitiesView() ActivitiesView {
	var view ActivitiesView
	keys := m.tree.ObjectiveKeys()
	if len(keys) == 0 {
		view.Warnings = append(view.Warnings, noObjectivesWarning(StepActivities))
		return view
	}
	for _, k := range keys {
		act, _ := m.tree.Activities.Get(k)
		view.Items = append(view.Items, ActivityView{Key: k, Activity: act})
	}
	return view
}

// ApplyActivities records activities per objective. Metrics of results that
// were removed are dropped.
func (m *Machine) ApplyActivities(in []ActivityInput) {
	inputs := make(map[workplan.ObjectiveKey]ActivityInput, len(in))
	for _, ai := range in {
		inputs[ai.Key] = ai
	}

	next := workplan.NewOrderedMap[workplan.ObjectiveKey, workplan.Activity]()
	for _, k := range m.tree.ObjectiveKeys() {
		ai, ok := inputs[k]
		if !ok {
			if stored, had := m.tree.Activities.Get(k); had {
				next.Set(k, stored)
			}
			continue
		}
		next.Set(k, workplan.Activity{
			Planned: compact(ai.Planned),
			Results: workplan.UniqueStrings(ai.Results),
		})
	}

	m.tree.Activities = next
	m.tree.Prune()
	m.wrote(StepActivities)
}

// --- Step 6: goal metrics ----------------------------------------------------

// GoalMetricsView is the stored metrics for one goal.
type GoalMetricsView struct {
	Goal    string
	Metrics workplan.Metrics
}

// GoalMetricsInput is the metrics entered for one goal.
type GoalMetricsInput = GoalMetricsView

// GoalMetricsView returns the stored metrics per selected goal.
func (m *Machine) GoalMetricsView() ([]GoalMetricsView, []Warning) {
	if len(m.tree.SelectedGoals) == 0 {
		return nil, []Warning{dependencyWarning(StepGoalMetrics, "no strategic goals selected")}
	}
	out := make([]GoalMetricsView, 0, len(m.tree.SelectedGoals))
	for _, g := range m.tree.SelectedGoals {
		mt, _ := m.tree.GoalMetrics.Get(g)
		out = append(out, GoalMetricsView{Goal: g, Metrics: mt})
	}
	return out, nil
}

// ApplyGoalMetrics records metrics per selected goal.
func (m *Machine) ApplyGoalMetrics(in []GoalMetricsInput) {
	inputs := make(map[string]workplan.Metrics, len(in))
	for _, gi := range in {
		inputs[gi.Goal] = gi.Metrics
	}

	next := workplan.NewOrderedMap[string, workplan.Metrics]()
	for _, g := range m.tree.SelectedGoals {
		if mt, ok := inputs[g]; ok {
			next.Set(g, mt)
		} else if stored, had := m.tree.GoalMetrics.Get(g); had {
			next.Set(g, stored)
		}
	}

	m.tree.GoalMetrics = next
	m.wrote(StepGoalMetrics)
}

// --- Step 7: objective/result metrics ---------------------------------------

// TargetView is one metrics target: an objective or one of its expected results.
type TargetView struct {
	Key     workplan.TargetKey
	Label   string
	Metrics workplan.Metrics
}

// ObjectiveMetricsView is the gate plus the targets rendered behind it.
type ObjectiveMetricsView struct {
	Report   bool
	Targets  []TargetView
	Warnings []Warning
}

// TargetMetricsInput is the metrics entered for one target.
type TargetMetricsInput struct {
	Key     workplan.TargetKey
	Metrics workplan.Metrics
}

// ObjectiveMetricsInput is the gate and, when it is "Yes", the per-target values.
type ObjectiveMetricsInput struct {
	Report  bool
	Targets []TargetMetricsInput
}

// Targets enumerates every metrics target implied by the current answers:
// each objective followed by each of its expected results.
func (m *Machine) Targets() []workplan.TargetKey {
	var out []workplan.TargetKey
	for _, k := range m.tree.ObjectiveKeys() {
		out = append(out, workplan.ObjectiveTarget(k))
		if act, ok := m.tree.Activities.Get(k); ok {
			for _, r := range act.Results {
				out = append(out, workplan.ResultTarget(k, r))
			}
		}
	}
	return out
}

// ObjectiveMetricsView returns the gate and stored metrics per target. The
// gate reads "Yes" when any target metrics are stored.
func (m *Machine) ObjectiveMetricsView() ObjectiveMetricsView {
	view := ObjectiveMetricsView{Report: m.tree.ObjectiveResultMetrics.Len() > 0}
	targets := m.Targets()
	if len(targets) == 0 {
		view.Warnings = append(view.Warnings, noObjectivesWarning(StepObjectiveMetrics))
		return view
	}
	for _, k := range targets {
		mt, _ := m.tree.ObjectiveResultMetrics.Get(k)
		view.Targets = append(view.Targets, TargetView{Key: k, Label: k.Label(), Metrics: mt})
	}
	return view
}

// ApplyObjectiveMetrics records per-target metrics. A "No" gate discards all
// stored target metrics.
func (m *Machine) ApplyObjectiveMetrics(in ObjectiveMetricsInput) {
	next := workplan.NewOrderedMap[workplan.TargetKey, workplan.Metrics]()
	if in.Report {
		inputs := make(map[workplan.TargetKey]workplan.Metrics, len(in.Targets))
		for _, ti := range in.Targets {
			inputs[ti.Key] = ti.Metrics
		}
		for _, k := range m.Targets() {
			if mt, ok := inputs[k]; ok {
				next.Set(k, mt)
			} else {
				stored, _ := m.tree.ObjectiveResultMetrics.Get(k)
				next.Set(k, stored)
			}
		}
	}

	m.tree.ObjectiveResultMetrics = next
	m.wrote(StepObjectiveMetrics)
}

// --- Step 8: additional information -----------------------------------------

// AdditionalView returns the stored additional information.
func (m *Machine) AdditionalView() workplan.AdditionalInfo {
	return m.tree.Additional
}

// ApplyAdditional records the additional information.
func (m *Machine) ApplyAdditional(in workplan.AdditionalInfo) {
	m.tree.Additional = in
	m.wrote(StepAdditional)
}

// --- Step 9: annexes ---------------------------------------------------------

// AnnexesView returns the annexes stored so far.
func (m *Machine) AnnexesView() []workplan.Annex {
	return slices.Clone(m.tree.Annexes)
}

// ApplyAnnexes replaces the annex list. Unstored annexes are saved on submit.
func (m *Machine) ApplyAnnexes(annexes []workplan.Annex) {
	m.tree.Annexes = slices.Clone(annexes)
	m.wrote(StepAnnexes)
}

func noObjectivesWarning(step Step) Warning {
	return dependencyWarning(step, "no aggregate objectives recorded; go back to add objectives")
}
