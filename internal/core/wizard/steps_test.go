package wizard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/workplan/internal/core/workplan"
)

func jsonOf(tree *workplan.AnswerTree) (string, error) {
	b, err := json.Marshal(tree)
	return string(b), err
}

// rerender renders the current step and writes its view back as input, the
// way the form layer does when the user navigates without editing.
func rerender(m *Machine) {
	switch m.Step() {
	case StepCover:
		m.ApplyCover(m.CoverView())
	case StepGoals:
		m.ApplyGoals(GoalsInput{Selected: m.GoalsView().Selected})
	case StepAggregateObjectives:
		var in AggregateInput
		for _, g := range m.AggregateView().Goals {
			in.Goals = append(in.Goals, AggregateGoalInput{
				Goal: g.Goal, Selected: g.Selected, CustomEnabled: g.CustomEnabled,
				CustomCount: len(g.Custom), Custom: g.Custom,
			})
		}
		m.ApplyAggregate(in)
	case StepSpecificObjectives:
		var in []SpecificInput
		for _, it := range m.SpecificView().Items {
			in = append(in, SpecificInput{Key: it.Key, Requested: it.Requested, Items: it.Items})
		}
		m.ApplySpecific(in)
	case StepActivities:
		var in []ActivityInput
		for _, it := range m.ActivitiesView().Items {
			in = append(in, ActivityInput{Key: it.Key, Planned: it.Activity.Planned, Results: it.Activity.Results})
		}
		m.ApplyActivities(in)
	case StepGoalMetrics:
		views, _ := m.GoalMetricsView()
		m.ApplyGoalMetrics(views)
	case StepObjectiveMetrics:
		view := m.ObjectiveMetricsView()
		in := ObjectiveMetricsInput{Report: view.Report}
		for _, tv := range view.Targets {
			in.Targets = append(in.Targets, TargetMetricsInput{Key: tv.Key, Metrics: tv.Metrics})
		}
		m.ApplyObjectiveMetrics(in)
	case StepAdditional:
		m.ApplyAdditional(m.AdditionalView())
	case StepAnnexes:
		m.ApplyAnnexes(m.AnnexesView())
	}
}

func TestApplyGoals_IgnoresUnknownAndDuplicates(t *testing.T) {
	m := New(nil, testLookup())

	warnings := m.ApplyGoals(GoalsInput{Selected: []string{"Growth", "Growth", "Moonshots"}})

	assert.Equal(t, []string{"Growth"}, m.Tree().SelectedGoals)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "Moonshots")
}

func TestDeselectGoal_DropsOrphansWithoutTouchingOthers(t *testing.T) {
	m := New(nil, testLookup())
	fillAll(t, m)

	accessBefore, ok := m.Tree().AggregateObjectives.Get("Access")
	require.True(t, ok)

	m.ApplyGoals(GoalsInput{Selected: []string{"Access"}})

	view := m.AggregateView()
	require.Len(t, view.Goals, 1)
	assert.Equal(t, "Access", view.Goals[0].Goal)

	// A stale input for the deselected goal is dropped silently.
	m.ApplyAggregate(AggregateInput{Goals: []AggregateGoalInput{
		{Goal: "Growth", Selected: []string{"Expand market"}},
		{Goal: "Access", Selected: view.Goals[0].Selected},
	}})

	tree := m.Tree()
	assert.False(t, tree.AggregateObjectives.Has("Growth"))
	accessAfter, _ := tree.AggregateObjectives.Get("Access")
	assert.Equal(t, accessBefore, accessAfter)
	assert.False(t, tree.GoalMetrics.Has("Growth"))
	for _, k := range tree.Activities.Keys() {
		assert.NotEqual(t, "Growth", k.Goal)
	}
	for _, k := range tree.ObjectiveResultMetrics.Keys() {
		assert.NotEqual(t, "Growth", k.Goal)
	}
}

func TestAggregateView_SplitsLookupAndCustom(t *testing.T) {
	m := New(nil, testLookup())
	fillAll(t, m)

	view := m.AggregateView()
	require.Len(t, view.Goals, 2)
	growth := view.Goals[0]
	assert.Equal(t, "Growth", growth.Goal)
	assert.Equal(t, []string{"Expand market"}, growth.Selected)
	assert.True(t, growth.CustomEnabled)
	assert.Equal(t, []string{"Launch pilot"}, growth.Custom)
}

func TestApplyAggregate_CustomCountResizes(t *testing.T) {
	m := New(nil, testLookup())
	m.ApplyGoals(GoalsInput{Selected: []string{"Growth"}})

	m.ApplyAggregate(AggregateInput{Goals: []AggregateGoalInput{
		{Goal: "Growth", CustomEnabled: true, CustomCount: 2, Custom: []string{"one", "two", "three"}},
	}})
	got, _ := m.Tree().AggregateObjectives.Get("Growth")
	assert.Equal(t, []string{"one", "two"}, got)

	// Disabling custom entry drops custom objectives from what is written.
	m.ApplyAggregate(AggregateInput{Goals: []AggregateGoalInput{
		{Goal: "Growth", Selected: []string{"Retain clients"}, CustomEnabled: false, Custom: []string{"one"}},
	}})
	got, _ = m.Tree().AggregateObjectives.Get("Growth")
	assert.Equal(t, []string{"Retain clients"}, got)
}

func TestResizeList(t *testing.T) {
	base := []string{"a", "b", "c"}

	assert.Equal(t, []string{"a", "b", "c", "", ""}, ResizeList(base, 5))
	assert.Equal(t, []string{"a"}, ResizeList(base, 1))
	assert.Empty(t, ResizeList(base, -3))
	assert.Equal(t, []string{"a", "b", "c"}, base, "input must not be modified")

	grown := ResizeList(ResizeList(base, 1), 3)
	assert.Equal(t, []string{"a", "", ""}, grown, "truncated values are not resurrected")
}

func TestClampCustomCount(t *testing.T) {
	assert.Equal(t, 1, ClampCustomCount(0))
	assert.Equal(t, 4, ClampCustomCount(4))
	assert.Equal(t, 10, ClampCustomCount(99))
}

func TestSpecificGate(t *testing.T) {
	m := New(nil, testLookup())
	m.ApplyGoals(GoalsInput{Selected: []string{"Growth"}})
	m.ApplyAggregate(AggregateInput{Goals: []AggregateGoalInput{{Goal: "Growth", Selected: []string{"Expand market"}}}})
	key := workplan.ObjectiveKey{Goal: "Growth", Objective: "Expand market"}

	t.Run("no collapses to sentinel", func(t *testing.T) {
		m.ApplySpecific([]SpecificInput{{Key: key, Requested: false, Items: []string{"ignored"}}})
		got, _ := m.Tree().SpecificObjectives.Get(key)
		assert.Equal(t, []string{workplan.NotRequested}, got)
		assert.False(t, m.SpecificView().Items[0].Requested)
	})

	t.Run("yes without items", func(t *testing.T) {
		m.ApplySpecific([]SpecificInput{{Key: key, Requested: true, Items: []string{"  "}}})
		got, _ := m.Tree().SpecificObjectives.Get(key)
		assert.Equal(t, []string{workplan.NoneProvided}, got)

		iv := m.SpecificView().Items[0]
		assert.True(t, iv.Requested)
		assert.Empty(t, iv.Items)
	})

	t.Run("yes then no discards items", func(t *testing.T) {
		m.ApplySpecific([]SpecificInput{{Key: key, Requested: true, Count: 2, Items: []string{"a", "b", "c"}}})
		got, _ := m.Tree().SpecificObjectives.Get(key)
		assert.Equal(t, []string{"a", "b"}, got)

		m.ApplySpecific([]SpecificInput{{Key: key, Requested: false, Items: []string{"a", "b"}}})
		got, _ = m.Tree().SpecificObjectives.Get(key)
		assert.Equal(t, []string{workplan.NotRequested}, got)
	})
}

func TestObjectiveMetrics_TargetsAndGate(t *testing.T) {
	m := New(nil, testLookup())
	fillAll(t, m)
	growth := workplan.ObjectiveKey{Goal: "Growth", Objective: "Expand market"}

	view := m.ObjectiveMetricsView()
	assert.True(t, view.Report)

	labels := make([]string, 0, len(view.Targets))
	for _, tv := range view.Targets {
		labels = append(labels, tv.Label)
	}
	assert.Equal(t, []string{
		"Growth — Expand market",
		"Expected Result: Two regions opened",
		"Growth — Launch pilot",
		"Access — Open data",
	}, labels)

	stored, ok := m.Tree().ObjectiveResultMetrics.Get(workplan.ObjectiveTarget(growth))
	require.True(t, ok)
	assert.Equal(t, "revenue", stored.KPIs)

	m.ApplyObjectiveMetrics(ObjectiveMetricsInput{Report: false})
	assert.Equal(t, 0, m.Tree().ObjectiveResultMetrics.Len())
	assert.False(t, m.ObjectiveMetricsView().Report)
}

func TestApplyActivities_RemovedResultDropsItsMetrics(t *testing.T) {
	m := New(nil, testLookup())
	fillAll(t, m)
	growth := workplan.ObjectiveKey{Goal: "Growth", Objective: "Expand market"}
	resultTarget := workplan.ResultTarget(growth, "Two regions opened")

	m.ApplyObjectiveMetrics(ObjectiveMetricsInput{Report: true})
	require.True(t, m.Tree().ObjectiveResultMetrics.Has(resultTarget))

	m.ApplyActivities([]ActivityInput{{Key: growth, Planned: []string{"Market study"}}})

	assert.False(t, m.Tree().ObjectiveResultMetrics.Has(resultTarget))
	assert.True(t, m.Tree().ObjectiveResultMetrics.Has(workplan.ObjectiveTarget(growth)))
}
