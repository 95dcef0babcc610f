// Package workplan defines the divisional workplan answer model shared by the
// wizard, the report assembler and the submission service.
package workplan

import (
	"slices"
	"strings"
)

const (
	// NotRequested is the single value recorded for an objective whose
	// specific-objectives gate is "No".
	NotRequested = "None"
	// NoneProvided is recorded when the gate is "Yes" but no items were entered.
	NoneProvided = "None provided"
)

// Cover holds the cover page fields.
type Cover struct {
	Division           string `json:"division"`
	Director           string `json:"director"`
	Date               string `json:"date"`
	Version            string `json:"version"`
	FTEs               string `json:"ftes"`
	FinancialResources string `json:"financial_resources"`
	SignatureProvided  bool   `json:"signature_provided"`
}

// ObjectiveKey identifies an aggregate objective under a strategic goal.
type ObjectiveKey struct {
	Goal      string `json:"goal"`
	Objective string `json:"objective"`
}

// TargetKind distinguishes metrics reported for the objective itself from
// metrics reported for one of its expected results.
type TargetKind string

const (
	TargetObjective TargetKind = "objective"
	TargetResult    TargetKind = "result"
)

// TargetKey identifies a metrics target under an objective. Result is empty
// when Kind is TargetObjective.
type TargetKey struct {
	Goal      string     `json:"goal"`
	Objective string     `json:"objective"`
	Kind      TargetKind `json:"kind"`
	Result    string     `json:"result,omitempty"`
}

// ObjectiveTarget returns the target for the objective itself.
func ObjectiveTarget(k ObjectiveKey) TargetKey {
	return TargetKey{Goal: k.Goal, Objective: k.Objective, Kind: TargetObjective}
}

// ResultTarget returns the target for one expected result of an objective.
func ResultTarget(k ObjectiveKey, result string) TargetKey {
	return TargetKey{Goal: k.Goal, Objective: k.Objective, Kind: TargetResult, Result: result}
}

// ObjectiveKey returns the objective the target belongs to.
func (t TargetKey) ObjectiveKey() ObjectiveKey {
	return ObjectiveKey{Goal: t.Goal, Objective: t.Objective}
}

// Activity holds the planned activities and expected results of an objective.
type Activity struct {
	Planned []string `json:"planned_activities"`
	Results []string `json:"expected_results"`
}

// Metrics is the free-text metrics record used for goals and objective targets.
type Metrics struct {
	FTEs               string `json:"ftes"`
	FinancialResources string `json:"financial_resources"`
	KPIs               string `json:"kpis"`
	OtherMetrics       string `json:"other_metrics"`
}

// IsZero reports whether every field is blank.
func (m Metrics) IsZero() bool {
	return strings.TrimSpace(m.FTEs) == "" &&
		strings.TrimSpace(m.FinancialResources) == "" &&
		strings.TrimSpace(m.KPIs) == "" &&
		strings.TrimSpace(m.OtherMetrics) == ""
}

// AdditionalInfo holds the eight free-text sections of step 8.
type AdditionalInfo struct {
	Partnerships        string `json:"partnerships"`
	Events              string `json:"events"`
	KnowledgeProducts   string `json:"knowledge_products"`
	KnowledgeManagement string `json:"knowledge_management"`
	CrossDivisional     string `json:"cross_divisional_initiatives"`
	ProjectsNetworks    string `json:"projects_networks"`
	Risks               string `json:"risks"`
	Other               string `json:"other"`
}

// LabeledField pairs a display label with a pointer into AdditionalInfo.
type LabeledField struct {
	Label string
	Value *string
}

// Fields returns the eight sections in display order.
func (a *AdditionalInfo) Fields() []LabeledField {
	return []LabeledField{
		{Label: "Partnerships", Value: &a.Partnerships},
		{Label: "Events", Value: &a.Events},
		{Label: "Knowledge Products", Value: &a.KnowledgeProducts},
		{Label: "Knowledge Management Practices", Value: &a.KnowledgeManagement},
		{Label: "Cross-Divisional Initiatives", Value: &a.CrossDivisional},
		{Label: "Projects/Networks", Value: &a.ProjectsNetworks},
		{Label: "Risks", Value: &a.Risks},
		{Label: "Other Information", Value: &a.Other},
	}
}

// Annex is an uploaded attachment. SourcePath is where the file was picked
// from; StoredPath is empty until the submission stores it.
type Annex struct {
	OriginalName string `json:"original_name"`
	SourcePath   string `json:"source_path,omitempty"`
	StoredPath   string `json:"stored_path,omitempty"`
}

// Stored reports whether the annex has been saved to the data directory.
func (a Annex) Stored() bool { return a.StoredPath != "" }

// AnswerTree is one in-progress submission. It is owned by a single session
// and is never shared.
type AnswerTree struct {
	Cover                  Cover                               `json:"cover"`
	SelectedGoals          []string                            `json:"selected_goals"`
	AggregateObjectives    *OrderedMap[string, []string]       `json:"aggregate_objectives"`
	SpecificObjectives     *OrderedMap[ObjectiveKey, []string] `json:"specific_objectives"`
	Activities             *OrderedMap[ObjectiveKey, Activity] `json:"activities"`
	GoalMetrics            *OrderedMap[string, Metrics]        `json:"goal_metrics"`
	ObjectiveResultMetrics *OrderedMap[TargetKey, Metrics]     `json:"objective_result_metrics"`
	Additional             AdditionalInfo                      `json:"additional"`
	Annexes                []Annex                             `json:"annexes"`
}

// NewAnswerTree returns an empty tree with all maps allocated.
func NewAnswerTree() *AnswerTree {
	t := &AnswerTree{}
	t.ensure()
	return t
}

// ensure allocates any nil map, e.g. after decoding a partial JSON document.
func (t *AnswerTree) ensure() {
	if t.AggregateObjectives == nil {
		t.AggregateObjectives = NewOrderedMap[string, []string]()
	}
	if t.SpecificObjectives == nil {
		t.SpecificObjectives = NewOrderedMap[ObjectiveKey, []string]()
	}
	if t.Activities == nil {
		t.Activities = NewOrderedMap[ObjectiveKey, Activity]()
	}
	if t.GoalMetrics == nil {
		t.GoalMetrics = NewOrderedMap[string, Metrics]()
	}
	if t.ObjectiveResultMetrics == nil {
		t.ObjectiveResultMetrics = NewOrderedMap[TargetKey, Metrics]()
	}
}

// Normalize allocates missing maps and prunes orphaned entries. It is safe to
// call on trees decoded from external input.
func (t *AnswerTree) Normalize() {
	t.ensure()
	t.SelectedGoals = UniqueStrings(t.SelectedGoals)
	t.Prune()
}

// HasGoal reports whether goal is selected.
func (t *AnswerTree) HasGoal(goal string) bool {
	return slices.Contains(t.SelectedGoals, goal)
}

// HasObjective reports whether the objective is recorded under its goal.
func (t *AnswerTree) HasObjective(k ObjectiveKey) bool {
	objs, ok := t.AggregateObjectives.Get(k.Goal)
	return ok && slices.Contains(objs, k.Objective)
}

// ObjectiveKeys returns every (goal, objective) pair in aggregate order.
func (t *AnswerTree) ObjectiveKeys() []ObjectiveKey {
	var keys []ObjectiveKey
	for goal, objs := range t.AggregateObjectives.All() {
		for _, obj := range objs {
			keys = append(keys, ObjectiveKey{Goal: goal, Objective: obj})
		}
	}
	return keys
}

// Prune drops downstream entries whose goal or objective is no longer
// selected. Orphans are dropped silently.
func (t *AnswerTree) Prune() {
	t.ensure()
	t.AggregateObjectives.DeleteFunc(func(goal string, _ []string) bool {
		return !t.HasGoal(goal)
	})
	t.GoalMetrics.DeleteFunc(func(goal string, _ Metrics) bool {
		return !t.HasGoal(goal)
	})
	t.SpecificObjectives.DeleteFunc(func(k ObjectiveKey, _ []string) bool {
		return !t.HasObjective(k)
	})
	t.Activities.DeleteFunc(func(k ObjectiveKey, _ Activity) bool {
		return !t.HasObjective(k)
	})
	t.ObjectiveResultMetrics.DeleteFunc(func(k TargetKey, _ Metrics) bool {
		if !t.HasObjective(k.ObjectiveKey()) {
			return true
		}
		if k.Kind != TargetResult {
			return false
		}
		act, ok := t.Activities.Get(k.ObjectiveKey())
		return !ok || !slices.Contains(act.Results, k.Result)
	})
}

// SpecificRequested reports whether specific objectives were requested for k.
func (t *AnswerTree) SpecificRequested(k ObjectiveKey) bool {
	items, ok := t.SpecificObjectives.Get(k)
	if !ok {
		return false
	}
	return !IsNotRequested(items)
}

// IsNotRequested reports whether items is the "not requested" sentinel.
func IsNotRequested(items []string) bool {
	return len(items) == 1 && items[0] == NotRequested
}

// UniqueStrings returns values with duplicates and blanks removed, keeping the
// first occurrence of each.
func UniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// SplitLines splits multi-line text into trimmed non-empty lines.
func SplitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Label renders "goal — objective".
func (k ObjectiveKey) Label() string {
	return k.Goal + " — " + k.Objective
}

// Label renders the heading of a metrics target: "goal — objective" for the
// objective itself and "Expected Result: <result>" otherwise.
func (t TargetKey) Label() string {
	if t.Kind == TargetResult {
		return "Expected Result: " + t.Result
	}
	return t.ObjectiveKey().Label()
}
