// Package wizard implements the step sequence of the workplan form. Each step
// exposes a View computed from the answers recorded so far and an Apply that
// writes typed input back into the answer tree.
package wizard

import "fmt"

// Step is a 1-indexed position in the wizard.
type Step int

const (
	StepCover Step = iota + 1
	StepGoals
	StepAggregateObjectives
	StepSpecificObjectives
	StepActivities
	StepGoalMetrics
	StepObjectiveMetrics
	StepAdditional
	StepAnnexes
)

// StepCount is the number of steps; StepAnnexes is terminal.
const StepCount = int(StepAnnexes)

var stepTitles = map[Step]string{
	StepCover:               "Division Workplan Cover Page",
	StepGoals:               "Select Strategic Goals",
	StepAggregateObjectives: "Aggregate Divisional Objectives",
	StepSpecificObjectives:  "Specific Divisional Objectives",
	StepActivities:          "Activities & Results",
	StepGoalMetrics:         "Metrics per Strategic Goal",
	StepObjectiveMetrics:    "Optional Objective/Result Metrics",
	StepAdditional:          "Additional Information",
	StepAnnexes:             "Upload Annexes & Export",
}

// Valid reports whether s is within [1, StepCount].
func (s Step) Valid() bool {
	return s >= StepCover && s <= StepAnnexes
}

// Title returns the human readable step title.
func (s Step) Title() string {
	if t, ok := stepTitles[s]; ok {
		return t
	}
	return "Unknown"
}

// String renders "Step N — Title".
func (s Step) String() string {
	return fmt.Sprintf("Step %d — %s", int(s), s.Title())
}

// Clamp returns s limited to the valid range.
func (s Step) Clamp() Step {
	switch {
	case s < StepCover:
		return StepCover
	case s > StepAnnexes:
		return StepAnnexes
	default:
		return s
	}
}

// Warning is a non-fatal notice attached to a step view, e.g. when an
// upstream selection the step depends on is empty.
type Warning struct {
	Step    Step
	Message string
}

func (w Warning) String() string {
	return w.Step.String() + ": " + w.Message
}

func dependencyWarning(step Step, msg string) Warning {
	return Warning{Step: step, Message: msg}
}
