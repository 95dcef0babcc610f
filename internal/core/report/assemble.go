package report

import (
	"strings"

	"github.com/colonyops/workplan/internal/core/workplan"
)

const (
	// Title is the document title.
	Title = "Divisional Workplan Summary"
	// EmptyPlaceholder stands in for blank free-text fields.
	EmptyPlaceholder = "—"
	// NoAnnexesLine is rendered when no annexes were uploaded.
	NoAnnexesLine = "No annexes uploaded."
)

// Assemble maps tree into a document outline. The result depends only on the
// tree; map sections follow insertion order.
func Assemble(tree *workplan.AnswerTree) Document {
	if tree == nil {
		tree = workplan.NewAnswerTree()
	}

	doc := Document{Title: Title}
	doc.Sections = append(doc.Sections,
		coverSection(tree.Cover),
		goalsSection(tree.SelectedGoals),
		aggregateSection(tree),
	)
	if s, ok := specificSection(tree); ok {
		doc.Sections = append(doc.Sections, s)
	}
	doc.Sections = append(doc.Sections,
		activitiesSection(tree),
		goalMetricsSection(tree),
		targetMetricsSection(tree),
		additionalSection(&tree.Additional),
		annexSection(tree.Annexes),
	)
	return doc
}

func coverSection(c workplan.Cover) Section {
	signature := "No"
	if c.SignatureProvided {
		signature = "Yes"
	}
	return Section{
		Heading: "Cover",
		Blocks: []Block{KeyValueBlock{Pairs: []KeyValue{
			{"Division", c.Division},
			{"Director", c.Director},
			{"Date", c.Date},
			{"Version", c.Version},
			{"FTEs", c.FTEs},
			{"Financial Resources", c.FinancialResources},
			{"Director Signature", signature},
		}}},
	}
}

func goalsSection(goals []string) Section {
	return Section{
		Heading: "Selected Goals",
		Blocks:  []Block{BulletList{Items: goals}},
	}
}

func aggregateSection(tree *workplan.AnswerTree) Section {
	s := Section{Heading: "Aggregate Objectives"}
	for goal, objs := range tree.AggregateObjectives.All() {
		s.Subsections = append(s.Subsections, Section{
			Heading: goal,
			Blocks:  []Block{BulletList{Items: objs}},
		})
	}
	return s
}

// specificSection lists requested specific objectives only; objectives whose
// gate was "No" are left out, and the section is omitted when none remain.
func specificSection(tree *workplan.AnswerTree) (Section, bool) {
	s := Section{Heading: "Specific Objectives"}
	for k, items := range tree.SpecificObjectives.All() {
		if workplan.IsNotRequested(items) {
			continue
		}
		s.Subsections = append(s.Subsections, Section{
			Heading: k.Label(),
			Blocks:  []Block{BulletList{Items: items}},
		})
	}
	return s, len(s.Subsections) > 0
}

func activitiesSection(tree *workplan.AnswerTree) Section {
	s := Section{Heading: "Activities & Results"}
	for k, act := range tree.Activities.All() {
		s.Subsections = append(s.Subsections, Section{
			Heading: k.Label(),
			Blocks: []Block{
				BulletList{Label: "Planned Activities", Items: act.Planned},
				BulletList{Label: "Expected Results", Items: act.Results},
			},
		})
	}
	return s
}

func goalMetricsSection(tree *workplan.AnswerTree) Section {
	s := Section{Heading: "Goal Metrics"}
	for goal, m := range tree.GoalMetrics.All() {
		s.Subsections = append(s.Subsections, Section{
			Heading: goal,
			Blocks:  []Block{metricsTable(m)},
		})
	}
	return s
}

func targetMetricsSection(tree *workplan.AnswerTree) Section {
	s := Section{Heading: "Objective/Result Metrics"}
	for k, m := range tree.ObjectiveResultMetrics.All() {
		s.Subsections = append(s.Subsections, Section{
			Heading: k.Label(),
			Blocks:  []Block{metricsTable(m)},
		})
	}
	return s
}

func additionalSection(info *workplan.AdditionalInfo) Section {
	s := Section{Heading: "Additional Information"}
	for _, f := range info.Fields() {
		text := strings.TrimSpace(*f.Value)
		if text == "" {
			text = EmptyPlaceholder
		}
		s.Blocks = append(s.Blocks, Paragraph{Label: f.Label, Text: text})
	}
	return s
}

func annexSection(annexes []workplan.Annex) Section {
	s := Section{Heading: "Annexes"}
	if len(annexes) == 0 {
		s.Blocks = []Block{Paragraph{Text: NoAnnexesLine}}
		return s
	}
	names := make([]string, 0, len(annexes))
	for _, a := range annexes {
		names = append(names, a.OriginalName)
	}
	s.Blocks = []Block{BulletList{Items: names}}
	return s
}

func metricsTable(m workplan.Metrics) Table {
	return Table{
		Header: [2]string{"Metric", "Value"},
		Rows: [][2]string{
			{"FTEs", m.FTEs},
			{"Financial Resources", m.FinancialResources},
			{"KPIs", m.KPIs},
			{"Other Metrics", m.OtherMetrics},
		},
	}
}
