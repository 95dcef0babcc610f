// Package lookup loads the strategic-alignment table that drives the goal and
// aggregate objective choices of the wizard.
package lookup

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Required column headers.
const (
	GoalColumn      = "strategic_goal"
	ObjectiveColumn = "aggregate_divisional_objectives"
)

// ConfigurationError reports a missing or unusable lookup table. It is fatal
// for an interactive session.
type ConfigurationError struct {
	Path   string
	Column string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("lookup %s: missing required column %q", e.Path, e.Column)
	}
	return fmt.Sprintf("lookup %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Table is an in-memory goal to objectives index.
type Table struct {
	goals      []string
	objectives map[string][]string
}

// Row is one goal/objective pair. Either side may be blank.
type Row struct {
	Goal      string
	Objective string
}

// New indexes rows. Blank goals are skipped, blank objectives only register
// the goal.
func New(rows []Row) *Table {
	t := &Table{objectives: make(map[string][]string)}
	for _, r := range rows {
		goal := strings.TrimSpace(r.Goal)
		if goal == "" {
			continue
		}
		objs, seen := t.objectives[goal]
		if !seen {
			t.goals = append(t.goals, goal)
		}
		obj := strings.TrimSpace(r.Objective)
		if obj != "" && !slices.Contains(objs, obj) {
			objs = append(objs, obj)
		}
		t.objectives[goal] = objs
	}
	slices.Sort(t.goals)
	return t
}

// Goals returns the distinct goals, sorted.
func (t *Table) Goals() []string {
	return slices.Clone(t.goals)
}

// Objectives returns the distinct objectives for goal in first-seen order.
func (t *Table) Objectives(goal string) []string {
	return slices.Clone(t.objectives[goal])
}

// Load reads a table from an .xlsx workbook (first sheet) or a .csv file.
// The first row holds the column headers.
func Load(path string) (*Table, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = readCSV(path)
	default:
		records, err = readXLSX(path)
	}
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	return fromRecords(path, records)
}

func fromRecords(path string, records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, &ConfigurationError{Path: path, Column: GoalColumn}
	}

	header := records[0]
	goalIdx := columnIndex(header, GoalColumn)
	if goalIdx < 0 {
		return nil, &ConfigurationError{Path: path, Column: GoalColumn}
	}
	objIdx := columnIndex(header, ObjectiveColumn)
	if objIdx < 0 {
		return nil, &ConfigurationError{Path: path, Column: ObjectiveColumn}
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, Row{Goal: field(rec, goalIdx), Objective: field(rec, objIdx)})
	}
	return New(rows), nil
}

func columnIndex(header []string, name string) int {
	return slices.IndexFunc(header, func(h string) bool {
		return strings.EqualFold(strings.TrimSpace(h), name)
	})
}

// field tolerates short rows; spreadsheets trim trailing empty cells.
func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var out [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}
