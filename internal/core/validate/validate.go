// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/workplan/internal/core/mirror"
	"github.com/colonyops/workplan/internal/core/workplan"
)

// Lookup is the goal/objective table a tree is checked against.
type Lookup interface {
	Goals() []string
	Objectives(goal string) []string
}

// Required validates a value is non-empty after trimming whitespace.
func Required(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

// RemotePath validates a repository-relative destination path.
func RemotePath(p string) error {
	_, err := mirror.CleanPath(p)
	return err
}

// LocalFile validates path names an existing regular file.
func LocalFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}

// SyncArgs validates the arguments of a one-off sync.
func SyncArgs(localPath, remotePath string) error {
	return criterio.ValidateStruct(
		criterio.Run("file", localPath, LocalFile),
		criterio.Run("remote_path", remotePath, RemotePath),
	)
}

// Tree checks a completed answer tree against the lookup table. The wizard
// itself never blocks on these; they gate non-interactive submissions.
func Tree(tree *workplan.AnswerTree, lookup Lookup) error {
	if tree == nil {
		return criterio.NewFieldErrors("tree", fmt.Errorf("is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	if err := Required(tree.Cover.Division); err != nil {
		errs = errs.Append("cover.division", err)
	}
	if len(tree.SelectedGoals) == 0 {
		errs = errs.Append("selected_goals", fmt.Errorf("at least one goal is required"))
	}

	goals := lookup.Goals()
	for i, goal := range tree.SelectedGoals {
		if !slices.Contains(goals, goal) {
			errs = errs.Append(fmt.Sprintf("selected_goals[%d]", i), fmt.Errorf("unknown goal %q", goal))
		}
	}

	if tree.AggregateObjectives != nil {
		for goal, objectives := range tree.AggregateObjectives.All() {
			if !tree.HasGoal(goal) {
				errs = errs.Append("aggregate_objectives", fmt.Errorf("goal %q is not selected", goal))
				continue
			}
			known := lookup.Objectives(goal)
			for _, o := range objectives {
				if !slices.Contains(known, o) {
					errs = errs.Append("aggregate_objectives", fmt.Errorf("objective %q is not listed under %q", o, goal))
				}
			}
		}
	}

	for i, a := range tree.Annexes {
		if a.Stored() {
			continue
		}
		if err := LocalFile(a.SourcePath); err != nil {
			errs = errs.Append(fmt.Sprintf("annexes[%d]", i), err)
		}
	}

	return errs.ToError()
}
