package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/colonyops/workplan/internal/core/workplan"
)

// ExpandAnnexes resolves paths and glob patterns (e.g. docs/**/*.pdf) to
// annexes. Plain paths must exist; patterns may match nothing. Results are
// deduplicated by absolute path and keep pattern order.
func ExpandAnnexes(patterns []string) ([]workplan.Annex, error) {
	var (
		out  []workplan.Annex
		seen = map[string]bool{}
	)

	add := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}
		if seen[abs] {
			return nil
		}
		seen[abs] = true
		out = append(out, workplan.Annex{OriginalName: filepath.Base(abs), SourcePath: abs})
		return nil
	}

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if !hasMeta(pattern) {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, fmt.Errorf("annex %s: %w", pattern, err)
			}
			if info.IsDir() {
				return nil, fmt.Errorf("annex %s is a directory", pattern)
			}
			if err := add(pattern); err != nil {
				return nil, err
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if err := add(m); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// MergeAnnexes appends picked annexes to existing ones, skipping any whose
// source is already listed.
func MergeAnnexes(existing, picked []workplan.Annex) []workplan.Annex {
	out := slices.Clone(existing)
	for _, p := range picked {
		dup := slices.ContainsFunc(out, func(a workplan.Annex) bool {
			return a.SourcePath != "" && a.SourcePath == p.SourcePath
		})
		if !dup {
			out = append(out, p)
		}
	}
	return out
}
