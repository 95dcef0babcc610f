package wizard

import "strings"

const (
	// MinCustomObjectives and MaxCustomObjectives bound the number of custom
	// aggregate objective boxes per goal when custom entry is enabled.
	MinCustomObjectives = 1
	MaxCustomObjectives = 10
)

// ResizeList returns items resized to n entries. Growing keeps existing
// values at their index and pads with blanks; shrinking truncates from the end.
func ResizeList(items []string, n int) []string {
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	copy(out, items)
	return out
}

// ClampCustomCount limits n to [MinCustomObjectives, MaxCustomObjectives].
func ClampCustomCount(n int) int {
	return min(max(n, MinCustomObjectives), MaxCustomObjectives)
}

// compact trims every entry and drops blanks, keeping duplicates.
func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

func cloneStrings(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}
