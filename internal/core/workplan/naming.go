package workplan

import (
	"regexp"
	"strings"
	"time"
)

// TimestampLayout is the timestamp format used in generated artifact names.
const TimestampLayout = "20060102_150405"

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s and collapses every run of non-alphanumerics to "-".
func Slug(s string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// ArtifactName returns workplan_<division-slug>_<timestamp>.<ext>. The slug
// segment is omitted when the division is blank.
func ArtifactName(division string, at time.Time, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	parts := []string{"workplan"}
	if slug := Slug(division); slug != "" {
		parts = append(parts, slug)
	}
	parts = append(parts, at.Format(TimestampLayout))
	return strings.Join(parts, "_") + "." + ext
}
