package episode

import (
	"fmt"
	"math"
	"strings"

	"bible-reading-plan/internal/models"
)

// Describe renders one "{timestamp} – {title}" line per chapter.
func Describe(starts []models.ChapterStart) string {
	lines := make([]string, len(starts))
	for i, s := range starts {
		lines[i] = FormatTimestamp(s.Offset) + " – " + s.Title
	}
	return strings.Join(lines, "\n")
}

// FormatTimestamp renders whole seconds as M:SS below an hour and as
// HH:MM:SS from an hour on.
func FormatTimestamp(seconds float64) string {
	total := int(math.Floor(seconds))
	if total < 0 {
		total = 0
	}
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
