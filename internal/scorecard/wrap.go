package scorecard

import "strings"

const (
	DefaultWrapWidth = 50
	maxTitleLines    = 2
)

// WrapTitle greedily packs the words of text into lines of at most width
// characters and keeps the first two. A single word longer than width gets a
// line of its own. Anything past the second line is dropped.
func WrapTitle(text string, width int) []string {
	if width <= 0 {
		width = DefaultWrapWidth
	}
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if len(candidate) > width && current != "" {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) > maxTitleLines {
		lines = lines[:maxTitleLines]
	}
	return lines
}
