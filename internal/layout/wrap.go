package layout

import "strings"

// Wrap greedily folds an answer into lines that measure strictly below
// maxWidth. Words are never split: a single word wider than maxWidth is
// emitted on its own line unhyphenated. The greedy single-pass behaviour
// is deliberate; it matches what the writer's justification expects.
func Wrap(answer string, maxWidth float64, measure func(string) float64) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(answer) {
		if measure(current+word+" ") < maxWidth {
			current += word + " "
			continue
		}
		if trimmed := strings.TrimSpace(current); trimmed != "" {
			lines = append(lines, trimmed)
		}
		current = word + " "
	}
	if trimmed := strings.TrimSpace(current); trimmed != "" {
		lines = append(lines, trimmed)
	}
	return lines
}
