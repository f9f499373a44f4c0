package layout

import (
	"regexp"
	"strings"
)

// answerMarker matches the "N." boundaries the generator is asked to emit.
// The digits themselves are ignored: answers are renumbered by position, so
// inconsistent numbering in the model output cannot mislabel anything.
var answerMarker = regexp.MustCompile(`\n*\s*\d+\.\s*`)

// SplitAnswers segments solution text into ordered answer bodies.
// Fragments that are empty after trimming are dropped. Text with no
// markers at all comes back as a single answer.
func SplitAnswers(text string) []string {
	parts := answerMarker.Split(text, -1)
	answers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			answers = append(answers, p)
		}
	}
	return answers
}
