// Package quality scores the text layer of an uploaded PDF page and
// decides whether the page is likely scanned and needs OCR instead.
package quality

import (
	"math"
	"strings"
	"unicode"
)

type Decision struct {
	Quality   float64
	NeedsOCR  bool
	Reasons   []string
	WordCount int
}

func CountWords(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	return len(strings.Fields(s))
}

// Score evaluates extracted page text. Assignments are short and often
// math-heavy, so digit-dense pages are not penalized the way prose
// heuristics would.
func Score(text string, minWords int) Decision {
	clean := normalize(text)
	wc := CountWords(clean)

	total := float64(len([]rune(clean)))
	if total == 0 {
		return Decision{NeedsOCR: true, Reasons: []string{"empty_text"}}
	}

	alpha := float64(countIf(clean, unicode.IsLetter))
	digits := float64(countIf(clean, unicode.IsDigit))
	spaces := float64(countIf(clean, unicode.IsSpace))
	garbage := float64(countGarbage(clean))

	alphaRatio := alpha / total
	digitRatio := digits / total
	spaceRatio := spaces / total
	garbageRatio := garbage / total

	score := 1.0
	var reasons []string

	if wc < minWords {
		penalty := 0.45
		if wc < minWords/2 {
			penalty = 0.60
		}
		score -= penalty
		reasons = append(reasons, "low_word_count")
	}

	if alphaRatio < 0.25 {
		penalty := 0.35
		if alphaRatio < 0.15 {
			penalty = 0.50
		}
		// math-heavy question sheets are fine
		if digitRatio > 0.20 {
			penalty *= 0.6
		}
		score -= penalty
		reasons = append(reasons, "low_alpha_ratio")
	}

	if garbageRatio > 0.01 {
		score -= math.Min(0.50, garbageRatio*50)
		reasons = append(reasons, "garbage_chars")
	}

	if r := singleCharWordRatio(clean); r > 0.30 {
		score -= 0.25
		reasons = append(reasons, "scrambled_text")
	}

	if spaceRatio > 0.60 || (wc > 10 && spaceRatio < 0.05) {
		score -= 0.15
		reasons = append(reasons, "abnormal_spacing")
	}

	if digitRatio > 0.25 && alphaRatio > 0.15 && wc >= minWords/2 {
		score += 0.10
		reasons = append(reasons, "numeric_heavy")
	}
	if alphaRatio > 0.60 && wc >= minWords {
		score += 0.10
		reasons = append(reasons, "good_prose")
	}

	score = math.Max(0, math.Min(1, score))

	return Decision{
		Quality:   score,
		NeedsOCR:  score < 0.50,
		Reasons:   reasons,
		WordCount: wc,
	}
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func singleCharWordRatio(s string) float64 {
	words := strings.Fields(s)
	if len(words) == 0 {
		return 0
	}
	single := 0
	for _, w := range words {
		if len([]rune(w)) == 1 {
			single++
		}
	}
	return float64(single) / float64(len(words))
}

func countIf(s string, pred func(rune) bool) int {
	n := 0
	for _, r := range s {
		if pred(r) {
			n++
		}
	}
	return n
}

func countGarbage(s string) int {
	n := 0
	for _, r := range s {
		if r == '�' || (unicode.IsControl(r) && r != '\n' && r != '\t') {
			n++
		}
	}
	return n
}
