// Package sanitize normalizes extracted and generated text down to the
// character set the handwriting fonts can actually draw.
package sanitize

import (
	"regexp"
	"strings"
)

// punctuation the fonts cannot render is either dropped or mapped to the
// closest drawable equivalent.
var replacer = strings.NewReplacer(
	"‘", "", "’", "",
	"“", "", "”", "",
	"—", "-", "–", "-",
	"…", "...",
	"(", "<", ")", ">",
	"{", "<", "}", ">",
	"[", "<", "]", ">",
	"=", ":",
	"\\", "", "/", "",
	`"`, "", "'", "",
)

const allowed = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 [](),.:;!?@%&-+=*\n"

var (
	markdownNoise = regexp.MustCompile("[*`]")
	blankRuns     = regexp.MustCompile(`\n\s*\n+`)
)

// NormalizePunctuation maps smart quotes, dashes and brackets onto the
// restricted drawable set.
func NormalizePunctuation(text string) string {
	return replacer.Replace(text)
}

// Filter drops every character outside the allowed set, keeping newlines.
func Filter(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || strings.ContainsRune(allowed, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Clean is the full sanitizer contract: normalize punctuation, then filter
// to the allowed set. Applied to both extracted questions and generated
// solutions before layout.
func Clean(text string) string {
	return Filter(NormalizePunctuation(text))
}

// StripModelNoise removes markdown emphasis and collapses blank-line runs
// in raw generator output.
func StripModelNoise(text string) string {
	text = markdownNoise.ReplaceAllString(text, "")
	text = blankRuns.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}
