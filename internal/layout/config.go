// Package layout turns generated solution text into page-bound drawing
// placements: it segments the text into numbered answers, wraps each answer
// against a measured line width, paginates the result and stamps a
// name/roll header on every page. It performs no drawing itself — text
// measurement is injected by the document writer.
package layout

import "fmt"

// TextMeasurer reports the rendered width of text at a font size, in the
// same unit as the layout coordinates. Supplied by the document writer.
type TextMeasurer interface {
	TextWidth(text string, size float64) float64
}

// Placement is one drawing instruction: text at (X, Y) on a 1-based page.
type Placement struct {
	Text string
	X    float64
	Y    float64
	Page int
}

// HeaderInfo is the static per-document header content stamped on every page.
type HeaderInfo struct {
	Name string
	Roll string
}

// Config holds the fixed page geometry, in millimetres (A4).
type Config struct {
	LineHeight float64 // vertical advance per wrapped line
	MaxWidth   float64 // wrap threshold for answer body lines
	MarginX    float64 // answer body left edge
	NumberX    float64 // answer number label left edge
	TopY       float64 // first line offset on a fresh page
	BottomY    float64 // page-break trigger
	AnswerGap  float64 // extra spacing after each answer

	BodySize float64 // font size for answer text and number labels
	NameSize float64
	RollSize float64
	CenterX  float64 // horizontal page centre, for header centering
	NameY    float64
	RollY    float64

	PageW float64
	PageH float64
}

// Default returns the standard A4 geometry.
func Default() Config {
	return Config{
		LineHeight: 11,
		MaxWidth:   180,
		MarginX:    30,
		NumberX:    18.1,
		TopY:       38,
		BottomY:    285,
		AnswerGap:  4,

		BodySize: 36,
		NameSize: 36,
		RollSize: 32,
		CenterX:  105,
		NameY:    17,
		RollY:    24,

		PageW: 210,
		PageH: 297,
	}
}

// Validate rejects geometry that would make pagination loop or collapse.
// Callers must check this before rendering begins.
func (c Config) Validate() error {
	if c.LineHeight <= 0 {
		return fmt.Errorf("layout: line height must be positive, got %v", c.LineHeight)
	}
	if c.MaxWidth <= 0 {
		return fmt.Errorf("layout: max width must be positive, got %v", c.MaxWidth)
	}
	if c.AnswerGap < 0 {
		return fmt.Errorf("layout: answer gap must not be negative, got %v", c.AnswerGap)
	}
	if c.BottomY <= c.TopY {
		return fmt.Errorf("layout: bottom limit %v must exceed top margin %v", c.BottomY, c.TopY)
	}
	return nil
}
