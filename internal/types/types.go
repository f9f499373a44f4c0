package types

import "strings"

// SolveRequest carries the multipart form fields of one /solve call.
type SolveRequest struct {
	Name       string
	Roll       string
	Font       string
	Background string
	Ink        string
	Filename   string
}

// FontMap maps the public font keys to TTF filenames under the fonts dir.
var FontMap = map[string]string{
	"handwriting1": "font1.ttf",
	"handwriting2": "font2.ttf",
	"handwriting3": "font3.ttf",
	"handwriting4": "font4.ttf",
	"handwriting5": "font5.ttf",
}

// FontFile resolves a font key, falling back to the first font for
// unknown keys.
func FontFile(key string) string {
	if f, ok := FontMap[key]; ok {
		return f
	}
	return "font1.ttf"
}

// Ink colors the answer text may be drawn in.
const (
	InkBlack = "black"
	InkBlue  = "blue"
)

// NormalizeInk maps any unrecognized ink value to black.
func NormalizeInk(ink string) string {
	if strings.EqualFold(strings.TrimSpace(ink), InkBlue) {
		return InkBlue
	}
	return InkBlack
}

// Background page styles.
const (
	BackgroundBlank = "blank"
	BackgroundLined = "lined"
)

// PageExtraction is the extracted text of a single PDF page plus how it
// was obtained.
type PageExtraction struct {
	PageNumber int    `json:"pageNumber"`
	Text       string `json:"text"`
	Method     string `json:"method"` // "text-layer" | "ocr"
	WordCount  int    `json:"wordCount"`
}

// ExtractionResult is the combined output of the text extractor.
type ExtractionResult struct {
	Text           string           `json:"text"`
	Pages          []PageExtraction `json:"pages,omitempty"`
	TotalPages     int              `json:"totalPages"`
	TextLayerPages int              `json:"textLayerPages"`
	OCRPages       int              `json:"ocrPages"`
}

// ErrorResponse is the JSON error envelope returned on failures.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}
