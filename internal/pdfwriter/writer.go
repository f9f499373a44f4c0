// Package pdfwriter emits the final handwriting PDF. It implements the
// layout package's TextMeasurer, so the same font metrics that draw the
// text also drive the wrap and centering decisions.
package pdfwriter

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/inkscript/inkscript/internal/layout"
	"github.com/inkscript/inkscript/internal/types"
)

// Options configures one document.
type Options struct {
	// FontPath points at the handwriting TTF. Empty falls back to the
	// built-in Helvetica so development works without font assets.
	FontPath string
	// BackgroundPath is the page background image; empty means bare pages.
	BackgroundPath string
	// Ink is types.InkBlack or types.InkBlue.
	Ink string
	// Layout is the page geometry; must already be validated.
	Layout layout.Config
}

type Writer struct {
	pdf    *fpdf.Fpdf
	cfg    layout.Config
	family string
	bg     string
	ink    [3]int
}

func New(opts Options) (*Writer, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	family := "Helvetica"
	if opts.FontPath != "" {
		family = "Handwriting"
		pdf.AddUTF8Font(family, "", opts.FontPath)
	}
	pdf.SetFont(family, "", opts.Layout.BodySize)
	if pdf.Err() {
		return nil, fmt.Errorf("pdfwriter: %w", pdf.Error())
	}

	ink := [3]int{0, 0, 0}
	if opts.Ink == types.InkBlue {
		ink = [3]int{0, 0, 255}
	}

	return &Writer{
		pdf:    pdf,
		cfg:    opts.Layout,
		family: family,
		bg:     opts.BackgroundPath,
		ink:    ink,
	}, nil
}

// TextWidth measures text at the given size in millimetres, restoring the
// body size afterwards.
func (w *Writer) TextWidth(text string, size float64) float64 {
	w.pdf.SetFontSize(size)
	width := w.pdf.GetStringWidth(text)
	w.pdf.SetFontSize(w.cfg.BodySize)
	return width
}

// Render draws the composed document: per page the background image, the
// header overlay in black, then that page's answer text in the ink color.
func (w *Writer) Render(doc layout.Document) error {
	content := byPage(doc.Content)
	overlay := byPage(doc.Overlay)

	for page := 1; page <= doc.Pages; page++ {
		w.pdf.AddPage()

		if w.bg != "" {
			w.pdf.ImageOptions(w.bg, 0, 0, w.cfg.PageW, w.cfg.PageH,
				false, fpdf.ImageOptions{}, 0, "")
		}

		w.pdf.SetTextColor(0, 0, 0)
		for i, p := range overlay[page] {
			size := w.cfg.NameSize
			if i%2 == 1 {
				size = w.cfg.RollSize
			}
			w.pdf.SetFontSize(size)
			w.pdf.Text(p.X, p.Y, p.Text)
		}

		w.pdf.SetTextColor(w.ink[0], w.ink[1], w.ink[2])
		w.pdf.SetFontSize(w.cfg.BodySize)
		for _, p := range content[page] {
			w.pdf.Text(p.X, p.Y, p.Text)
		}
	}

	if w.pdf.Err() {
		return fmt.Errorf("pdfwriter: %w", w.pdf.Error())
	}
	return nil
}

// Output finalizes the document and writes the PDF bytes.
func (w *Writer) Output(out io.Writer) error {
	return w.pdf.Output(out)
}

func byPage(placements []layout.Placement) map[int][]layout.Placement {
	m := make(map[int][]layout.Placement)
	for _, p := range placements {
		m[p.Page] = append(m[p.Page], p)
	}
	return m
}
