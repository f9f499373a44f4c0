package pdfwriter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/inkscript/inkscript/internal/background"
	"github.com/inkscript/inkscript/internal/layout"
	"github.com/inkscript/inkscript/internal/types"
)

func newTestWriter(t *testing.T, opts Options) *Writer {
	t.Helper()
	if opts.Layout.PageW == 0 {
		opts.Layout = layout.Default()
	}
	w, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestTextWidthScalesWithSize(t *testing.T) {
	w := newTestWriter(t, Options{})

	small := w.TextWidth("measure me", 12)
	large := w.TextWidth("measure me", 36)
	if small <= 0 {
		t.Fatalf("width at size 12 = %v, want > 0", small)
	}
	if large <= small {
		t.Errorf("width at size 36 (%v) should exceed width at size 12 (%v)", large, small)
	}
	if w.TextWidth("", 36) != 0 {
		t.Error("empty string should measure zero")
	}
}

func TestTextWidthRestoresBodySize(t *testing.T) {
	w := newTestWriter(t, Options{})

	before := w.TextWidth("stable", w.cfg.BodySize)
	w.TextWidth("other text", 12)
	after := w.TextWidth("stable", w.cfg.BodySize)
	if before != after {
		t.Errorf("body-size measurement drifted: %v -> %v", before, after)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	w := newTestWriter(t, Options{Ink: types.InkBlue})

	doc, err := layout.Compose("1. First answer.\n2. Second answer.",
		layout.HeaderInfo{Name: "Test Student", Roll: "R-007"}, layout.Default(), w)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Render(doc); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := w.Output(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Errorf("output does not start with PDF magic (%d bytes)", buf.Len())
	}
}

func TestRenderWithBackgroundImage(t *testing.T) {
	paths, err := background.Ensure(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	w := newTestWriter(t, Options{BackgroundPath: paths["lined"]})
	doc, err := layout.Compose("1. On ruled paper.",
		layout.HeaderInfo{Name: "n", Roll: "r"}, layout.Default(), w)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Render(doc); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := w.Output(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("empty output")
	}
}

func TestRenderEmptySolutionStillEmitsPage(t *testing.T) {
	w := newTestWriter(t, Options{})

	doc, err := layout.Compose("", layout.HeaderInfo{Name: "n", Roll: "r"}, layout.Default(), w)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Pages != 1 {
		t.Fatalf("Pages = %d, want 1", doc.Pages)
	}
	if err := w.Render(doc); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := w.Output(&buf); err != nil {
		t.Fatal(err)
	}
}

func TestNewRejectsMissingFont(t *testing.T) {
	_, err := New(Options{FontPath: "/no/such/font.ttf", Layout: layout.Default()})
	if err == nil {
		t.Fatal("expected error for missing font file")
	}
}
