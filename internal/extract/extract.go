// Package extract turns an uploaded assignment file into question text.
// PDFs go through poppler's text layer with a per-page quality check and a
// tesseract fallback for scanned pages; images go straight to OCR.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/inkscript/inkscript/internal/config"
	"github.com/inkscript/inkscript/internal/quality"
	"github.com/inkscript/inkscript/internal/types"
)

const pageSeparator = "\n\n"

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".tiff": true, ".tif": true,
}

type Service struct {
	cfg    config.Config
	ocr    Tesseract
	ocrSem *semaphore.Weighted
}

// New builds an extraction service. ocrSem bounds concurrent tesseract
// runs; text-layer extraction never touches it. A nil semaphore means
// unbounded OCR.
func New(cfg config.Config, ocrSem *semaphore.Weighted) *Service {
	return &Service{
		cfg:    cfg,
		ocr:    Tesseract{Language: cfg.OCRLanguage},
		ocrSem: ocrSem,
	}
}

// recognize is the single chokepoint for tesseract: every OCR run goes
// through the semaphore so cheap text-layer requests are never queued
// behind it.
func (s *Service) recognize(ctx context.Context, img []byte) (string, error) {
	if s.ocrSem != nil {
		if err := s.ocrSem.Acquire(ctx, 1); err != nil {
			return "", fmt.Errorf("ocr capacity: %w", err)
		}
		defer s.ocrSem.Release(1)
	}
	return s.ocr.Recognize(img)
}

// SupportedExt reports whether an upload with this filename can be
// extracted at all.
func SupportedExt(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".pdf" || ext == ".txt" || imageExtensions[ext]
}

// FromUpload routes a saved upload to the right extractor by extension.
func (s *Service) FromUpload(ctx context.Context, path string) (types.ExtractionResult, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExtensions[ext]:
		return s.FromImage(ctx, path)
	case ext == ".pdf":
		return s.FromPDF(ctx, path)
	case ext == ".txt":
		return s.fromPlainText(path)
	default:
		return types.ExtractionResult{}, fmt.Errorf("unsupported file type %q", ext)
	}
}

// FromImage OCRs a single uploaded image.
func (s *Service) FromImage(ctx context.Context, path string) (types.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ExtractionResult{}, fmt.Errorf("read image: %w", err)
	}
	normalized, err := NormalizeImage(data)
	if err != nil {
		return types.ExtractionResult{}, err
	}
	text, err := s.recognize(ctx, normalized)
	if err != nil {
		return types.ExtractionResult{}, err
	}
	text = cleanText(text)
	return types.ExtractionResult{
		Text:       text,
		TotalPages: 1,
		OCRPages:   1,
		Pages: []types.PageExtraction{{
			PageNumber: 1,
			Text:       text,
			Method:     "ocr",
			WordCount:  quality.CountWords(text),
		}},
	}, nil
}

// FromPDF extracts every page: text layer where it is trustworthy,
// rasterize-and-OCR where the quality scorer says the page is scanned.
func (s *Service) FromPDF(ctx context.Context, path string) (types.ExtractionResult, error) {
	infoCtx, cancel := context.WithTimeout(ctx, s.cfg.PDFInfoTimeout)
	total, err := PageCount(infoCtx, path)
	cancel()
	if err != nil {
		return types.ExtractionResult{}, err
	}
	if total <= 0 {
		return types.ExtractionResult{}, fmt.Errorf("pdf has no pages")
	}

	var workDir string // lazily created, only if a page needs OCR
	defer func() {
		if workDir != "" {
			_ = os.RemoveAll(workDir)
		}
	}()

	pages := make([]types.PageExtraction, 0, total)
	ocrCount := 0
	for page := 1; page <= total; page++ {
		textCtx, cancel := context.WithTimeout(ctx, s.cfg.PDFToTextTimeout)
		raw, _ := TextForPage(textCtx, path, page)
		cancel()
		raw = cleanText(raw)

		d := quality.Score(raw, s.cfg.MinWordsThreshold)
		if !d.NeedsOCR {
			pages = append(pages, types.PageExtraction{
				PageNumber: page,
				Text:       raw,
				Method:     "text-layer",
				WordCount:  d.WordCount,
			})
			continue
		}

		if workDir == "" {
			workDir, err = os.MkdirTemp("", "inkscript-ocr-*")
			if err != nil {
				return types.ExtractionResult{}, fmt.Errorf("temp dir: %w", err)
			}
		}
		text, ocrErr := s.ocrPage(ctx, path, page, workDir)
		if ocrErr != nil {
			// keep whatever the text layer gave us rather than failing the upload
			pages = append(pages, types.PageExtraction{
				PageNumber: page,
				Text:       raw,
				Method:     "text-layer",
				WordCount:  d.WordCount,
			})
			continue
		}
		pages = append(pages, types.PageExtraction{
			PageNumber: page,
			Text:       text,
			Method:     "ocr",
			WordCount:  quality.CountWords(text),
		})
		ocrCount++
	}

	return types.ExtractionResult{
		Text:           combine(pages),
		Pages:          pages,
		TotalPages:     total,
		TextLayerPages: len(pages) - ocrCount,
		OCRPages:       ocrCount,
	}, nil
}

func (s *Service) ocrPage(ctx context.Context, pdfPath string, page int, workDir string) (string, error) {
	rasterCtx, cancel := context.WithTimeout(ctx, s.cfg.PDFToPPMTimeout)
	imgPath, err := RasterPage(rasterCtx, pdfPath, page, s.cfg.RasterDPI, workDir)
	cancel()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(imgPath)
	if err != nil {
		return "", err
	}
	text, err := s.recognize(ctx, data)
	if err != nil {
		return "", err
	}
	return cleanText(text), nil
}

func (s *Service) fromPlainText(path string) (types.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ExtractionResult{}, fmt.Errorf("read text file: %w", err)
	}
	text := cleanText(string(data))
	return types.ExtractionResult{
		Text:       text,
		TotalPages: 1,
		Pages: []types.PageExtraction{{
			PageNumber: 1,
			Text:       text,
			Method:     "text-layer",
			WordCount:  quality.CountWords(text),
		}},
	}, nil
}

func combine(pages []types.PageExtraction) string {
	var b strings.Builder
	first := true
	for _, p := range pages {
		txt := strings.TrimSpace(p.Text)
		if txt == "" {
			continue
		}
		if !first {
			b.WriteString(pageSeparator)
		}
		first = false
		b.WriteString(txt)
	}
	return strings.TrimSpace(b.String())
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}
