package extract

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Tesseract wraps the gosseract OCR engine. A fresh client is created per
// recognition because gosseract clients are not safe for concurrent use;
// the caller gates parallelism with a semaphore.
type Tesseract struct {
	Language string
}

// Recognize performs OCR on encoded image bytes and returns trimmed text.
func (t Tesseract) Recognize(imageData []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if t.Language != "" {
		if err := client.SetLanguage(t.Language); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}
	if err := client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// tesseractNative lists formats Leptonica reads directly; everything else
// is transcoded to PNG first.
var tesseractNative = map[string]bool{
	"png":  true,
	"jpeg": true,
	"tiff": true,
	"bmp":  true,
}

// NormalizeImage re-encodes uploads in formats the OCR engine cannot read
// (webp, gif) as PNG. Native formats pass through untouched.
func NormalizeImage(data []byte) ([]byte, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if tesseractNative[format] {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s image: %w", format, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
