// Package background generates the A4 page backgrounds the answers are
// drawn over: a plain white sheet and a ruled one. Images are created once
// at startup and reused across requests.
package background

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
)

// A4 at 300 dpi.
const (
	pageWidth  = 2480
	pageHeight = 3508

	ruleStartY  = 150 // keep the header area clear
	ruleSpacing = 40
	ruleLeftX   = 100
	ruleRightX  = 2380
)

var ruleColor = color.RGBA{R: 180, G: 180, B: 180, A: 255}

// Ensure creates blank.png and lined.png under dir if they are missing and
// returns absolute paths keyed by background name.
func Ensure(dir string) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("backgrounds dir: %w", err)
	}

	paths := map[string]string{}
	for name, render := range map[string]func() image.Image{
		"blank": blankPage,
		"lined": linedPage,
	} {
		path := filepath.Join(dir, name+".png")
		if _, err := os.Stat(path); err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			if err := writePNG(path, render()); err != nil {
				return nil, fmt.Errorf("create %s background: %w", name, err)
			}
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		paths[name] = abs
	}
	return paths, nil
}

// Resolve picks the background for a key, falling back to blank when the
// key is unknown or its file has gone missing.
func Resolve(paths map[string]string, key string) string {
	if p, ok := paths[key]; ok {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return paths["blank"]
}

func blankPage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, pageWidth, pageHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

func linedPage() image.Image {
	img := blankPage().(*image.RGBA)
	for y := ruleStartY; y < pageHeight; y += ruleSpacing {
		rule := image.Rect(ruleLeftX, y-1, ruleRightX, y+2)
		draw.Draw(img, rule, &image.Uniform{C: ruleColor}, image.Point{}, draw.Src)
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
