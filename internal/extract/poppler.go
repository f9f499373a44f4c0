package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
)

var pdfInfoPages = regexp.MustCompile(`(?m)^Pages:\s+(\d+)\s*$`)

// PageCount runs pdfinfo and parses the page total.
func PageCount(ctx context.Context, pdfPath string) (int, error) {
	out, err := exec.CommandContext(ctx, "pdfinfo", pdfPath).Output()
	if err != nil {
		return 0, fmt.Errorf("pdfinfo: %w", err)
	}
	m := pdfInfoPages.FindStringSubmatch(string(out))
	if len(m) != 2 {
		return 0, fmt.Errorf("pdfinfo: pages not found")
	}
	return strconv.Atoi(m[1])
}

// TextForPage extracts one page's text layer via pdftotext.
func TextForPage(ctx context.Context, pdfPath string, page int) (string, error) {
	out, err := exec.CommandContext(ctx,
		"pdftotext",
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-layout",
		pdfPath,
		"-",
	).Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext page %d: %w", page, err)
	}
	return string(out), nil
}

// RasterPage renders a single PDF page to a PNG under workDir via pdftoppm
// and returns the image path. Used when the page has no usable text layer.
func RasterPage(ctx context.Context, pdfPath string, page, dpi int, workDir string) (string, error) {
	if dpi <= 0 {
		dpi = 144
	}
	prefix := filepath.Join(workDir, "page")
	cmd := exec.CommandContext(ctx,
		"pdftoppm",
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		pdfPath,
		prefix,
	)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftoppm page %d: %w", page, err)
	}
	return findRasteredImage(prefix, page)
}

// pdftoppm zero-pads the page suffix depending on the document's total
// page count, so probe the plausible spellings.
func findRasteredImage(prefix string, page int) (string, error) {
	for _, candidate := range []string{
		fmt.Sprintf("%s-%d.png", prefix, page),
		fmt.Sprintf("%s-%02d.png", prefix, page),
		fmt.Sprintf("%s-%03d.png", prefix, page),
		fmt.Sprintf("%s-%04d.png", prefix, page),
	} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("rastered image not found for page %d", page)
}
