// Package extract turns source documents into raw UTF-8 text. PDF pages are
// extracted individually and joined by a newline; pages yielding no text are
// skipped silently. Plain-text files pass through unchanged.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// File extracts text from path, choosing the extractor by file extension.
// Anything that is not a .pdf is read as plain text.
func File(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return PDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("extract: read %s: %w", path, err)
	}
	return string(data), nil
}

// PDF extracts the text of every page of the PDF at path, joined by a
// newline. Pages with no extractable text (scanned images, empty pages, or
// pages the parser cannot decode) are skipped.
func PDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("extract: open %s: %w", path, err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n"), nil
}
