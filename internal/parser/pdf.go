// Package parser extracts plain text from the source PDF for display,
// e.g. showing the page a citation points at.
package parser

import (
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}

// PageText extracts the plain text of a single 1-based page. Pages that
// carry no extractable text yield an empty string, not an error.
func PageText(path string, page int) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	if page < 1 || page > reader.NumPage() {
		return "", fmt.Errorf("page %d out of range (1-%d)", page, reader.NumPage())
	}

	p := reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract page %d text: %w", page, err)
	}
	return strings.TrimSpace(text), nil
}
