package ingest

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is one extracted source page. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Extractor yields page texts from a source document.
type Extractor interface {
	Pages(path string) ([]Page, error)
}

// PDFExtractor extracts per-page plain text from a PDF file.
type PDFExtractor struct{}

func (PDFExtractor) Pages(path string) ([]Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []Page
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not abort the document.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}
