package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is one page of extracted text, in source order.
type Page struct {
	Number int // 1-based page number
	Text   string
}

// Loader reads a source PDF into page-level text units.
type Loader struct {
	cleaner *Cleaner
}

func NewLoader() *Loader {
	return &Loader{
		cleaner: NewCleaner(),
	}
}

// Load extracts one text unit per page, preserving page order. The file
// must exist, be readable, and carry a .pdf extension.
func (l *Loader) Load(path string) ([]Page, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("failed to open document %s: is a directory", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("unsupported file type %q: only PDF is supported", filepath.Ext(path))
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF %s: %w", path, err)
	}
	defer f.Close()

	pages := make([]Page, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d of %s: %w", i, path, err)
		}

		pages = append(pages, Page{
			Number: i,
			Text:   l.cleaner.CleanText(text),
		})
	}

	return pages, nil
}
