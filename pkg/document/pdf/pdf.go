// Package pdf extracts per-page text from PDF files.
package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docqueryco/docquery/pkg/document"
)

// Extractor reads PDF files and returns their pages as plain text.
// The underlying reader numbers pages from 1; emitted Page indexes are
// zero-based.
type Extractor struct{}

// NewExtractor creates a PDF extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the text of every page in the PDF at path.
// Pages whose text cannot be decoded are emitted empty rather than
// shifting the indexes of the pages that follow.
func (e *Extractor) Extract(path string) ([]document.Page, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", document.ErrUnreadable, path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", document.ErrUnreadable, path, err)
	}

	reader, err := pdf.NewReader(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", document.ErrUnreadable, path, err)
	}

	pageCount := reader.NumPage()
	pages := make([]document.Page, 0, pageCount)

	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)

		var text string
		if !page.V.IsNull() {
			if extracted, err := page.GetPlainText(nil); err == nil {
				text = extracted
			}
		}

		pages = append(pages, document.Page{
			Text:  strings.TrimSpace(text),
			Index: i - 1,
		})
	}

	return pages, nil
}

var _ document.Extractor = (*Extractor)(nil)
