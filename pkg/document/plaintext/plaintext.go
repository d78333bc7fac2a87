// Package plaintext extracts text from plain files (.txt, .md).
package plaintext

import (
	"fmt"
	"os"

	"github.com/docqueryco/docquery/pkg/document"
)

// Extractor reads a plain text file as a single-page document.
type Extractor struct{}

// NewExtractor creates a plain text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the file content as one page with index 0.
func (e *Extractor) Extract(path string) ([]document.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", document.ErrUnreadable, path, err)
	}

	return []document.Page{{Text: string(data), Index: 0}}, nil
}

var _ document.Extractor = (*Extractor)(nil)
