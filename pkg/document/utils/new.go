// Package documentutils is the document utility package
package documentutils

import (
	"path/filepath"
	"strings"

	"github.com/docqueryco/docquery/pkg/document"
	"github.com/docqueryco/docquery/pkg/document/pdf"
	"github.com/docqueryco/docquery/pkg/document/plaintext"
)

// NewExtractor returns the extractor for the file at path, chosen by
// extension. Unknown extensions fail with document.ErrUnreadable.
func NewExtractor(path string) (document.Extractor, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return pdf.NewExtractor(), nil
	case ".txt", ".md":
		return plaintext.NewExtractor(), nil
	default:
		return nil, document.UnsupportedError(path)
	}
}

// Extract resolves the extractor for path and runs it.
func Extract(path string) ([]document.Page, error) {
	extractor, err := NewExtractor(path)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(path)
}
