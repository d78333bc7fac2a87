// Package document provides types and interfaces for extracting raw text
// from uploaded documents, one page at a time.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnreadable is returned when a document file cannot be opened or parsed.
var ErrUnreadable = errors.New("document unreadable")

// Page is the text of a single document page.
type Page struct {
	// Text is the extracted page text.
	Text string

	// Index is the zero-based page index. Page numbers shown to users
	// are Index+1.
	Index int
}

// Extractor pulls ordered page text out of a document file.
// Implementations must preserve original page order and zero-based indexing.
type Extractor interface {
	// Extract returns the pages of the document at path.
	Extract(path string) ([]Page, error)
}

// ExtractFunc adapts a function to the Extractor interface.
type ExtractFunc func(path string) ([]Page, error)

// Extract implements Extractor.
func (f ExtractFunc) Extract(path string) ([]Page, error) {
	return f(path)
}

// SupportedExtensions lists the file extensions the default extractor
// resolution understands.
var SupportedExtensions = []string{".pdf", ".txt", ".md"}

// Supported reports whether the file at path has a recognized extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// UnsupportedError builds the ErrUnreadable-wrapped error for a file type
// no extractor understands.
func UnsupportedError(path string) error {
	return fmt.Errorf("%w: unsupported file type %q", ErrUnreadable, filepath.Ext(path))
}
