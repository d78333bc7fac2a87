// Package segment splits extracted document text into overlapping chunks
// suitable for embedding and retrieval.
package segment

import (
	"strings"

	"github.com/docqueryco/docquery/pkg/document"
)

const (
	// DefaultChunkSize is the maximum chunk length in runes.
	DefaultChunkSize = 1500

	// DefaultChunkOverlap is the number of runes shared between
	// consecutive chunks from the same page.
	DefaultChunkOverlap = 300
)

// separators are tried in priority order when looking for a natural place
// to end a chunk. The empty string means a hard cut at the window edge.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunk is a contiguous span of text drawn from one page.
// Chunks are immutable once created.
type Chunk struct {
	// Text is the chunk content.
	Text string `json:"text"`

	// SourcePage is the zero-based index of the originating page.
	SourcePage int `json:"source_page"`

	// Ordinal is the chunk's position in emission order, unique and
	// strictly increasing across the whole document.
	Ordinal int `json:"ordinal"`
}

// Segmenter windows page text into chunks of at most chunkSize runes,
// preferring to break at natural boundaries, with consecutive chunks from
// the same page overlapping by chunkOverlap runes.
type Segmenter struct {
	chunkSize    int
	chunkOverlap int
}

// NewSegmenter creates a segmenter. Non-positive chunkSize falls back to
// DefaultChunkSize; a negative overlap or an overlap that is not smaller
// than the chunk size falls back to DefaultChunkOverlap.
func NewSegmenter(chunkSize, chunkOverlap int) *Segmenter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
		if chunkOverlap >= chunkSize {
			chunkOverlap = chunkSize / 5
		}
	}
	return &Segmenter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Segment splits the given pages into chunks. Every rune of input text is
// covered by at least one chunk, no chunk is empty, and ordinals increase
// strictly in emission order. An empty page yields no chunks; a page
// shorter than the chunk size yields exactly one chunk equal to the page
// text.
func (s *Segmenter) Segment(pages []document.Page) []Chunk {
	var chunks []Chunk
	ordinal := 0

	for _, page := range pages {
		for _, text := range s.splitPage(page.Text) {
			chunks = append(chunks, Chunk{
				Text:       text,
				SourcePage: page.Index,
				Ordinal:    ordinal,
			})
			ordinal++
		}
	}

	return chunks
}

// splitPage windows a single page's text. Runes, not bytes, so multi-byte
// characters never straddle a cut.
func (s *Segmenter) splitPage(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.chunkSize {
		return []string{text}
	}

	var out []string
	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			break
		}

		end = s.snapToSeparator(runes, start, end)
		out = append(out, string(runes[start:end]))

		// Overlap is measured from the actual emitted end, so the
		// trailing chunkOverlap runes of this chunk lead the next one.
		next := end - s.chunkOverlap
		if next <= start {
			next = end
		}
		start = next
	}

	return out
}

// snapToSeparator moves end back to just after the latest separator
// occurrence inside the window, trying separators in priority order. The
// snapped end must leave a chunk longer than the overlap or the window
// would stop advancing; when no separator qualifies the cut stays hard.
func (s *Segmenter) snapToSeparator(runes []rune, start, end int) int {
	window := string(runes[start:end])
	for _, sep := range separators {
		if sep == "" {
			break
		}
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		snapped := start + len([]rune(window[:idx])) + len([]rune(sep))
		if snapped-start > s.chunkOverlap {
			return snapped
		}
	}
	return end
}

// ChunkSize returns the configured maximum chunk length in runes.
func (s *Segmenter) ChunkSize() int { return s.chunkSize }

// ChunkOverlap returns the configured overlap in runes.
func (s *Segmenter) ChunkOverlap() int { return s.chunkOverlap }
