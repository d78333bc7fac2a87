package vector

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyIndex is returned when building an index from zero entries.
	ErrEmptyIndex = errors.New("cannot build index with no entries")

	// ErrInvalidK is returned when search pool parameters are invalid.
	ErrInvalidK = errors.New("invalid k")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConnection is returned when a vector store backend cannot be reached.
	ErrConnection = errors.New("vector store connection failed")
)

// ErrInvalidKf wraps ErrInvalidK with a formatted detail message.
func ErrInvalidKf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidK, fmt.Sprintf(format, args...))
}
