package chat

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is a machine-readable classification of a provider failure.
type ErrorKind int

const (
	// KindOther covers every failure that is not a rate limit,
	// including timeouts.
	KindOther ErrorKind = iota

	// KindRateLimited marks requests rejected by provider rate limiting.
	KindRateLimited
)

// ProviderError is a chat-completion provider failure carrying a
// machine-readable kind alongside the provider's textual message.
type ProviderError struct {
	Kind     ErrorKind
	Provider string
	Message  string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Classify returns the error kind for a provider failure. Structured
// classification via *ProviderError is preferred; message sniffing for
// rate/limit keywords is the fallback when the provider gives no
// structured error.
func Classify(err error) ErrorKind {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Kind
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "rate") || strings.Contains(msg, "limit") {
		return KindRateLimited
	}
	return KindOther
}
