package main

import (
	"errors"

	html2png "github.com/alnah/go-html2png"
	"github.com/alnah/go-html2png/internal/config"
)

// Exit codes for the html2png CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, custom codes < 126.
const (
	ExitSuccess  = 0 // All captures written cleanly
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or validation
	ExitServer   = 3 // Port or content server errors (retryable)
	ExitInput    = 4 // Document or path errors (not retryable)
	ExitDegraded = 5 // Captures written, but at least one timed out
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use
// fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrDegradedCapture) {
		return ExitDegraded
	}

	// Server errors (exit 3): transient, a retry may succeed.
	if errors.Is(err, html2png.ErrPortInUse) ||
		errors.Is(err, html2png.ErrServerDidNotStart) ||
		errors.Is(err, html2png.ErrServerUnreachable) {
		return ExitServer
	}

	// Document errors (exit 4): the input itself is wrong.
	if errors.Is(err, html2png.ErrEmptyDocumentPath) ||
		errors.Is(err, html2png.ErrDocumentNotFound) ||
		errors.Is(err, html2png.ErrServedRootInvalid) ||
		errors.Is(err, html2png.ErrDocumentOutsideRoot) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoDocuments) {
		return ExitInput
	}

	// Usage/config errors (exit 2).
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrBadFlags) {
		return ExitUsage
	}

	return ExitGeneral
}
