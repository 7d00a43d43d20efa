package html2png

import "errors"

// Sentinel errors for library operations. Callers can classify failures
// with errors.Is: port and server errors are typically transient and
// retryable, document errors are not, and a timed-out readiness state is
// not an error at all (see Result.Warning).
var (
	// Input validation errors.
	ErrEmptyDocumentPath = errors.New("document path cannot be empty")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrServedRootInvalid = errors.New("served root is not a directory")

	// Path safety errors, raised before any server or browser resource
	// is acquired.
	ErrDocumentOutsideRoot = errors.New("document is outside the served root")

	// Content server acquisition errors.
	ErrPortInUse         = errors.New("preferred port already in use")
	ErrServerDidNotStart = errors.New("content server did not start")
	ErrServerUnreachable = errors.New("content server unreachable")

	// Browser session errors.
	ErrBrowserConnect    = errors.New("failed to connect to browser")
	ErrPageCreate        = errors.New("failed to create browser page")
	ErrNavigationTimeout = errors.New("page navigation timed out")
	ErrEvaluation        = errors.New("script evaluation failed")
	ErrSelectorTimeout   = errors.New("selector wait timed out")

	// Capture errors, surfaced with the underlying I/O reason.
	ErrCaptureFailed = errors.New("screenshot capture failed")
)
