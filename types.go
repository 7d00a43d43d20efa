package html2png

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ReadinessState describes how far a page's chart rendering has
// progressed. Transitions are driven only by DOM polling results; the
// terminal states are ReadinessFullyRendered and ReadinessTimedOut.
type ReadinessState int

const (
	ReadinessUnknown ReadinessState = iota
	ReadinessLibraryDetected
	ReadinessContainersFound
	ReadinessPartiallyRendered
	ReadinessFullyRendered
	ReadinessTimedOut
)

// String returns a human-readable state name for logs and diagnostics.
func (s ReadinessState) String() string {
	switch s {
	case ReadinessUnknown:
		return "unknown"
	case ReadinessLibraryDetected:
		return "library-detected"
	case ReadinessContainersFound:
		return "containers-found"
	case ReadinessPartiallyRendered:
		return "partially-rendered"
	case ReadinessFullyRendered:
		return "fully-rendered"
	case ReadinessTimedOut:
		return "timed-out"
	default:
		return fmt.Sprintf("ReadinessState(%d)", int(s))
	}
}

// ContainerStatus is the per-container signal snapshot taken during
// readiness polling. A container counts as rendered if any one of the
// three signals is present; they are alternative rendering backends, not
// cumulative requirements.
type ContainerStatus struct {
	ID        string
	HasCanvas bool
	HasSVG    bool
	HasMarks  bool
}

// Rendered reports whether any completion signal is present.
func (c ContainerStatus) Rendered() bool {
	return c.HasCanvas || c.HasSVG || c.HasMarks
}

// ReadinessReport summarizes the detector's final observation of a page.
type ReadinessReport struct {
	State      ReadinessState
	HasLibrary bool // charting library referenced by the document
	Containers int  // chart containers discovered
	Rendered   int  // containers with at least one completion signal
	Escalated  bool // forced-redraw escalation ran
	Details    []ContainerStatus
}

// ReadinessPolicy holds the settle delays and bounded waits that drive
// the readiness detector. The defaults are tuned empirically for
// Vega-Lite reports of moderate size; raise EscalationSettle for
// data-heavy documents.
type ReadinessPolicy struct {
	// InitialSettle is how long to wait after load before the first
	// signal check.
	InitialSettle time.Duration

	// EscalationSettle is the longer wait after a forced redraw, before
	// the single re-check.
	EscalationSettle time.Duration

	// ContainerTimeout bounds the wait for at least one chart container
	// to be attached to the DOM.
	ContainerTimeout time.Duration

	// LibraryTimeout bounds the wait for the charting library's global
	// symbol to appear once its script tag has been seen.
	LibraryTimeout time.Duration

	// FinalSettle is a last quiet period before the viewport is measured
	// for capture. Zero skips it.
	FinalSettle time.Duration

	// ImageWait bounds the best-effort wait for <img> elements to become
	// visible before capture. Zero skips the wait.
	ImageWait time.Duration
}

// DefaultReadinessPolicy returns the empirically tuned defaults.
func DefaultReadinessPolicy() ReadinessPolicy {
	return ReadinessPolicy{
		InitialSettle:    3 * time.Second,
		EscalationSettle: 8 * time.Second,
		ContainerTimeout: 10 * time.Second,
		LibraryTimeout:   30 * time.Second,
		FinalSettle:      5 * time.Second,
		ImageWait:        30 * time.Second,
	}
}

// Input contains the parameters for one Render call.
type Input struct {
	// DocumentPath is the HTML document to snapshot (required). Relative
	// paths are resolved against the working directory.
	DocumentPath string

	// OutputPath is where the PNG is written. Empty derives it from
	// DocumentPath by swapping the extension. The parent directory must
	// exist.
	OutputPath string

	// Root overrides the served root for this call. Empty uses the
	// renderer's configured root, or the document's own directory when
	// neither is set. The document must live under the root.
	Root string
}

// Result describes a completed capture.
type Result struct {
	// OutputPath is the written PNG.
	OutputPath string

	// ViewportWidth and ViewportHeight are the final capture dimensions;
	// the height is the document's full rendered scroll height.
	ViewportWidth  int
	ViewportHeight int

	// RunID identifies this render in debug logs.
	RunID string

	// Readiness is the detector's final snapshot.
	Readiness ReadinessReport

	// Warning is non-empty when readiness timed out and the capture was
	// taken best-effort. The image is still valid output.
	Warning string
}

// Viewport and timing defaults.
const (
	defaultViewportWidth  = 1600
	defaultViewportHeight = 900
	defaultDeviceScale    = 1.5

	defaultNavigationTimeout  = 60 * time.Second
	defaultNetworkIdleTimeout = 60 * time.Second
)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	root               string
	viewportWidth      int
	deviceScale        float64
	preferredPort      int
	browserBin         string
	navigationTimeout  time.Duration
	networkIdleTimeout time.Duration
	policy             ReadinessPolicy
	logger             *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRoot sets the served root directory. Documents outside it are
// rejected before any resource is acquired.
func WithRoot(dir string) Option {
	return func(r *Renderer) {
		r.cfg.root = dir
	}
}

// WithViewportWidth sets the capture width in CSS pixels.
// Panics if w <= 0 (programmer error, similar to time.NewTicker).
func WithViewportWidth(w int) Option {
	if w <= 0 {
		panic("html2png: WithViewportWidth must be positive")
	}
	return func(r *Renderer) {
		r.cfg.viewportWidth = w
	}
}

// WithDeviceScale sets the device scale factor. Higher values produce
// sharper output at the cost of larger images.
// Panics if scale <= 0.
func WithDeviceScale(scale float64) Option {
	if scale <= 0 {
		panic("html2png: WithDeviceScale must be positive")
	}
	return func(r *Renderer) {
		r.cfg.deviceScale = scale
	}
}

// WithPreferredPort requests a specific port for the content server.
// Zero (the default) auto-assigns a free port. If the preferred port is
// already bound, Render fails with ErrPortInUse rather than silently
// picking another.
// Panics if port is outside 0-65535.
func WithPreferredPort(port int) Option {
	if port < 0 || port > 65535 {
		panic("html2png: WithPreferredPort must be in 0-65535")
	}
	return func(r *Renderer) {
		r.cfg.preferredPort = port
	}
}

// WithBrowserBin sets the Chrome/Chromium binary to launch, overriding
// the ROD_BROWSER_BIN environment variable.
func WithBrowserBin(path string) Option {
	return func(r *Renderer) {
		r.cfg.browserBin = path
	}
}

// WithNavigationTimeout bounds the structural DOM-ready wait after
// navigation. Expiry is fatal for the call.
// Panics if d <= 0.
func WithNavigationTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("html2png: WithNavigationTimeout must be positive")
	}
	return func(r *Renderer) {
		r.cfg.navigationTimeout = d
	}
}

// WithNetworkIdleTimeout bounds the separate wait for in-flight network
// activity to quiesce. Expiry is a recoverable warning, not an error, so
// a slow auxiliary asset cannot block the whole pipeline.
// Panics if d <= 0.
func WithNetworkIdleTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("html2png: WithNetworkIdleTimeout must be positive")
	}
	return func(r *Renderer) {
		r.cfg.networkIdleTimeout = d
	}
}

// WithReadinessPolicy replaces the detector timing policy.
// Panics if any field is negative.
func WithReadinessPolicy(p ReadinessPolicy) Option {
	if p.InitialSettle < 0 || p.EscalationSettle < 0 || p.ContainerTimeout < 0 ||
		p.LibraryTimeout < 0 || p.FinalSettle < 0 || p.ImageWait < 0 {
		panic("html2png: WithReadinessPolicy durations must not be negative")
	}
	return func(r *Renderer) {
		r.cfg.policy = p
	}
}

// WithLogger sets the logger for per-phase debug output. The default is
// a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.cfg.logger = l
		}
	}
}
