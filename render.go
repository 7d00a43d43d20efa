package html2png

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alnah/go-html2png/internal/fileutil"
)

// Renderer orchestrates the snapshot pipeline. It holds configuration
// only; every Render call acquires and releases its own content server
// and browser session, so a Renderer is safe for concurrent use.
type Renderer struct {
	cfg rendererConfig
	log *zap.Logger
}

// NewRenderer creates a Renderer with default configuration. Use options
// to customize behavior (e.g., WithRoot, WithViewportWidth, WithLogger).
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		cfg: rendererConfig{
			viewportWidth:      defaultViewportWidth,
			deviceScale:        defaultDeviceScale,
			navigationTimeout:  defaultNavigationTimeout,
			networkIdleTimeout: defaultNetworkIdleTimeout,
			policy:             DefaultReadinessPolicy(),
		},
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.cfg.logger == nil {
		r.cfg.logger = zap.NewNop()
	}
	r.log = r.cfg.logger
	return r
}

// target is the resolved set of paths for one render.
type target struct {
	docPath    string // absolute document path
	root       string // absolute served root
	outputPath string // absolute image destination
}

// Render snapshots one HTML document to a PNG. The path-safety check
// runs before any server or browser resource is acquired; acquisition
// order is server then session, and deferred release runs in strict
// reverse on every exit path.
//
// A page whose charts never converge does not fail the call: the capture
// is taken best-effort and Result.Warning reports the timed-out
// readiness state.
func (r *Renderer) Render(ctx context.Context, input Input) (*Result, error) {
	runID := uuid.NewString()
	log := r.log.With(
		zap.String("run_id", runID),
		zap.String("document", input.DocumentPath))

	tgt, err := r.resolveTarget(input)
	if err != nil {
		return nil, err
	}
	log.Debug("target resolved",
		zap.String("root", tgt.root),
		zap.String("output", tgt.outputPath))

	phase := time.Now()
	server, err := StartContentServer(tgt.root, r.cfg.preferredPort, log)
	if err != nil {
		return nil, err
	}
	defer func() {
		if sdErr := server.Shutdown(context.Background()); sdErr != nil {
			log.Warn("server shutdown", zap.Error(sdErr))
		}
	}()
	log.Debug("phase complete", zap.String("phase", "server_start"), zap.Duration("took", time.Since(phase)))

	if err := server.Probe(ctx); err != nil {
		return nil, err
	}

	url, err := server.DocumentURL(tgt.docPath)
	if err != nil {
		return nil, err
	}

	phase = time.Now()
	session, err := openSession(ctx, sessionConfig{
		width:              r.cfg.viewportWidth,
		height:             defaultViewportHeight,
		deviceScale:        r.cfg.deviceScale,
		browserBin:         r.cfg.browserBin,
		navigationTimeout:  r.cfg.navigationTimeout,
		networkIdleTimeout: r.cfg.networkIdleTimeout,
	}, log)
	if err != nil {
		return nil, err
	}
	defer func() {
		if clErr := session.Close(); clErr != nil {
			log.Warn("session close", zap.Error(clErr))
		}
	}()
	log.Debug("phase complete", zap.String("phase", "session_open"), zap.Duration("took", time.Since(phase)))

	phase = time.Now()
	navWarning, err := session.navigate(ctx, url)
	if err != nil {
		return nil, err
	}
	if navWarning != "" {
		log.Warn("navigation degraded", zap.String("warning", navWarning))
	}
	log.Debug("phase complete", zap.String("phase", "navigate"), zap.Duration("took", time.Since(phase)))

	phase = time.Now()
	report, err := newDetector(session, r.cfg.policy, log).run(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("phase complete",
		zap.String("phase", "readiness"),
		zap.Duration("took", time.Since(phase)),
		zap.Stringer("state", report.State))

	r.awaitImages(ctx, session, log)
	if err := sleepCtx(ctx, r.cfg.policy.FinalSettle); err != nil {
		return nil, err
	}

	phase = time.Now()
	shot, err := (&capturer{session: session, width: r.cfg.viewportWidth, log: log}).capture(ctx, tgt.outputPath)
	if err != nil {
		return nil, err
	}
	log.Debug("phase complete", zap.String("phase", "capture"), zap.Duration("took", time.Since(phase)))

	result := &Result{
		OutputPath:     shot.OutputPath,
		ViewportWidth:  shot.ViewportWidth,
		ViewportHeight: shot.ViewportHeight,
		RunID:          runID,
		Readiness:      report,
	}
	if report.State == ReadinessTimedOut {
		result.Warning = fmt.Sprintf(
			"chart rendering did not converge (%d of %d containers rendered); snapshot is best-effort",
			report.Rendered, report.Containers)
		log.Warn("degraded capture", zap.String("warning", result.Warning))
	}
	return result, nil
}

// resolveTarget validates the input and produces absolute paths. Every
// rejection here happens before a single socket or process exists.
func (r *Renderer) resolveTarget(input Input) (target, error) {
	if input.DocumentPath == "" {
		return target{}, ErrEmptyDocumentPath
	}

	docPath, err := filepath.Abs(input.DocumentPath)
	if err != nil {
		return target{}, fmt.Errorf("%w: %v", ErrDocumentNotFound, err)
	}
	if !fileutil.FileExists(docPath) {
		return target{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, docPath)
	}

	root := input.Root
	if root == "" {
		root = r.cfg.root
	}
	if root == "" {
		root = filepath.Dir(docPath)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return target{}, fmt.Errorf("%w: %v", ErrServedRootInvalid, err)
	}
	if !fileutil.DirExists(absRoot) {
		return target{}, fmt.Errorf("%w: %s", ErrServedRootInvalid, absRoot)
	}

	if _, ok := fileutil.RelWithinRoot(absRoot, docPath); !ok {
		return target{}, fmt.Errorf("%w: %s not under %s", ErrDocumentOutsideRoot, docPath, absRoot)
	}

	outputPath := input.OutputPath
	if outputPath == "" {
		outputPath = deriveOutputPath(docPath)
	}
	absOutput, err := filepath.Abs(outputPath)
	if err != nil {
		return target{}, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	if err := validateOutputPath(absOutput); err != nil {
		return target{}, err
	}

	return target{docPath: docPath, root: absRoot, outputPath: absOutput}, nil
}

// awaitImages gives embedded <img> elements a bounded chance to finish
// loading before capture. Best-effort only: a missing or slow image never
// fails the pipeline.
func (r *Renderer) awaitImages(ctx context.Context, session *Session, log *zap.Logger) {
	if r.cfg.policy.ImageWait <= 0 {
		return
	}

	has, err := session.eval(ctx, `() => !!document.querySelector('img')`)
	if err != nil || !has.Bool() {
		return
	}
	if err := session.waitVisible(ctx, "img", r.cfg.policy.ImageWait); err != nil {
		log.Debug("image wait expired", zap.Error(err))
	}
}
