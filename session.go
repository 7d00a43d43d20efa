package html2png

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"go.uber.org/zap"

	"github.com/alnah/go-html2png/internal/process"
)

// domStablePoll is the quiet interval WaitStable requires before it
// considers the page settled.
const domStablePoll = time.Second

// sessionConfig holds the browser and navigation parameters for one
// Session.
type sessionConfig struct {
	width              int
	height             int
	deviceScale        float64
	browserBin         string
	navigationTimeout  time.Duration
	networkIdleTimeout time.Duration
}

// Session owns one browser process and one page. It is created per
// render call and must be Closed on every exit path; Close releases the
// browser process even if a prior operation failed.
type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	cfg      sessionConfig
	log      *zap.Logger
	closed   bool
}

// openSession launches headless Chrome and opens a blank page sized to
// the configured viewport. Rod downloads a managed Chromium on first run
// if no binary is configured.
func openSession(ctx context.Context, cfg sessionConfig, log *zap.Logger) (*Session, error) {
	l := launcher.New().Headless(true)

	// Use pre-installed browser if specified (Docker/containerized environments)
	bin := cfg.browserBin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	s := &Session{launcher: l, cfg: cfg, log: log}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		s.reapBrowserProcess()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	s.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	s.page = page

	if err := s.setViewport(cfg.width, cfg.height); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	log.Debug("browser session opened",
		zap.Int("viewport_width", cfg.width),
		zap.Int("viewport_height", cfg.height),
		zap.Float64("device_scale", cfg.deviceScale))
	return s, nil
}

// navigate loads url and waits for readiness in two stages: structural
// DOM ready first (fatal on timeout), then network/DOM stability under
// its own longer budget. A stability timeout is returned as a warning so
// one slow auxiliary asset cannot sink the pipeline.
func (s *Session) navigate(ctx context.Context, url string) (warning string, err error) {
	page := s.page.Context(ctx)

	if err := page.Timeout(s.cfg.navigationTimeout).Navigate(url); err != nil {
		return "", fmt.Errorf("%w: navigating to %s: %v", ErrNavigationTimeout, url, err)
	}
	if err := page.Timeout(s.cfg.navigationTimeout).WaitLoad(); err != nil {
		return "", fmt.Errorf("%w: waiting for load of %s: %v", ErrNavigationTimeout, url, err)
	}

	if err := page.Timeout(s.cfg.networkIdleTimeout).WaitStable(domStablePoll); err != nil {
		return fmt.Sprintf("network activity did not settle within %s", s.cfg.networkIdleTimeout), nil
	}
	return "", nil
}

// eval runs a JS function literal on the page and returns its value.
func (s *Session) eval(ctx context.Context, js string) (gson.JSON, error) {
	res, err := s.page.Context(ctx).Evaluate(rod.Eval(js))
	if err != nil {
		return gson.New(nil), fmt.Errorf("%w: %v", ErrEvaluation, err)
	}
	return res.Value, nil
}

// waitFunc polls a JS function literal until it returns a truthy value or
// timeout elapses.
func (s *Session) waitFunc(ctx context.Context, js string, timeout time.Duration) error {
	if err := s.page.Context(ctx).Timeout(timeout).Wait(rod.Eval(js)); err != nil {
		return fmt.Errorf("%w: %v", ErrEvaluation, err)
	}
	return nil
}

// waitSelector blocks until an element matching selector is attached or
// timeout elapses.
func (s *Session) waitSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if _, err := s.page.Context(ctx).Timeout(timeout).Element(selector); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrSelectorTimeout, selector, err)
	}
	return nil
}

// waitVisible blocks until an element matching selector is visible.
func (s *Session) waitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	el, err := s.page.Context(ctx).Timeout(timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrSelectorTimeout, selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrSelectorTimeout, selector, err)
	}
	return nil
}

// setViewport resizes the page to exact CSS-pixel dimensions.
func (s *Session) setViewport(width, height int) error {
	return (&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: s.cfg.deviceScale,
		Mobile:            false,
	}).Call(s.page)
}

// scrollHeight measures the document's full rendered height.
func (s *Session) scrollHeight(ctx context.Context) (int, error) {
	v, err := s.eval(ctx, `() => document.documentElement.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return v.Int(), nil
}

// screenshotFullPage captures the entire scrollable page as PNG bytes.
func (s *Session) screenshotFullPage(ctx context.Context) ([]byte, error) {
	data, err := s.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	return data, nil
}

// Close releases the page, the browser connection, and the browser
// process. It is the terminal transition for a Session: safe after
// partial failures and idempotent.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.page != nil {
		_ = s.page.Close()
		s.page = nil
	}

	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}

	s.reapBrowserProcess()
	s.log.Debug("browser session closed")
	return err
}

// reapBrowserProcess force-kills the launched browser tree. Chrome can
// survive a dropped DevTools connection; the process-group kill is the
// backstop for the no-leaked-browser guarantee.
func (s *Session) reapBrowserProcess() {
	if s.launcher == nil {
		return
	}
	if pid := s.launcher.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	s.launcher.Kill()
	s.launcher = nil
}
