package html2png

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Chart-library conventions this pipeline understands. Vega-Embed exposes
// a global symbol once loaded and wraps every chart in a .vega-embed
// container; a rendered chart holds a canvas, an svg, or a .marks subtree
// depending on the renderer backend.
const (
	jsDetectChartLibrary = `() => typeof vegaEmbed !== 'undefined' || !!document.querySelector('script[src*="vega-embed"]')`
	jsChartLibraryReady  = `() => typeof vegaEmbed !== 'undefined'`

	chartContainerSelector = ".vega-embed"
)

// jsInstallRenderHelpers installs the status and force-render routines
// used by the readiness detector. Status reports the three alternative
// completion signals per container; force-render resizes tracked chart
// views and falls back to a window resize event for untracked ones.
const jsInstallRenderHelpers = `() => {
	window.__chartRenderStatus = function() {
		const containers = document.querySelectorAll('.vega-embed');
		let allRendered = true;
		const details = [];

		containers.forEach((container, i) => {
			const hasCanvas = !!container.querySelector('canvas');
			const hasSVG = !!container.querySelector('svg');
			const hasMarks = !!container.querySelector('.marks');

			details.push({
				id: container.id || ('container-' + i),
				hasCanvas: hasCanvas,
				hasSVG: hasSVG,
				hasMarks: hasMarks
			});

			if (!(hasCanvas || hasSVG || hasMarks)) {
				allRendered = false;
			}
		});

		return { allRendered: allRendered, count: containers.length, details: details };
	};

	window.__forceChartRender = function() {
		if (window.chartInstances) {
			Object.values(window.chartInstances).forEach(function(chart) {
				if (chart && chart.view) {
					try {
						chart.view.resize().run();
					} catch (e) {
						// chart may be mid-update; the resize event below still fires
					}
				}
			});
		}

		document.querySelectorAll('.vega-embed').forEach(function(container) {
			if (!container.querySelector('canvas')) {
				window.dispatchEvent(new Event('resize'));
			}
		});

		return true;
	};

	return true;
}`

const (
	jsChartRenderStatus = `() => window.__chartRenderStatus()`
	jsForceChartRender  = `() => window.__forceChartRender()`
)

// renderStatus is one poll of the page's completion signals.
type renderStatus struct {
	AllRendered bool
	Count       int
	Details     []ContainerStatus
}

func (st renderStatus) rendered() int {
	n := 0
	for _, d := range st.Details {
		if d.Rendered() {
			n++
		}
	}
	return n
}

// chartProbe is the narrow page surface the detector polls. Session
// implements it; tests substitute a scripted fake so the state machine
// runs without a browser.
type chartProbe interface {
	DetectChartLibrary(ctx context.Context) (bool, error)
	WaitChartLibrary(ctx context.Context, timeout time.Duration) error
	WaitChartContainers(ctx context.Context, timeout time.Duration) error
	InstallRenderHelpers(ctx context.Context) error
	ChartRenderStatus(ctx context.Context) (renderStatus, error)
	ForceChartRender(ctx context.Context) error
}

// Compile-time interface check.
var _ chartProbe = (*Session)(nil)

// DetectChartLibrary reports whether the page references the charting
// library by global symbol or script tag.
func (s *Session) DetectChartLibrary(ctx context.Context) (bool, error) {
	v, err := s.eval(ctx, jsDetectChartLibrary)
	if err != nil {
		return false, err
	}
	return v.Bool(), nil
}

// WaitChartLibrary blocks until the library global is defined.
func (s *Session) WaitChartLibrary(ctx context.Context, timeout time.Duration) error {
	return s.waitFunc(ctx, jsChartLibraryReady, timeout)
}

// WaitChartContainers blocks until at least one chart container is
// attached to the DOM.
func (s *Session) WaitChartContainers(ctx context.Context, timeout time.Duration) error {
	return s.waitSelector(ctx, chartContainerSelector, timeout)
}

// InstallRenderHelpers injects the status and force-render routines.
func (s *Session) InstallRenderHelpers(ctx context.Context) error {
	_, err := s.eval(ctx, jsInstallRenderHelpers)
	return err
}

// ChartRenderStatus polls the per-container completion signals.
func (s *Session) ChartRenderStatus(ctx context.Context) (renderStatus, error) {
	v, err := s.eval(ctx, jsChartRenderStatus)
	if err != nil {
		return renderStatus{}, err
	}

	st := renderStatus{
		AllRendered: v.Get("allRendered").Bool(),
		Count:       v.Get("count").Int(),
	}
	for _, d := range v.Get("details").Arr() {
		st.Details = append(st.Details, ContainerStatus{
			ID:        d.Get("id").Str(),
			HasCanvas: d.Get("hasCanvas").Bool(),
			HasSVG:    d.Get("hasSVG").Bool(),
			HasMarks:  d.Get("hasMarks").Bool(),
		})
	}
	return st, nil
}

// ForceChartRender triggers the one-shot redraw intervention.
func (s *Session) ForceChartRender(ctx context.Context) error {
	_, err := s.eval(ctx, jsForceChartRender)
	return err
}

// detector drives the readiness state machine over a chartProbe. The
// escalation step runs at most once per render attempt: the single
// straight-line pass through run makes a second escalation structurally
// impossible.
type detector struct {
	probe  chartProbe
	policy ReadinessPolicy
	sleep  func(ctx context.Context, d time.Duration) error
	log    *zap.Logger
}

func newDetector(probe chartProbe, policy ReadinessPolicy, log *zap.Logger) *detector {
	return &detector{
		probe:  probe,
		policy: policy,
		sleep:  sleepCtx,
		log:    log,
	}
}

// run polls until the page is fully rendered or the escalation budget is
// exhausted. Probe failures and timeouts degrade the report rather than
// erroring; the only returned error is context cancellation, which aborts
// the pipeline.
func (d *detector) run(ctx context.Context) (ReadinessReport, error) {
	rep := ReadinessReport{State: ReadinessUnknown}

	hasLib, err := d.probe.DetectChartLibrary(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rep, ctxErr
		}
		d.log.Warn("chart library probe failed", zap.Error(err))
	}
	if !hasLib {
		// The document never intended to render a chart. Nothing to wait
		// for; capture proceeds immediately.
		rep.State = ReadinessFullyRendered
		d.log.Debug("no chart library referenced, skipping readiness polling")
		return rep, nil
	}
	rep.HasLibrary = true
	rep.State = ReadinessLibraryDetected

	if err := d.probe.WaitChartLibrary(ctx, d.policy.LibraryTimeout); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rep, ctxErr
		}
		d.log.Warn("chart library global never appeared", zap.Error(err))
		rep.State = ReadinessTimedOut
		return rep, nil
	}

	if err := d.probe.WaitChartContainers(ctx, d.policy.ContainerTimeout); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rep, ctxErr
		}
		// The page may register containers late or not at all; the status
		// check below settles the question either way.
		d.log.Debug("chart container wait expired", zap.Error(err))
	} else {
		rep.State = ReadinessContainersFound
	}

	if err := d.probe.InstallRenderHelpers(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rep, ctxErr
		}
		d.log.Warn("installing render helpers failed", zap.Error(err))
		rep.State = ReadinessTimedOut
		return rep, nil
	}

	if err := d.sleep(ctx, d.policy.InitialSettle); err != nil {
		return rep, err
	}

	st, err := d.probe.ChartRenderStatus(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rep, ctxErr
		}
		d.log.Warn("render status check failed", zap.Error(err))
		rep.State = ReadinessTimedOut
		return rep, nil
	}
	d.apply(&rep, st)
	d.logStatus("initial render status", st)

	if st.Count == 0 || st.AllRendered {
		rep.State = ReadinessFullyRendered
		return rep, nil
	}
	if st.rendered() > 0 {
		rep.State = ReadinessPartiallyRendered
	}

	// Escalate exactly once: force a redraw, allow the longer settle, and
	// re-check a single time.
	rep.Escalated = true
	d.log.Debug("escalating: forcing chart redraw",
		zap.Int("containers", st.Count),
		zap.Int("rendered", st.rendered()))
	if err := d.probe.ForceChartRender(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rep, ctxErr
		}
		d.log.Warn("force render failed", zap.Error(err))
	}

	if err := d.sleep(ctx, d.policy.EscalationSettle); err != nil {
		return rep, err
	}

	st, err = d.probe.ChartRenderStatus(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rep, ctxErr
		}
		d.log.Warn("post-escalation status check failed", zap.Error(err))
		rep.State = ReadinessTimedOut
		return rep, nil
	}
	d.apply(&rep, st)
	d.logStatus("post-escalation render status", st)

	if st.AllRendered {
		rep.State = ReadinessFullyRendered
	} else {
		rep.State = ReadinessTimedOut
	}
	return rep, nil
}

// apply copies a poll result into the report.
func (d *detector) apply(rep *ReadinessReport, st renderStatus) {
	rep.Containers = st.Count
	rep.Rendered = st.rendered()
	rep.Details = st.Details
}

// logStatus emits the raw readiness snapshot for diagnosis.
func (d *detector) logStatus(msg string, st renderStatus) {
	fields := []zap.Field{
		zap.Bool("all_rendered", st.AllRendered),
		zap.Int("containers", st.Count),
	}
	for _, c := range st.Details {
		fields = append(fields, zap.String("container_"+c.ID,
			statusSummary(c)))
	}
	d.log.Debug(msg, fields...)
}

func statusSummary(c ContainerStatus) string {
	s := "pending"
	switch {
	case c.HasCanvas:
		s = "canvas"
	case c.HasSVG:
		s = "svg"
	case c.HasMarks:
		s = "marks"
	}
	return s
}

// sleepCtx sleeps for d or until ctx is canceled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
