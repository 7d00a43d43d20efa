// Package html2png renders self-contained HTML chart reports to PNG using
// headless Chrome.
//
// The typical input is an HTML document whose charts are drawn
// asynchronously by an embedded Vega-Lite specification. Because the
// rendering library exposes no completion callback, the package serves the
// document (and any sibling data files it fetches) over an ephemeral local
// HTTP server, drives a disposable browser session against it, polls the
// DOM for rendering-completion signals, and captures a full-page
// screenshot once the page has converged.
//
// # Quick Start
//
//	r := html2png.NewRenderer()
//	result, err := r.Render(ctx, html2png.Input{
//	    DocumentPath: "reports/sales.html",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.OutputPath) // reports/sales.png
//
// Every Render call owns an independent server and browser session; both
// are torn down before the call returns, on success and on failure alike.
//
// # Pipeline
//
//  1. Resolve the served root and reject documents outside it.
//  2. Start a loopback HTTP server on a free port and probe its liveness.
//  3. Launch headless Chrome and navigate to the document's local URL.
//  4. Poll for chart readiness, forcing one redraw if signals stall.
//  5. Resize the viewport to the full document height and capture a PNG.
//
// # Readiness and degraded results
//
// A page whose charts never finish rendering does not fail the pipeline.
// The detector gives up after a single forced-redraw escalation, the
// screenshot is taken best-effort, and Result.Warning reports the
// degraded outcome. Inspect Result.Readiness for the per-container signal
// snapshot.
//
// # Configuration
//
// Use functional options to customize behavior:
//
//	r := html2png.NewRenderer(
//	    html2png.WithRoot("/srv/reports"),
//	    html2png.WithViewportWidth(1280),
//	    html2png.WithReadinessPolicy(html2png.ReadinessPolicy{
//	        InitialSettle:    3 * time.Second,
//	        EscalationSettle: 15 * time.Second, // data-heavy documents
//	        ContainerTimeout: 10 * time.Second,
//	        LibraryTimeout:   30 * time.Second,
//	    }),
//	)
//
// # Browser Requirements
//
// Capturing requires Chrome/Chromium. The go-rod library downloads a
// managed Chromium on first run. For containers and CI set
// ROD_NO_SANDBOX=1; use ROD_BROWSER_BIN to point at a custom binary.
package html2png
