package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	html2png "github.com/alnah/go-html2png"
)

// dirPermissions is used when creating output directories.
const dirPermissions = 0o750 // rwxr-x---

// CaptureOutcome holds the result of a single capture.
type CaptureOutcome struct {
	InputPath  string
	OutputPath string
	Warning    string
	Err        error
	Duration   time.Duration
}

// resolveWorkers maps the user's worker count to an effective
// concurrency: 0 means one browser per CPU, capped at 4 so a large
// machine does not fork a Chrome per core.
func resolveWorkers(n int) int {
	if n > 0 {
		return n
	}
	w := runtime.GOMAXPROCS(0)
	if w > 4 {
		w = 4
	}
	if w < 1 {
		w = 1
	}
	return w
}

// captureBatch renders files concurrently, each on its own server and
// browser session. Outcomes are positional; a canceled context marks the
// remaining files instead of dropping them.
func captureBatch(ctx context.Context, r *html2png.Renderer, files []FileToCapture, workers int) []CaptureOutcome {
	if len(files) == 0 {
		return nil
	}

	concurrency := resolveWorkers(workers)
	if concurrency > len(files) {
		concurrency = len(files)
	}

	outcomes := make([]CaptureOutcome, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			outcomes[i] = captureFile(ctx, r, f)
			// Individual failures are reported per file, not propagated,
			// so one bad document cannot cancel its siblings.
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}

// captureFile snapshots a single document and returns the outcome.
func captureFile(ctx context.Context, r *html2png.Renderer, f FileToCapture) CaptureOutcome {
	start := time.Now()
	outcome := CaptureOutcome{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	if err := ctx.Err(); err != nil {
		outcome.Err = err
		return outcome
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		outcome.Err = fmt.Errorf("creating output directory: %w", err)
		outcome.Duration = time.Since(start)
		return outcome
	}

	result, err := r.Render(ctx, html2png.Input{
		DocumentPath: f.InputPath,
		OutputPath:   f.OutputPath,
	})
	outcome.Duration = time.Since(start)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.OutputPath = result.OutputPath
	outcome.Warning = result.Warning
	return outcome
}
