package html2png

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/alnah/go-html2png/internal/fileutil"
)

// CaptureResult describes a written screenshot.
type CaptureResult struct {
	OutputPath     string
	ViewportWidth  int
	ViewportHeight int
}

// capturer extracts a full-page raster image from a settled session.
type capturer struct {
	session *Session
	width   int
	log     *zap.Logger
}

// capture re-measures the document's full scroll height, resizes the
// viewport to exactly that extent, and writes a full-page PNG to
// outputPath. The re-measure must happen after readiness settles because
// rendering changes document height.
func (c *capturer) capture(ctx context.Context, outputPath string) (CaptureResult, error) {
	height, err := c.session.scrollHeight(ctx)
	if err != nil {
		return CaptureResult{}, fmt.Errorf("%w: measuring document height: %v", ErrCaptureFailed, err)
	}
	if height <= 0 {
		height = defaultViewportHeight
	}

	if err := c.session.setViewport(c.width, height); err != nil {
		return CaptureResult{}, fmt.Errorf("%w: resizing viewport: %v", ErrCaptureFailed, err)
	}

	data, err := c.session.screenshotFullPage(ctx)
	if err != nil {
		return CaptureResult{}, err
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return CaptureResult{}, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	c.log.Debug("capture written",
		zap.String("output", outputPath),
		zap.Int("width", c.width),
		zap.Int("height", height),
		zap.Int("bytes", len(data)))

	return CaptureResult{
		OutputPath:     outputPath,
		ViewportWidth:  c.width,
		ViewportHeight: height,
	}, nil
}

// deriveOutputPath maps a document path to its default image path: same
// directory, extension swapped to .png.
func deriveOutputPath(docPath string) string {
	return fileutil.ReplaceExt(docPath, ".png")
}

// validateOutputPath checks the parent directory exists before any
// browser work starts, so a doomed capture fails fast.
func validateOutputPath(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if !fileutil.DirExists(dir) {
		return fmt.Errorf("%w: output directory does not exist: %s", ErrCaptureFailed, dir)
	}
	return nil
}
