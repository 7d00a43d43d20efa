package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	html2png "github.com/alnah/go-html2png"
	"github.com/alnah/go-html2png/internal/config"
	"github.com/alnah/go-html2png/internal/hints"
)

// Sentinel errors for CLI outcomes.
var (
	// ErrDegradedCapture marks a run whose captures were all written but
	// at least one chart never converged. The images exist; the exit
	// code signals the degradation.
	ErrDegradedCapture = errors.New("one or more captures are best-effort")

	// ErrBadFlags wraps flag parsing failures.
	ErrBadFlags = errors.New("invalid flags")
)

// run executes the CLI with the given arguments (excluding the program
// name) and writes human output to stdout/stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags, fs, positional, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrBadFlags, err)
	}

	if flags.version {
		fmt.Fprintf(stdout, "html2png %s\n", Version)
		return nil
	}

	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if flags.config != "" {
		cfg, err = config.LoadConfig(flags.config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	mergeFlags(flags, fs, cfg)

	inputPath, err := resolveInputPath(positional, cfg)
	if err != nil {
		return err
	}

	outputDir := flags.output
	if outputDir == "" {
		outputDir = cfg.Output.DefaultDir
	}

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering documents: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: %s", ErrNoDocuments, inputPath)
	}

	log := buildLogger(flags.verbose, stderr)
	defer func() { _ = log.Sync() }()

	r := html2png.NewRenderer(buildOptions(cfg, log)...)

	if !flags.quiet {
		fmt.Fprintf(stderr, "Capturing %d document(s)...\n", len(files))
	}

	outcomes := captureBatch(ctx, r, files, cfg.Workers)
	return reportOutcomes(outcomes, cfg.Server.Port, flags.quiet, stdout, stderr)
}

// mergeFlags applies explicitly set CLI flags over the config (CLI wins).
func mergeFlags(f *cliFlags, fs *flag.FlagSet, cfg *config.Config) {
	if fs.Changed("root") {
		cfg.Server.Root = f.root
	}
	if fs.Changed("port") {
		cfg.Server.Port = f.port
	}
	if fs.Changed("width") {
		cfg.Viewport.Width = f.width
	}
	if fs.Changed("scale") {
		cfg.Viewport.Scale = f.scale
	}
	if fs.Changed("browser-bin") {
		cfg.Browser.Bin = f.browserBin
	}
	if fs.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fs.Changed("settle") {
		cfg.Timing.InitialSettle = f.settle
	}
	if fs.Changed("escalation-settle") {
		cfg.Timing.EscalationSettle = f.escalationSettle
	}
	if fs.Changed("container-timeout") {
		cfg.Timing.ContainerTimeout = f.containerTimeout
	}
	if fs.Changed("library-timeout") {
		cfg.Timing.LibraryTimeout = f.libraryTimeout
	}
	if fs.Changed("final-settle") {
		cfg.Timing.FinalSettle = f.finalSettle
	}
	if fs.Changed("image-wait") {
		cfg.Timing.ImageWait = f.imageWait
	}
	if fs.Changed("nav-timeout") {
		cfg.Timing.Navigation = f.navTimeout
	}
}

// resolveInputPath determines the document or directory to capture.
func resolveInputPath(positional []string, cfg *config.Config) (string, error) {
	if len(positional) > 0 {
		return positional[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// buildOptions maps the merged config to renderer options. Zero values
// keep the library defaults.
func buildOptions(cfg *config.Config, log *zap.Logger) []html2png.Option {
	opts := []html2png.Option{html2png.WithLogger(log)}

	if cfg.Server.Root != "" {
		opts = append(opts, html2png.WithRoot(cfg.Server.Root))
	}
	if cfg.Server.Port != 0 {
		opts = append(opts, html2png.WithPreferredPort(cfg.Server.Port))
	}
	if cfg.Viewport.Width > 0 {
		opts = append(opts, html2png.WithViewportWidth(cfg.Viewport.Width))
	}
	if cfg.Viewport.Scale > 0 {
		opts = append(opts, html2png.WithDeviceScale(cfg.Viewport.Scale))
	}
	if cfg.Browser.Bin != "" {
		opts = append(opts, html2png.WithBrowserBin(cfg.Browser.Bin))
	}
	if cfg.Timing.Navigation > 0 {
		opts = append(opts, html2png.WithNavigationTimeout(cfg.Timing.Navigation))
	}

	policy := html2png.DefaultReadinessPolicy()
	if cfg.Timing.InitialSettle > 0 {
		policy.InitialSettle = cfg.Timing.InitialSettle
	}
	if cfg.Timing.EscalationSettle > 0 {
		policy.EscalationSettle = cfg.Timing.EscalationSettle
	}
	if cfg.Timing.ContainerTimeout > 0 {
		policy.ContainerTimeout = cfg.Timing.ContainerTimeout
	}
	if cfg.Timing.LibraryTimeout > 0 {
		policy.LibraryTimeout = cfg.Timing.LibraryTimeout
	}
	if cfg.Timing.FinalSettle > 0 {
		policy.FinalSettle = cfg.Timing.FinalSettle
	}
	if cfg.Timing.ImageWait > 0 {
		policy.ImageWait = cfg.Timing.ImageWait
	}
	opts = append(opts, html2png.WithReadinessPolicy(policy))

	return opts
}

// reportOutcomes prints per-file results and reduces them to the run's
// overall error: hard failures dominate, otherwise a degraded capture
// surfaces as ErrDegradedCapture.
func reportOutcomes(outcomes []CaptureOutcome, port int, quiet bool, stdout, stderr io.Writer) error {
	var failed, degraded int
	var firstErr error

	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
			if firstErr == nil {
				firstErr = o.Err
			}
			fmt.Fprintf(stderr, "FAIL  %s: %v%s\n", o.InputPath, o.Err, hintFor(o.Err, port))
		case o.Warning != "":
			degraded++
			if !quiet {
				fmt.Fprintf(stdout, "WARN  %s -> %s (%s)\n", o.InputPath, o.OutputPath, formatDuration(o.Duration))
				fmt.Fprintf(stderr, "      %s%s\n", o.Warning, hints.ForReadinessTimeout())
			}
		default:
			if !quiet {
				fmt.Fprintf(stdout, "OK    %s -> %s (%s)\n", o.InputPath, o.OutputPath, formatDuration(o.Duration))
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d captures failed: %w", failed, len(outcomes), firstErr)
	}
	if degraded > 0 {
		return fmt.Errorf("%w: %d of %d", ErrDegradedCapture, degraded, len(outcomes))
	}
	return nil
}

// hintFor appends an actionable hint to known failure classes.
func hintFor(err error, port int) string {
	switch {
	case errors.Is(err, html2png.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, html2png.ErrPortInUse):
		return hints.ForPortInUse(port)
	case errors.Is(err, html2png.ErrDocumentOutsideRoot):
		return hints.ForDocumentOutsideRoot()
	case errors.Is(err, html2png.ErrCaptureFailed):
		return hints.ForOutputDirectory()
	default:
		return ""
	}
}

func formatDuration(d time.Duration) string {
	return d.Round(10 * time.Millisecond).String()
}
