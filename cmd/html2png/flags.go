package main

import (
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// cliFlags holds all flags for the html2png command.
type cliFlags struct {
	output  string
	root    string
	config  string
	workers int

	width      int
	scale      float64
	port       int
	browserBin string

	settle           time.Duration
	escalationSettle time.Duration
	containerTimeout time.Duration
	libraryTimeout   time.Duration
	finalSettle      time.Duration
	imageWait        time.Duration
	navTimeout       time.Duration

	quiet   bool
	verbose bool
	version bool
}

// newFlagSet registers all flags on a fresh FlagSet. Defaults are zero
// sentinels; merge applies them only when explicitly changed, so config
// file values survive unset flags.
func newFlagSet(f *cliFlags, errOut io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("html2png", flag.ContinueOnError)
	fs.SetOutput(errOut)

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.root, "root", "r", "", "served root directory (default: document's directory)")
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel renders (0 = auto)")

	// Capture flags
	fs.IntVar(&f.width, "width", 0, "viewport width in CSS pixels (default: 1600)")
	fs.Float64Var(&f.scale, "scale", 0, "device scale factor (default: 1.5)")
	fs.IntVar(&f.port, "port", 0, "preferred server port (0 = auto-assign)")
	fs.StringVar(&f.browserBin, "browser-bin", "", "Chrome/Chromium binary path")

	// Timing flags
	fs.DurationVar(&f.settle, "settle", 0, "wait after load before the first render check (default: 3s)")
	fs.DurationVar(&f.escalationSettle, "escalation-settle", 0, "wait after a forced redraw (default: 8s)")
	fs.DurationVar(&f.containerTimeout, "container-timeout", 0, "max wait for chart containers (default: 10s)")
	fs.DurationVar(&f.libraryTimeout, "library-timeout", 0, "max wait for the chart library (default: 30s)")
	fs.DurationVar(&f.finalSettle, "final-settle", 0, "quiet period before capture (default: 5s)")
	fs.DurationVar(&f.imageWait, "image-wait", 0, "max wait for embedded images (default: 30s)")
	fs.DurationVar(&f.navTimeout, "nav-timeout", 0, "page navigation timeout (default: 60s)")

	// Mode flags
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed phase timing")
	fs.BoolVar(&f.version, "version", false, "show version and exit")

	return fs
}

// parseFlags parses command-line flags and returns positional args.
func parseFlags(args []string, errOut io.Writer) (*cliFlags, *flag.FlagSet, []string, error) {
	f := &cliFlags{}
	fs := newFlagSet(f, errOut)
	fs.Usage = func() { printUsage(errOut) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, err
	}
	return f, fs, fs.Args(), nil
}
