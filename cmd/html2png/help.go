package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2png [flags] <document>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Snapshot HTML chart reports to PNG images using headless Chrome.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  document    HTML file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>          Output file or directory")
	fmt.Fprintln(w, "  -r, --root <dir>             Served root directory (default: document's directory)")
	fmt.Fprintln(w, "  -c, --config <name>          Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>            Parallel renders (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Capture:")
	fmt.Fprintln(w, "      --width <n>              Viewport width in CSS pixels (default: 1600)")
	fmt.Fprintln(w, "      --scale <f>              Device scale factor (default: 1.5)")
	fmt.Fprintln(w, "      --port <n>               Preferred server port (0 = auto-assign)")
	fmt.Fprintln(w, "      --browser-bin <path>     Chrome/Chromium binary")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Timing:")
	fmt.Fprintln(w, "      --settle <d>             Wait before the first render check (default: 3s)")
	fmt.Fprintln(w, "      --escalation-settle <d>  Wait after a forced redraw (default: 8s)")
	fmt.Fprintln(w, "      --container-timeout <d>  Max wait for chart containers (default: 10s)")
	fmt.Fprintln(w, "      --library-timeout <d>    Max wait for the chart library (default: 30s)")
	fmt.Fprintln(w, "      --final-settle <d>       Quiet period before capture (default: 5s)")
	fmt.Fprintln(w, "      --image-wait <d>         Max wait for embedded images (default: 30s)")
	fmt.Fprintln(w, "      --nav-timeout <d>        Page navigation timeout (default: 60s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Mode:")
	fmt.Fprintln(w, "  -q, --quiet                  Only show errors")
	fmt.Fprintln(w, "  -v, --verbose                Show detailed phase timing")
	fmt.Fprintln(w, "      --version                Show version and exit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0  success")
	fmt.Fprintln(w, "  1  general error")
	fmt.Fprintln(w, "  2  invalid flags or config")
	fmt.Fprintln(w, "  3  server or port error (retryable)")
	fmt.Fprintln(w, "  4  document or path error")
	fmt.Fprintln(w, "  5  success with degraded captures")
}
