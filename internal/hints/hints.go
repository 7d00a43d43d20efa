// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-html2png/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForPortInUse returns hints for preferred-port conflicts.
func ForPortInUse(port int) string {
	return format(fmt.Sprintf("port %d is taken; use --port 0 for auto-assignment", port))
}

// ForReadinessTimeout returns a hint about raising settle delays for
// data-heavy documents.
func ForReadinessTimeout() string {
	return format("for data-heavy documents, raise --escalation-settle")
}

// ForOutputDirectory returns hints for output path errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForDocumentOutsideRoot returns hints for path-safety rejections.
func ForDocumentOutsideRoot() string {
	return format("the document must live under the served root; adjust --root")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-html2png/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-html2png") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
