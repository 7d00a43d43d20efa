package hints

// Notes:
// - ForBrowserConnect tests cannot use t.Parallel() because they:
//   1. Use t.Setenv() which modifies process environment
//   2. Modify the package-level IsInContainer variable
// These are acceptable gaps: we test observable behavior through environment manipulation.

import (
	"strings"
	"testing"
)

func TestForBrowserConnect_InCI(t *testing.T) {
	// Save and restore IsInContainer (not parallel-safe, see package notes)
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	t.Setenv("CI", "true")
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "")

	hint := ForBrowserConnect()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "ROD_NO_SANDBOX") {
		t.Error("expected ROD_NO_SANDBOX suggestion in CI")
	}
	if !strings.Contains(hint, "ROD_BROWSER_BIN") {
		t.Error("expected ROD_BROWSER_BIN suggestion")
	}
}

func TestForBrowserConnect_SandboxAlreadySet(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	t.Setenv("CI", "")
	t.Setenv("ROD_NO_SANDBOX", "1")
	t.Setenv("ROD_BROWSER_BIN", "")

	hint := ForBrowserConnect()

	if strings.Contains(hint, "ROD_NO_SANDBOX") {
		t.Error("should not suggest ROD_NO_SANDBOX when already set")
	}
}

func TestForPortInUse(t *testing.T) {
	t.Parallel()

	hint := ForPortInUse(8080)

	if !strings.Contains(hint, "8080") {
		t.Errorf("hint %q does not name the port", hint)
	}
	if !strings.Contains(hint, "--port 0") {
		t.Errorf("hint %q does not suggest auto-assignment", hint)
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		paths    []string
		wantUser bool
	}{
		{
			name:     "includes user config path",
			paths:    []string{"render.yaml", "/home/u/.config/go-html2png/render.yaml"},
			wantUser: true,
		},
		{
			name:     "no user config path",
			paths:    []string{"render.yaml"},
			wantUser: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := ForConfigNotFound(tt.paths)

			if !strings.Contains(hint, "--config") {
				t.Errorf("hint %q does not mention --config", hint)
			}
			if got := strings.Contains(hint, ".config/go-html2png"); got != tt.wantUser {
				t.Errorf("user config suggestion present = %v, want %v", got, tt.wantUser)
			}
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	t.Parallel()

	if got := format(""); got != "" {
		t.Errorf("format(empty) = %q, want empty", got)
	}
	if got := formatHints(nil); got != "" {
		t.Errorf("formatHints(nil) = %q, want empty", got)
	}
	if got := formatHints([]string{"a", "b"}); got != "\n  hint: a; b" {
		t.Errorf("formatHints joined = %q", got)
	}
}
