package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	html2png "github.com/alnah/go-html2png"
	"github.com/alnah/go-html2png/internal/config"
)

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	t.Run("changed flags win over config", func(t *testing.T) {
		f, fs, _, err := parseFlags([]string{
			"--port", "9000",
			"--settle", "1s",
			"report.html",
		}, io.Discard)
		if err != nil {
			t.Fatalf("parseFlags() error = %v", err)
		}

		cfg := &config.Config{
			Server: config.ServerConfig{Port: 8118, Root: "/srv"},
			Timing: config.TimingConfig{InitialSettle: 5 * time.Second},
		}
		mergeFlags(f, fs, cfg)

		if cfg.Server.Port != 9000 {
			t.Errorf("Server.Port = %d, want flag value 9000", cfg.Server.Port)
		}
		if cfg.Timing.InitialSettle != time.Second {
			t.Errorf("InitialSettle = %v, want flag value 1s", cfg.Timing.InitialSettle)
		}
		if cfg.Server.Root != "/srv" {
			t.Errorf("Server.Root = %q, want config value /srv (flag unset)", cfg.Server.Root)
		}
	})

	t.Run("unset flags leave config alone", func(t *testing.T) {
		f, fs, _, err := parseFlags([]string{"report.html"}, io.Discard)
		if err != nil {
			t.Fatalf("parseFlags() error = %v", err)
		}

		cfg := &config.Config{
			Server:   config.ServerConfig{Port: 8118},
			Viewport: config.ViewportConfig{Width: 1920, Scale: 2},
			Workers:  3,
		}
		mergeFlags(f, fs, cfg)

		if cfg.Server.Port != 8118 || cfg.Viewport.Width != 1920 || cfg.Workers != 3 {
			t.Errorf("config mutated by unset flags: %+v", cfg)
		}
	})
}

func TestResolveInputPath(t *testing.T) {
	t.Parallel()

	t.Run("positional argument wins", func(t *testing.T) {
		cfg := &config.Config{Input: config.InputConfig{DefaultDir: "/fallback"}}
		got, err := resolveInputPath([]string{"report.html"}, cfg)
		if err != nil {
			t.Fatalf("resolveInputPath() error = %v", err)
		}
		if got != "report.html" {
			t.Errorf("input = %q, want report.html", got)
		}
	})

	t.Run("config default dir", func(t *testing.T) {
		cfg := &config.Config{Input: config.InputConfig{DefaultDir: "/fallback"}}
		got, err := resolveInputPath(nil, cfg)
		if err != nil {
			t.Fatalf("resolveInputPath() error = %v", err)
		}
		if got != "/fallback" {
			t.Errorf("input = %q, want /fallback", got)
		}
	})

	t.Run("nothing specified", func(t *testing.T) {
		_, err := resolveInputPath(nil, config.DefaultConfig())
		if !errors.Is(err, ErrNoInput) {
			t.Errorf("resolveInputPath() error = %v, want ErrNoInput", err)
		}
	})
}

func TestBuildOptions(t *testing.T) {
	t.Parallel()

	// Zero config must not trigger any option validation panics; the
	// renderer keeps its defaults.
	t.Run("zero config", func(t *testing.T) {
		r := html2png.NewRenderer(buildOptions(config.DefaultConfig(), nil)...)
		if r == nil {
			t.Fatal("NewRenderer returned nil")
		}
	})

	t.Run("full config", func(t *testing.T) {
		cfg := &config.Config{
			Server:   config.ServerConfig{Root: "/srv", Port: 8118},
			Viewport: config.ViewportConfig{Width: 1920, Scale: 2},
			Browser:  config.BrowserConfig{Bin: "/usr/bin/chromium"},
			Timing: config.TimingConfig{
				InitialSettle:    time.Second,
				EscalationSettle: 2 * time.Second,
				Navigation:       90 * time.Second,
			},
		}
		r := html2png.NewRenderer(buildOptions(cfg, nil)...)
		if r == nil {
			t.Fatal("NewRenderer returned nil")
		}
	})
}

func TestReportOutcomes(t *testing.T) {
	t.Parallel()

	ok := CaptureOutcome{InputPath: "a.html", OutputPath: "a.png", Duration: time.Second}
	warned := CaptureOutcome{InputPath: "b.html", OutputPath: "b.png", Warning: "charts did not converge"}
	failed := CaptureOutcome{InputPath: "c.html", Err: html2png.ErrDocumentNotFound}

	t.Run("all ok", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		err := reportOutcomes([]CaptureOutcome{ok}, 0, false, &stdout, &stderr)
		if err != nil {
			t.Fatalf("reportOutcomes() error = %v", err)
		}
		if !strings.Contains(stdout.String(), "OK") || !strings.Contains(stdout.String(), "a.png") {
			t.Errorf("stdout = %q, want OK line naming the output", stdout.String())
		}
	})

	t.Run("degraded outcome surfaces sentinel", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		err := reportOutcomes([]CaptureOutcome{ok, warned}, 0, false, &stdout, &stderr)
		if !errors.Is(err, ErrDegradedCapture) {
			t.Fatalf("reportOutcomes() error = %v, want ErrDegradedCapture", err)
		}
		if !strings.Contains(stdout.String(), "WARN") {
			t.Errorf("stdout = %q, want WARN line", stdout.String())
		}
		if !strings.Contains(stderr.String(), "charts did not converge") {
			t.Errorf("stderr = %q, want the warning text", stderr.String())
		}
	})

	t.Run("failure dominates degradation", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		err := reportOutcomes([]CaptureOutcome{warned, failed}, 0, false, &stdout, &stderr)
		if err == nil || errors.Is(err, ErrDegradedCapture) {
			t.Fatalf("reportOutcomes() error = %v, want hard failure", err)
		}
		if !errors.Is(err, html2png.ErrDocumentNotFound) {
			t.Errorf("error = %v, want wrapped ErrDocumentNotFound", err)
		}
		if !strings.Contains(stderr.String(), "FAIL") {
			t.Errorf("stderr = %q, want FAIL line", stderr.String())
		}
	})

	t.Run("quiet suppresses success output", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		if err := reportOutcomes([]CaptureOutcome{ok}, 0, true, &stdout, &stderr); err != nil {
			t.Fatalf("reportOutcomes() error = %v", err)
		}
		if stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty in quiet mode", stdout.String())
		}
	})
}

func TestResolveWorkers(t *testing.T) {
	t.Parallel()

	if got := resolveWorkers(3); got != 3 {
		t.Errorf("resolveWorkers(3) = %d, want 3", got)
	}
	if got := resolveWorkers(0); got < 1 || got > 4 {
		t.Errorf("resolveWorkers(0) = %d, want between 1 and 4", got)
	}
}

func TestRun_Version(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"--version"}, &stdout, &stderr); err != nil {
		t.Fatalf("run(--version) error = %v", err)
	}
	if !strings.Contains(stdout.String(), Version) {
		t.Errorf("stdout = %q, want version string", stdout.String())
	}
}

func TestRun_NoInput(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), nil, &stdout, &stderr)
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("run() error = %v, want ErrNoInput", err)
	}
}
