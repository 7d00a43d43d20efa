package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("<html></html>"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()

	t.Run("single file", func(t *testing.T) {
		dir := t.TempDir()
		doc := filepath.Join(dir, "report.html")
		writeFile(t, doc)

		files, err := discoverFiles(doc, "")
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("len(files) = %d, want 1", len(files))
		}
		want := filepath.Join(dir, "report.png")
		if files[0].OutputPath != want {
			t.Errorf("OutputPath = %q, want %q", files[0].OutputPath, want)
		}
	})

	t.Run("wrong extension rejected", func(t *testing.T) {
		doc := filepath.Join(t.TempDir(), "report.txt")
		writeFile(t, doc)

		_, err := discoverFiles(doc, "")
		if !errors.Is(err, ErrInvalidExtension) {
			t.Errorf("discoverFiles() error = %v, want ErrInvalidExtension", err)
		}
	})

	t.Run("directory walked recursively", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.html"))
		writeFile(t, filepath.Join(dir, "sub", "b.htm"))
		writeFile(t, filepath.Join(dir, "sub", "skip.css"))

		files, err := discoverFiles(dir, "")
		if err != nil {
			t.Fatalf("discoverFiles() error = %v", err)
		}
		if len(files) != 2 {
			t.Fatalf("len(files) = %d, want 2 (css skipped)", len(files))
		}
	})

	t.Run("missing input", func(t *testing.T) {
		_, err := discoverFiles(filepath.Join(t.TempDir(), "nope"), "")
		if err == nil {
			t.Fatal("expected error for missing input")
		}
	})
}

func TestResolveOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		inputPath    string
		outputDir    string
		baseInputDir string
		want         string
	}{
		{
			name:      "no output dir keeps document directory",
			inputPath: "/docs/report.html",
			want:      "/docs/report.png",
		},
		{
			name:      "explicit png file",
			inputPath: "/docs/report.html",
			outputDir: "/out/snapshot.png",
			want:      "/out/snapshot.png",
		},
		{
			name:      "output directory",
			inputPath: "/docs/report.html",
			outputDir: "/out",
			want:      "/out/report.png",
		},
		{
			name:         "mirrors nested layout",
			inputPath:    "/docs/q1/report.html",
			outputDir:    "/out",
			baseInputDir: "/docs",
			want:         "/out/q1/report.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveOutputPath(
				filepath.FromSlash(tt.inputPath),
				filepath.FromSlash(tt.outputDir),
				filepath.FromSlash(tt.baseInputDir))
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("resolveOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	if err := validateWorkers(0); err != nil {
		t.Errorf("validateWorkers(0) = %v, want nil", err)
	}
	if err := validateWorkers(8); err != nil {
		t.Errorf("validateWorkers(8) = %v, want nil", err)
	}
	if err := validateWorkers(-1); !errors.Is(err, ErrInvalidWorkerCount) {
		t.Errorf("validateWorkers(-1) = %v, want ErrInvalidWorkerCount", err)
	}
}
