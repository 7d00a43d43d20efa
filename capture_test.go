package html2png

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestDeriveOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "html extension", doc: "/reports/q1.html", want: "/reports/q1.png"},
		{name: "htm extension", doc: "/reports/q1.htm", want: "/reports/q1.png"},
		{name: "no extension", doc: "/reports/q1", want: "/reports/q1.png"},
		{name: "dotted directory", doc: "/v1.2/report.html", want: "/v1.2/report.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveOutputPath(filepath.FromSlash(tt.doc))
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("deriveOutputPath(%q) = %q, want %q", tt.doc, got, tt.want)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("existing parent", func(t *testing.T) {
		if err := validateOutputPath(filepath.Join(dir, "out.png")); err != nil {
			t.Errorf("validateOutputPath() = %v, want nil", err)
		}
	})

	t.Run("missing parent", func(t *testing.T) {
		err := validateOutputPath(filepath.Join(dir, "nope", "out.png"))
		if !errors.Is(err, ErrCaptureFailed) {
			t.Errorf("validateOutputPath() = %v, want ErrCaptureFailed", err)
		}
	})
}
