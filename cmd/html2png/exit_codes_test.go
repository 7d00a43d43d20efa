package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	html2png "github.com/alnah/go-html2png"
	"github.com/alnah/go-html2png/internal/config"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error", err: nil, want: ExitSuccess},
		{name: "degraded capture", err: fmt.Errorf("%w: 1 of 3", ErrDegradedCapture), want: ExitDegraded},
		{name: "port in use", err: fmt.Errorf("render: %w", html2png.ErrPortInUse), want: ExitServer},
		{name: "server did not start", err: html2png.ErrServerDidNotStart, want: ExitServer},
		{name: "server unreachable", err: html2png.ErrServerUnreachable, want: ExitServer},
		{name: "document not found", err: fmt.Errorf("x: %w", html2png.ErrDocumentNotFound), want: ExitInput},
		{name: "document outside root", err: html2png.ErrDocumentOutsideRoot, want: ExitInput},
		{name: "invalid root", err: html2png.ErrServedRootInvalid, want: ExitInput},
		{name: "no input", err: ErrNoInput, want: ExitInput},
		{name: "no documents", err: fmt.Errorf("%w: /tmp", ErrNoDocuments), want: ExitInput},
		{name: "config not found", err: fmt.Errorf("loading config: %w", config.ErrConfigNotFound), want: ExitUsage},
		{name: "config parse", err: config.ErrConfigParse, want: ExitUsage},
		{name: "bad flags", err: ErrBadFlags, want: ExitUsage},
		{name: "invalid workers", err: ErrInvalidWorkerCount, want: ExitUsage},
		{name: "invalid extension", err: ErrInvalidExtension, want: ExitUsage},
		{name: "browser connect", err: html2png.ErrBrowserConnect, want: ExitGeneral},
		{name: "context canceled", err: context.Canceled, want: ExitGeneral},
		{name: "plain error", err: errors.New("boom"), want: ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
