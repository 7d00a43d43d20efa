package netutil

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIsTCPPortAvailable(t *testing.T) {
	t.Parallel()

	// Grab a port, hold it, and expect unavailable.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = ln.Close() }()
	port := ln.Addr().(*net.TCPAddr).Port

	if IsTCPPortAvailable(port) {
		t.Errorf("port %d reported available while bound", port)
	}

	// Release it and expect available.
	_ = ln.Close()
	if !IsTCPPortAvailable(port) {
		t.Errorf("port %d reported unavailable after release", port)
	}
}

func TestProbeHTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := ProbeHTTP(context.Background(), srv.URL, time.Second); err != nil {
		t.Errorf("ProbeHTTP() on live server: %v", err)
	}
}

func TestProbeHTTP_BadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := ProbeHTTP(context.Background(), srv.URL, time.Second)
	if !errors.Is(err, ErrProbeFailed) {
		t.Errorf("ProbeHTTP() error = %v, want ErrProbeFailed", err)
	}
}

func TestProbeHTTPRetry_EventualSuccess(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := ProbeHTTPRetry(context.Background(), srv.URL, 5, 10*time.Millisecond, time.Second)
	if err != nil {
		t.Errorf("ProbeHTTPRetry() = %v, want success on third attempt", err)
	}
	if calls != 3 {
		t.Errorf("probe calls = %d, want 3", calls)
	}
}

func TestProbeHTTPRetry_Exhausted(t *testing.T) {
	t.Parallel()

	err := ProbeHTTPRetry(context.Background(), "http://127.0.0.1:1/", 2, time.Millisecond, 100*time.Millisecond)
	if !errors.Is(err, ErrProbeFailed) {
		t.Errorf("ProbeHTTPRetry() error = %v, want ErrProbeFailed", err)
	}
}

func TestProbeHTTPRetry_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ProbeHTTPRetry(ctx, "http://127.0.0.1:1/", 3, time.Millisecond, time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ProbeHTTPRetry() error = %v, want context.Canceled", err)
	}
}
