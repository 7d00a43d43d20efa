// Package netutil provides loopback port probing and HTTP liveness checks
// for the ephemeral content server.
package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// ErrProbeFailed indicates an HTTP liveness probe never got a 200 within
// its retry budget.
var ErrProbeFailed = errors.New("liveness probe failed")

// IsTCPPortAvailable reports whether a loopback TCP port can be bound.
// It asks the OS directly via net.Listen rather than parsing /proc, which
// is the most reliable check and needs no elevated permissions. The probe
// listener is closed immediately.
func IsTCPPortAvailable(port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	defer func() { _ = ln.Close() }()
	return true
}

// ProbeHTTP issues a single GET against url and succeeds on HTTP 200.
func ProbeHTTP(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrProbeFailed, resp.StatusCode)
	}
	return nil
}

// ProbeHTTPRetry probes url up to attempts times, sleeping interval
// between failures. It returns nil on the first success and the last
// probe error otherwise.
func ProbeHTTPRetry(ctx context.Context, url string, attempts int, interval, timeout time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = ProbeHTTP(ctx, url, timeout); lastErr == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
	}
	return lastErr
}
